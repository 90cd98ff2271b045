package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moviedw/internal/lake"
)

func newExtractor(t *testing.T, opts Options) (*Extractor, *lake.Lake) {
	t.Helper()
	l, err := lake.New(t.TempDir())
	if err != nil {
		t.Fatalf("lake.New() err=%v", err)
	}
	return New(l, opts), l
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractJSON(t *testing.T) {
	e, l := newExtractor(t, Options{})

	src := `[
		{"names": "Creed III", "score": 73.0, "genre": ["Drama", "Action"]},
		{"names": "Ruby Gillman", "score": 68.5, "genre": [], "status": "Released"}
	]`
	table, err := e.Extract(writeFile(t, "movies.json", []byte(src)))
	if err != nil {
		t.Fatalf("Extract() err=%v", err)
	}

	// Columns in first-appearance order across records.
	want := []string{"names", "score", "genre", "status"}
	if len(table.Columns) != len(want) {
		t.Fatalf("columns=%v, want %v", table.Columns, want)
	}
	for i, c := range want {
		if table.Columns[i] != c {
			t.Fatalf("columns=%v, want %v", table.Columns, want)
		}
	}

	if got := table.Rows[0][table.Col("genre")]; got != "Drama, Action" {
		t.Fatalf("genre cell=%q, want %q", got, "Drama, Action")
	}
	// Numeric literals keep their source form.
	if got := table.Rows[0][table.Col("score")]; got != "73.0" {
		t.Fatalf("score cell=%q, want %q", got, "73.0")
	}
	// Missing cells are empty, not omitted.
	if got := table.Rows[0][table.Col("status")]; got != "" {
		t.Fatalf("status cell=%q, want empty", got)
	}

	// The bronze snapshot was persisted.
	persisted, err := l.ReadBronze()
	if err != nil {
		t.Fatalf("ReadBronze() err=%v", err)
	}
	if len(persisted.Rows) != 2 {
		t.Fatalf("persisted rows=%d, want 2", len(persisted.Rows))
	}
}

func TestExtractJSONBadRoot(t *testing.T) {
	e, l := newExtractor(t, Options{})

	tests := []struct {
		name string
		src  string
	}{
		{name: "object_root", src: `{"names": "Creed III"}`},
		{name: "scalar_element", src: `[1, 2]`},
		{name: "not_json", src: `names,score`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Extract(writeFile(t, "bad.json", []byte(tc.src))); err == nil {
				t.Fatalf("Extract() should fail for %s", tc.name)
			}
		})
	}

	// Nothing was persisted by the failed runs.
	if _, err := l.ReadBronze(); err == nil {
		t.Fatalf("bronze slot should be absent after failed extracts")
	}
}

func TestExtractCSV(t *testing.T) {
	e, _ := newExtractor(t, Options{})

	src := "\uFEFFnames,score,country\nCreed III,73,AU\nShort Row,68\n"
	table, err := e.Extract(writeFile(t, "movies.csv", []byte(src)))
	if err != nil {
		t.Fatalf("Extract() err=%v", err)
	}

	if table.Columns[0] != "names" {
		t.Fatalf("BOM not stripped from header: %q", table.Columns[0])
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows=%d, want 2", len(table.Rows))
	}
	// Short rows are padded to header width.
	if len(table.Rows[1]) != 3 || table.Rows[1][2] != "" {
		t.Fatalf("short row not padded: %v", table.Rows[1])
	}
}

func TestExtractCSVEncoding(t *testing.T) {
	// "Amélie" in Windows-1252: é is byte 0xE9.
	src := []byte("names,score\nAm\xE9lie,79\n")

	e, _ := newExtractor(t, Options{Encoding: "windows-1252"})
	table, err := e.Extract(writeFile(t, "movies.csv", src))
	if err != nil {
		t.Fatalf("Extract() err=%v", err)
	}
	if got := table.Rows[0][0]; got != "Amélie" {
		t.Fatalf("decoded cell=%q, want %q", got, "Amélie")
	}
}

func TestExtractCSVEmpty(t *testing.T) {
	e, _ := newExtractor(t, Options{})
	if _, err := e.Extract(writeFile(t, "empty.csv", nil)); err == nil {
		t.Fatalf("Extract() should fail on empty csv")
	}
}

func TestExtractPDFNotImplemented(t *testing.T) {
	e, _ := newExtractor(t, Options{})
	_, err := e.Extract(writeFile(t, "movies.pdf", []byte("%PDF-1.7")))
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Extract(pdf) err=%v, want ErrNotImplemented", err)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e, _ := newExtractor(t, Options{})
	_, err := e.Extract(writeFile(t, "movies.xml", []byte("<movies/>")))
	if err == nil || !strings.Contains(err.Error(), ".json") {
		t.Fatalf("Extract(xml) err=%v, want error naming accepted extensions", err)
	}
}

func TestExtractUnsupportedEncoding(t *testing.T) {
	e, _ := newExtractor(t, Options{Encoding: "koi8-r"})
	if _, err := e.Extract(writeFile(t, "movies.csv", []byte("names\nx\n"))); err == nil {
		t.Fatalf("Extract() should fail for unsupported encoding")
	}
}
