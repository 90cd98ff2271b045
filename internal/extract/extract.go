// Package extract reads a raw source file into a tabular dataset and persists
// it as the bronze snapshot. Supported formats are JSON (a top-level sequence
// of flat record objects) and CSV (with a header row). PDF is declared but not
// implemented; asking for it always fails.
package extract

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"moviedw/internal/lake"
)

// ErrNotImplemented is returned for formats the pipeline declares but does not
// support yet. Callers must not offer such formats as viable.
var ErrNotImplemented = fmt.Errorf("extract: pdf parsing not implemented")

// arrayJoinSeparator flattens JSON array-of-string values into the same flat
// comma-space form the CSV sources use, so downstream splitting is uniform.
const arrayJoinSeparator = ", "

// Options tweak source decoding.
type Options struct {
	// Encoding names the source charset for CSV files. Empty or "utf-8" reads
	// bytes as-is (a leading BOM is stripped). "windows-1252" and "latin-1"
	// are decoded through x/text before the CSV reader sees them.
	Encoding string
}

// Extractor parses source files and owns the bronze slot.
type Extractor struct {
	lake *lake.Lake
	opts Options
}

func New(l *lake.Lake, opts Options) *Extractor {
	return &Extractor{lake: l, opts: opts}
}

// Extract parses the file at path according to its extension, persists the
// parsed table as the bronze snapshot (overwriting the previous one) and
// returns it. The snapshot is only written after the whole file parsed
// successfully.
func (e *Extractor) Extract(path string) (*lake.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()

	var t *lake.Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		t, err = readJSON(f)
	case ".csv":
		t, err = readCSV(f, e.opts.Encoding)
	case ".pdf":
		return nil, ErrNotImplemented
	default:
		return nil, fmt.Errorf("extract: unsupported file extension %q (accepted: .json, .csv, .pdf)", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := e.lake.WriteBronze(t); err != nil {
		return nil, err
	}
	return t, nil
}

// readJSON decodes a top-level array of flat objects. Any other root shape is
// a fatal input error. Columns are collected in first-appearance order across
// all records so the table stays stable for identical inputs.
func readJSON(r io.Reader) (*lake.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber() // keep numeric literals verbatim in the bronze snapshot

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("extract: decode json: %w", err)
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("extract: json root must be an array of record objects, got %T", raw)
	}

	t := &lake.Table{}
	colIx := map[string]int{}
	var objs []map[string]any

	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("extract: json record %d is not an object (got %T)", i, el)
		}
		for k := range obj {
			if _, seen := colIx[k]; !seen {
				colIx[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
		objs = append(objs, obj)
	}

	// Second pass: first record's unseen-late columns are already registered,
	// so every row aligns with the final column list.
	for _, obj := range objs {
		row := make([]string, len(t.Columns))
		for k, v := range obj {
			row[colIx[k]] = scalarString(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// scalarString renders a JSON value into the raw cell form kept in bronze.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(x))
		for _, el := range x {
			if el == nil {
				continue
			}
			parts = append(parts, scalarString(el))
		}
		return strings.Join(parts, arrayJoinSeparator)
	default:
		return fmt.Sprint(x)
	}
}

// readCSV reads a header row plus data rows. Short records are padded so rows
// always align with the header.
func readCSV(r io.Reader, encoding string) (*lake.Table, error) {
	dr, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(dr)
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("extract: csv is empty (no header row)")
		}
		return nil, fmt.Errorf("extract: csv header: %w", err)
	}
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\uFEFF")
	}

	t := &lake.Table{Columns: append([]string(nil), hdr...)}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("extract: csv line %d: %w", line, err)
		}
		row := make([]string, len(t.Columns))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("extract: unsupported source encoding %q", encoding)
	}
}
