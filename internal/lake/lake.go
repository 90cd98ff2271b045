// Package lake manages the layered snapshot artifacts of the pipeline.
//
// Three single-slot artifacts live under one directory:
//
//	bronze.json — raw extracted table, exactly as parsed from the source file
//	silver.json — cleaned, typed records produced by the transformer
//	gold.json   — post-load copy of silver, written after a successful commit
//
// Each slot is fully overwritten on every run; snapshots are not versioned and
// not partitioned by run. Writes go through a temp file and an atomic rename,
// so a failed stage never leaves a half-written snapshot behind.
package lake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	bronzeSlot = "bronze.json"
	silverSlot = "silver.json"
	goldSlot   = "gold.json"
)

// Table is the raw tabular form produced by the extractor. Rows are positional
// and aligned with Columns; cell values are the raw source text (JSON numbers
// keep their original literal form).
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Col returns the index of a column, or -1 when absent.
func (t *Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record is one cleaned movie row as persisted in the silver and gold slots.
// Genres and Crew are already split on the ", " separator; Crew keeps the flat
// alternating name/character sequence — pairing it up is the loader's job.
type Record struct {
	Name        string    `json:"name"`
	ReleaseDate time.Time `json:"release_date"`
	Score       float64   `json:"score"`
	Genres      []string  `json:"genre"`
	Overview    string    `json:"overview"`
	Crew        []string  `json:"crew"`
	OrigTitle   string    `json:"orig_title"`
	Status      string    `json:"status"`
	OrigLang    string    `json:"orig_lang"`
	Budget      float64   `json:"budget"`
	Revenue     float64   `json:"revenue"`
	Country     string    `json:"country"`
}

// Lake is a handle on the snapshot directory.
type Lake struct {
	dir string
}

// New returns a Lake rooted at dir, creating it if needed.
func New(dir string) (*Lake, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lake: create dir %s: %w", dir, err)
	}
	return &Lake{dir: dir}, nil
}

// Dir returns the snapshot directory.
func (l *Lake) Dir() string { return l.dir }

func (l *Lake) WriteBronze(t *Table) error {
	return l.writeSlot(bronzeSlot, t)
}

func (l *Lake) ReadBronze() (*Table, error) {
	var t Table
	if err := l.readSlot(bronzeSlot, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (l *Lake) WriteSilver(recs []Record) error {
	return l.writeSlot(silverSlot, recs)
}

func (l *Lake) ReadSilver() ([]Record, error) {
	var recs []Record
	if err := l.readSlot(silverSlot, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// WriteGold stores the post-load copy. The loader calls this only after the
// warehouse transaction committed.
func (l *Lake) WriteGold(recs []Record) error {
	return l.writeSlot(goldSlot, recs)
}

func (l *Lake) ReadGold() ([]Record, error) {
	var recs []Record
	if err := l.readSlot(goldSlot, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// writeSlot serializes v into the slot via temp-file + rename. The rename is
// atomic on POSIX filesystems, which is what keeps each slot all-or-nothing.
func (l *Lake) writeSlot(slot string, v any) error {
	tmp, err := os.CreateTemp(l.dir, slot+".tmp-*")
	if err != nil {
		return fmt.Errorf("lake: temp for %s: %w", slot, err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("lake: encode %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("lake: close %s: %w", slot, err)
	}
	if err := os.Rename(tmpName, filepath.Join(l.dir, slot)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("lake: publish %s: %w", slot, err)
	}
	return nil
}

func (l *Lake) readSlot(slot string, v any) error {
	f, err := os.Open(filepath.Join(l.dir, slot))
	if err != nil {
		return fmt.Errorf("lake: open %s: %w", slot, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("lake: decode %s: %w", slot, err)
	}
	return nil
}
