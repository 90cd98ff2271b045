// Package transform turns the bronze snapshot into the canonical silver form:
// source column variants are renamed, the required column set is enforced,
// rows with missing required fields are dropped, release dates are parsed
// strictly and genre/crew strings are split into sequences.
package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"moviedw/internal/lake"
)

// headerMap normalizes the column name variants seen across source exports.
var headerMap = map[string]string{
	"names":    "name",
	"date_x":   "release_date",
	"budget_x": "budget",
}

// requiredColumns must all be present after renaming; a row missing any of
// their values is dropped.
var requiredColumns = []string{
	"name", "release_date", "score", "overview", "orig_title",
	"status", "budget", "revenue", "country", "orig_lang",
}

// dateLayout is the exact source format; values are whitespace-stripped
// before parsing.
const dateLayout = "01/02/2006"

// listSeparator splits the flat genre/crew strings. There is no escaping: a
// name that itself contains ", " cannot be represented (see DESIGN.md).
const listSeparator = ", "

// MissingColumnsError reports required columns absent from the bronze table.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("transform: missing columns: %s", strings.Join(e.Columns, ", "))
}

// InvalidDate is one unparseable release_date cell.
type InvalidDate struct {
	Movie string
	Value string
}

// InvalidDatesError reports release_date values that survived cleaning but
// still failed to parse. The whole transform fails when any row is affected.
type InvalidDatesError struct {
	Rows []InvalidDate
}

func (e *InvalidDatesError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, fmt.Sprintf("movie=%q value=%q", r.Movie, r.Value))
	}
	return "transform: unparseable release_date (want MM/DD/YYYY): " + strings.Join(parts, "; ")
}

// Transformer owns the silver slot.
type Transformer struct {
	lake *lake.Lake
}

func New(l *lake.Lake) *Transformer {
	return &Transformer{lake: l}
}

// Run reads the current bronze snapshot, cleans it and persists the result as
// the silver snapshot (single slot, overwritten). The silver slot is only
// written after the whole table transformed successfully.
func (t *Transformer) Run() ([]lake.Record, error) {
	table, err := t.lake.ReadBronze()
	if err != nil {
		return nil, err
	}

	recs, err := Clean(table)
	if err != nil {
		return nil, err
	}

	if err := t.lake.WriteSilver(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Clean applies the full bronze→silver transformation in memory.
func Clean(table *lake.Table) ([]lake.Record, error) {
	cols := renameColumns(table.Columns)

	ix := map[string]int{}
	for i, c := range cols {
		ix[c] = i
	}

	var missing []string
	for _, rc := range requiredColumns {
		if _, ok := ix[rc]; !ok {
			missing = append(missing, rc)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingColumnsError{Columns: missing}
	}

	genreIdx, hasGenre := ix["genre"]
	crewIdx, hasCrew := ix["crew"]

	recs := make([]lake.Record, 0, len(table.Rows))
	var invalid []InvalidDate

	for _, row := range table.Rows {
		if rowMissingRequired(row, ix) {
			continue // no partial-row salvage
		}

		rec := lake.Record{
			Name:      row[ix["name"]],
			Overview:  row[ix["overview"]],
			OrigTitle: row[ix["orig_title"]],
			Status:    row[ix["status"]],
			OrigLang:  row[ix["orig_lang"]],
			Country:   row[ix["country"]],
		}

		rawDate := row[ix["release_date"]]
		d, ok := parseReleaseDate(rawDate)
		if !ok {
			invalid = append(invalid, InvalidDate{Movie: rec.Name, Value: rawDate})
			continue
		}
		rec.ReleaseDate = d

		rec.Score, _ = parseFloat(row[ix["score"]])
		rec.Budget, _ = parseFloat(row[ix["budget"]])
		rec.Revenue, _ = parseFloat(row[ix["revenue"]])

		if hasGenre {
			rec.Genres = splitList(row[genreIdx])
		}
		if hasCrew {
			rec.Crew = splitList(row[crewIdx])
		}

		recs = append(recs, rec)
	}

	if len(invalid) > 0 {
		return nil, &InvalidDatesError{Rows: invalid}
	}
	return recs, nil
}

func renameColumns(in []string) []string {
	out := make([]string, len(in))
	for i, c := range in {
		key := strings.TrimSpace(c)
		if mapped, ok := headerMap[key]; ok {
			out[i] = mapped
			continue
		}
		out[i] = key
	}
	return out
}

func rowMissingRequired(row []string, ix map[string]int) bool {
	for _, rc := range requiredColumns {
		i := ix[rc]
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return true
		}
	}
	return false
}

// parseReleaseDate strips ALL whitespace (sources carry stray spaces inside
// the value, not just at the edges) and parses the exact MM/DD/YYYY layout.
func parseReleaseDate(raw string) (time.Time, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	d, err := time.Parse(dateLayout, cleaned)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// splitList splits a flat ", "-joined string into its ordered elements.
// Empty input yields an empty sequence, never nil surprises downstream.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return strings.Split(raw, listSeparator)
}
