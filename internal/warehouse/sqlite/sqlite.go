// Package sqlite registers the SQLite warehouse dialect (modernc.org/sqlite,
// pure Go). Used for local runs and as the integration-test backend.
package sqlite

import (
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"moviedw/internal/warehouse"
)

type dialect struct{}

func init() {
	warehouse.Register(dialect{})
}

func (dialect) Name() string       { return "sqlite" }
func (dialect) DriverName() string { return "sqlite" }

// Rebind is a no-op: SQLite takes '?' natively.
func (dialect) Rebind(query string) string { return query }

func (dialect) CreateTable(name, body string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", name, body)
}

// SerialPK relies on "INTEGER PRIMARY KEY" becoming the rowid, which
// auto-generates values.
func (dialect) SerialPK(column string) string {
	return column + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (dialect) BoolType() string { return "BOOLEAN" }

// DateType stores the bound ISO YYYY-MM-DD strings as text, whose
// lexicographic order matches calendar order for range filters.
func (dialect) DateType() string    { return "DATE" }
func (dialect) FloatType() string   { return "REAL" }
func (dialect) TextType() string    { return "TEXT" }
func (dialect) KeyTextType() string { return "TEXT" }

// BuildInsert relies on Exec + last_insert_rowid.
func (dialect) BuildInsert(table string, cols []string, idColumn string) (string, bool) {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), ph), false
}

// ILike: SQLite LIKE is case-insensitive for ASCII by default.
func (dialect) ILike() string { return "LIKE" }

func (dialect) LimitOffset(limit, offset int) string {
	var parts []string
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		if limit <= 0 {
			parts = append(parts, "LIMIT -1")
		}
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}
