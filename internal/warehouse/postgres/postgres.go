// Package postgres registers the Postgres warehouse dialect, connecting
// through the pgx stdlib driver.
package postgres

import (
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"moviedw/internal/warehouse"
)

type dialect struct{}

func init() {
	warehouse.Register(dialect{})
}

func (dialect) Name() string       { return "postgres" }
func (dialect) DriverName() string { return "pgx" }

func (dialect) Rebind(query string) string {
	return warehouse.RebindOrdinal(query, "$")
}

func (dialect) CreateTable(name, body string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", name, body)
}

func (dialect) SerialPK(column string) string {
	return column + " BIGSERIAL PRIMARY KEY"
}

func (dialect) BoolType() string    { return "BOOLEAN" }
func (dialect) DateType() string    { return "DATE" }
func (dialect) FloatType() string   { return "DOUBLE PRECISION" }
func (dialect) TextType() string    { return "TEXT" }
func (dialect) KeyTextType() string { return "TEXT" }

// BuildInsert uses RETURNING; Postgres drivers do not support LastInsertId.
func (d dialect) BuildInsert(table string, cols []string, idColumn string) (string, bool) {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(cols, ", "), ph, idColumn)
	return d.Rebind(q), true
}

func (dialect) ILike() string { return "ILIKE" }

func (dialect) LimitOffset(limit, offset int) string {
	var parts []string
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}
