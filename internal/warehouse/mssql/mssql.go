// Package mssql registers the SQL Server warehouse dialect.
package mssql

import (
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"moviedw/internal/warehouse"
)

type dialect struct{}

func init() {
	warehouse.Register(dialect{})
}

func (dialect) Name() string       { return "mssql" }
func (dialect) DriverName() string { return "sqlserver" }

func (dialect) Rebind(query string) string {
	return warehouse.RebindOrdinal(query, "@p")
}

// CreateTable: SQL Server has no CREATE TABLE IF NOT EXISTS; guard via
// OBJECT_ID.
func (dialect) CreateTable(name, body string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);", name, name, body)
}

func (dialect) SerialPK(column string) string {
	return column + " BIGINT IDENTITY(1,1) PRIMARY KEY"
}

func (dialect) BoolType() string  { return "BIT" }
func (dialect) DateType() string  { return "DATE" }
func (dialect) FloatType() string { return "FLOAT" }

func (dialect) TextType() string { return "NVARCHAR(MAX)" }

// KeyTextType is bounded: UNIQUE constraints cannot cover NVARCHAR(MAX).
func (dialect) KeyTextType() string { return "NVARCHAR(450)" }

// BuildInsert captures the identity value with OUTPUT INSERTED, which sits
// between the column list and VALUES.
func (d dialect) BuildInsert(table string, cols []string, idColumn string) (string, bool) {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.%s VALUES (%s)",
		table, strings.Join(cols, ", "), idColumn, ph)
	return d.Rebind(q), true
}

// ILike: LIKE is case-insensitive under the default server collations.
func (dialect) ILike() string { return "LIKE" }

// LimitOffset: OFFSET/FETCH requires an ORDER BY; ordering by the first
// select column keeps the "no guaranteed order" contract while satisfying the
// syntax.
func (dialect) LimitOffset(limit, offset int) string {
	clause := fmt.Sprintf("ORDER BY 1 OFFSET %d ROWS", max(offset, 0))
	if limit > 0 {
		clause += fmt.Sprintf(" FETCH NEXT %d ROWS ONLY", limit)
	}
	return clause
}
