package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Dialect captures the SQL differences between the supported warehouse
// backends. The store writes every statement once with '?' placeholders and
// lets the dialect rebind, type and wrap it.
//
// IMPORTANT: This interface is intentionally minimal and focused on what the
// star-schema store needs. Each backend implements these semantics in its own
// idiomatic way (Postgres RETURNING, SQLite last_insert_rowid, SQL Server
// OUTPUT INSERTED).
type Dialect interface {
	// Name is the registry key ("postgres", "sqlite", "mssql").
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// Rebind converts '?' placeholders into the backend's native form.
	Rebind(query string) string

	// CreateTable wraps a column body in create-if-not-exists DDL.
	CreateTable(name, body string) string

	// SerialPK renders an auto-generated integer primary key column.
	SerialPK(column string) string

	// Type fragments for the schema.
	BoolType() string
	DateType() string
	FloatType() string
	TextType() string
	// KeyTextType is used for text columns that carry a UNIQUE constraint;
	// some backends cannot index unbounded text.
	KeyTextType() string

	// BuildInsert renders an INSERT for table/cols that yields the generated
	// id of idColumn. usesQuery reports whether the statement must be run via
	// QueryRow (RETURNING/OUTPUT) instead of Exec+LastInsertId.
	BuildInsert(table string, cols []string, idColumn string) (sql string, usesQuery bool)

	// ILike is the case-insensitive LIKE operator.
	ILike() string

	// LimitOffset renders the pagination clause. Values are trusted ints
	// formatted inline; limit <= 0 means unbounded.
	LimitOffset(limit, offset int) string
}

// RebindOrdinal is shared by backends with ordinal placeholders ($1, @p1).
func RebindOrdinal(query, prefix string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(prefix)
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register registers a backend dialect under its kind.
//
// Call Register from an init() function in a backend package. Registering the
// same kind twice panics; this fails fast instead of allowing ambiguous
// backend selection.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()

	if d == nil {
		panic("warehouse: Register called with nil dialect")
	}
	if d.Name() == "" {
		panic("warehouse: Register called with empty dialect name")
	}
	if _, exists := dialects[d.Name()]; exists {
		panic(fmt.Sprintf("warehouse: dialect already registered for kind=%q", d.Name()))
	}
	dialects[d.Name()] = d
}

func lookupDialect(kind string) (Dialect, error) {
	dialectMu.RLock()
	d := dialects[kind]
	dialectMu.RUnlock()

	if d == nil {
		return nil, fmt.Errorf("warehouse: unsupported storage kind=%q", kind)
	}
	return d, nil
}
