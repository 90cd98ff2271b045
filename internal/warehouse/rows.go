package warehouse

import "time"

// dateFormat is the canonical bind/scan form for date columns. SQLite stores
// it as TEXT (lexicographic order matches calendar order); Postgres and SQL
// Server cast it to their native DATE type.
const dateFormat = "2006-01-02"

// DimMovie is a warehouse movie row pending insert. Rows are created once per
// distinct name and never updated afterwards; soft-deleted rows stay in the
// table and are excluded on read.
type DimMovie struct {
	Name      string
	OrigTitle string
	Overview  string
	Status    string
	DateID    int64
	IsDeleted bool
}

// FactRow is one fact_movie_performance row pending insert. Profit is
// materialized by the loader as Revenue-Budget and is not re-derived on read.
type FactRow struct {
	MovieID    int64
	DateID     int64
	CountryID  int64
	LanguageID int64
	Budget     float64
	Revenue    float64
	Score      float64
	Profit     float64
}

// Quarter derives the calendar quarter of a month (1-12 → 1-4).
func Quarter(month time.Month) int { return (int(month)-1)/3 + 1 }
