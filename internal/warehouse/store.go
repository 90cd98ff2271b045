// Package warehouse implements the star-schema storage layer behind the ETL
// loader and the query service. It speaks plain database/sql; backend
// differences (placeholders, identity columns, DDL wrapping) live behind the
// Dialect interface, with one registered dialect per supported engine.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"moviedw/internal/movie"
)

// Config selects and connects a warehouse backend.
type Config struct {
	Kind string
	DSN  string
}

// Store is an open warehouse handle. It is constructed once at process start,
// injected into the loader and query service, and closed at shutdown.
type Store struct {
	db *sql.DB
	d  Dialect
}

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("warehouse: missing storage kind")
	}
	d, err := lookupDialect(cfg.Kind)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.DriverName(), cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, d: d}, nil
}

// Close releases the underlying pool. Call once at process shutdown.
func (s *Store) Close() { _ = s.db.Close() }

// Kind returns the backend kind this store was opened with.
func (s *Store) Kind() string { return s.d.Name() }

// EnsureSchema creates the star-schema tables if they do not exist. Safe to
// run on every startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaDDL(s.d) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("warehouse: ensure schema: %w", err)
		}
	}
	return nil
}

// Begin opens the exclusive transactional session used by the loader. All
// loader writes for one batch go through a single Tx and commit together.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("warehouse: begin: %w", err)
	}
	return &Tx{tx: tx, d: s.d}, nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is one loader session. Every Ensure* call does a natural-key lookup
// followed by an insert-if-absent, and newly created rows surface their
// surrogate id immediately so they can be referenced within the same batch.
type Tx struct {
	tx *sql.Tx
	d  Dialect
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// FindMovieByName is the loader's duplicate check: exact name match against
// dim_movie, the sole dedup mechanism for whole-movie idempotence.
func (t *Tx) FindMovieByName(ctx context.Context, name string) (int64, bool, error) {
	return lookupID(ctx, t.tx, t.d,
		`SELECT movie_id FROM dim_movie WHERE name = ?`, name)
}

// EnsureDate resolves or creates the dim_date row for a calendar date.
func (t *Tx) EnsureDate(ctx context.Context, day time.Time) (int64, error) {
	key := day.Format(dateFormat)
	id, ok, err := lookupID(ctx, t.tx, t.d,
		`SELECT date_id FROM dim_date WHERE date = ?`, key)
	if err != nil || ok {
		return id, err
	}
	return insertWithID(ctx, t.tx, t.d, "dim_date",
		[]string{"date", "year", "month", "day", "quarter"}, "date_id",
		key, day.Year(), int(day.Month()), day.Day(), Quarter(day.Month()))
}

func (t *Tx) EnsureCountry(ctx context.Context, country string) (int64, error) {
	return t.ensureKey(ctx, "dim_country", "country", "country_id", country)
}

func (t *Tx) EnsureLanguage(ctx context.Context, language string) (int64, error) {
	return t.ensureKey(ctx, "dim_language", "language", "language_id", language)
}

func (t *Tx) EnsureGenre(ctx context.Context, genre string) (int64, error) {
	return t.ensureKey(ctx, "dim_genre", "genre", "genre_id", genre)
}

// EnsureCrew resolves by exact name. dim_crew has no unique constraint, so
// differing casing or spacing of the same person yields separate rows.
func (t *Tx) EnsureCrew(ctx context.Context, name string) (int64, error) {
	return t.ensureKey(ctx, "dim_crew", "name", "crew_id", name)
}

// EnsureRole resolves or creates by the composite (role_name, role_type) key.
func (t *Tx) EnsureRole(ctx context.Context, roleName, roleType string) (int64, error) {
	id, ok, err := lookupID(ctx, t.tx, t.d,
		`SELECT role_id FROM dim_role WHERE role_name = ? AND role_type = ?`, roleName, roleType)
	if err != nil || ok {
		return id, err
	}
	return insertWithID(ctx, t.tx, t.d, "dim_role",
		[]string{"role_name", "role_type"}, "role_id", roleName, roleType)
}

func (t *Tx) InsertMovie(ctx context.Context, m DimMovie) (int64, error) {
	return insertWithID(ctx, t.tx, t.d, "dim_movie",
		[]string{"name", "orig_title", "overview", "status", "date_id", "is_deleted"}, "movie_id",
		m.Name, m.OrigTitle, m.Overview, m.Status, m.DateID, m.IsDeleted)
}

// LinkGenre adds one bridge row. Duplicate genre strings within one source
// row intentionally produce duplicate bridge rows.
func (t *Tx) LinkGenre(ctx context.Context, movieID, genreID int64) error {
	_, err := t.tx.ExecContext(ctx, t.d.Rebind(
		`INSERT INTO bridge_movie_genre (movie_id, genre_id) VALUES (?, ?)`),
		movieID, genreID)
	return err
}

// LinkCrew adds one bridge row; characterName is nil for trailing unpaired
// crew names.
func (t *Tx) LinkCrew(ctx context.Context, movieID, crewID, roleID int64, characterName *string) error {
	_, err := t.tx.ExecContext(ctx, t.d.Rebind(
		`INSERT INTO bridge_movie_crew (movie_id, crew_id, role_id, character_name) VALUES (?, ?, ?, ?)`),
		movieID, crewID, roleID, characterName)
	return err
}

func (t *Tx) InsertFact(ctx context.Context, f FactRow) (int64, error) {
	return insertWithID(ctx, t.tx, t.d, "fact_movie_performance",
		[]string{"movie_id", "date_id", "country_id", "language_id", "budget", "revenue", "score", "profit"},
		"movie_performance_id",
		f.MovieID, f.DateID, f.CountryID, f.LanguageID, f.Budget, f.Revenue, f.Score, f.Profit)
}

// ensureKey is the single-column resolve-or-create shared by the simple
// type-0 dimensions.
func (t *Tx) ensureKey(ctx context.Context, table, keyCol, idCol string, key string) (int64, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, idCol, table, keyCol)
	id, ok, err := lookupID(ctx, t.tx, t.d, q, key)
	if err != nil || ok {
		return id, err
	}
	return insertWithID(ctx, t.tx, t.d, table, []string{keyCol}, idCol, key)
}

func lookupID(ctx context.Context, q dbtx, d Dialect, query string, args ...any) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, d.Rebind(query), args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func insertWithID(ctx context.Context, q dbtx, d Dialect, table string, cols []string, idCol string, args ...any) (int64, error) {
	stmt, usesQuery := d.BuildInsert(table, cols, idCol)
	if usesQuery {
		var id int64
		if err := q.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert %s: %w", table, err)
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", table, err)
	}
	return id, nil
}

// ---- read side (query service) ----

// Filters are the storage-level predicates of get_movies. String filters are
// case-insensitive substring matches; all predicates are conjunctive.
type Filters struct {
	Country   string
	Language  string
	MinScore  *float64
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// FactJoin is one fact row joined with its movie/date/country/language
// dimensions.
type FactJoin struct {
	MovieID     int64
	Name        string
	OrigTitle   string
	Overview    string
	Status      string
	IsDeleted   bool
	ReleaseDate time.Time
	Country     string
	Language    string
	Budget      float64
	Revenue     float64
	Score       float64
	Profit      float64
}

// QueryFacts joins fact+movie+date+country+language, excludes soft-deleted
// movies and applies the filters. No result ordering is guaranteed beyond the
// backend's default.
func (s *Store) QueryFacts(ctx context.Context, f Filters) ([]FactJoin, error) {
	var b strings.Builder
	b.WriteString(`SELECT f.movie_id, m.name, m.orig_title, m.overview, m.status, m.is_deleted,
	d.date, c.country, l.language, f.budget, f.revenue, f.score, f.profit
	FROM fact_movie_performance f
	JOIN dim_movie m ON f.movie_id = m.movie_id
	JOIN dim_date d ON f.date_id = d.date_id
	JOIN dim_country c ON f.country_id = c.country_id
	JOIN dim_language l ON f.language_id = l.language_id
	WHERE m.is_deleted = ?`)

	args := []any{false}

	if f.Country != "" {
		fmt.Fprintf(&b, " AND c.country %s ?", s.d.ILike())
		args = append(args, "%"+f.Country+"%")
	}
	if f.Language != "" {
		fmt.Fprintf(&b, " AND l.language %s ?", s.d.ILike())
		args = append(args, "%"+f.Language+"%")
	}
	if f.MinScore != nil {
		b.WriteString(" AND f.score >= ?")
		args = append(args, *f.MinScore)
	}
	if f.StartDate != nil {
		b.WriteString(" AND d.date >= ?")
		args = append(args, f.StartDate.Format(dateFormat))
	}
	if f.EndDate != nil {
		b.WriteString(" AND d.date <= ?")
		args = append(args, f.EndDate.Format(dateFormat))
	}

	b.WriteString(" " + s.d.LimitOffset(f.Limit, f.Offset))

	rows, err := s.db.QueryContext(ctx, s.d.Rebind(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("warehouse: query facts: %w", err)
	}
	defer rows.Close()

	var out []FactJoin
	for rows.Next() {
		var fj FactJoin
		var rawDate any
		if err := rows.Scan(
			&fj.MovieID, &fj.Name, &fj.OrigTitle, &fj.Overview, &fj.Status, &fj.IsDeleted,
			&rawDate, &fj.Country, &fj.Language, &fj.Budget, &fj.Revenue, &fj.Score, &fj.Profit,
		); err != nil {
			return nil, err
		}
		fj.ReleaseDate, err = scanDate(rawDate)
		if err != nil {
			return nil, err
		}
		out = append(out, fj)
	}
	return out, rows.Err()
}

// GenresFor fetches a movie's genre list through the bridge table.
func (s *Store) GenresFor(ctx context.Context, movieID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.d.Rebind(
		`SELECT g.genre FROM dim_genre g
		JOIN bridge_movie_genre bg ON bg.genre_id = g.genre_id
		WHERE bg.movie_id = ?`), movieID)
	if err != nil {
		return nil, fmt.Errorf("warehouse: genres for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// CrewFor fetches a movie's crew list, joining the role dimension for the
// derived role name.
func (s *Store) CrewFor(ctx context.Context, movieID int64) ([]movie.CrewMember, error) {
	rows, err := s.db.QueryContext(ctx, s.d.Rebind(
		`SELECT cr.name, r.role_name, bc.character_name
		FROM bridge_movie_crew bc
		JOIN dim_crew cr ON bc.crew_id = cr.crew_id
		JOIN dim_role r ON bc.role_id = r.role_id
		WHERE bc.movie_id = ?`), movieID)
	if err != nil {
		return nil, fmt.Errorf("warehouse: crew for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	crew := []movie.CrewMember{}
	for rows.Next() {
		var cm movie.CrewMember
		var character sql.NullString
		if err := rows.Scan(&cm.Name, &cm.RoleName, &character); err != nil {
			return nil, err
		}
		if character.Valid {
			v := character.String
			cm.CharacterName = &v
		}
		crew = append(crew, cm)
	}
	return crew, rows.Err()
}

// scanDate normalizes a scanned date column. Postgres and SQL Server return
// time.Time; SQLite stores TEXT and returns string.
func scanDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		return time.Parse(dateFormat, x)
	case []byte:
		return time.Parse(dateFormat, string(x))
	default:
		return time.Time{}, fmt.Errorf("warehouse: unsupported date column type %T", v)
	}
}
