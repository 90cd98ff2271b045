// Package load writes silver records into the star-schema warehouse.
//
// One Run is one batch in one transaction: every record either lands fully
// (movie row, dimension rows, bridge rows, fact row) or the whole batch rolls
// back. Idempotence is by movie name only; a record whose name already exists
// in dim_movie is skipped entirely, without refreshing any of its rows.
package load

import (
	"context"
	"fmt"
	"time"

	"moviedw/internal/lake"
	"moviedw/internal/metrics"
	"moviedw/internal/warehouse"
)

// Logger is the minimal logging seam. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Loaded identifies one movie inserted by a batch, carrying its silver record
// so downstream consumers (search indexing) need no warehouse round trip.
type Loaded struct {
	MovieID int64
	Record  lake.Record
}

// Result summarizes one batch.
type Result struct {
	Processed int
	Skipped   int
	Loaded    []Loaded
}

// Loader drives the silver → warehouse stage.
type Loader struct {
	store *warehouse.Store
	lake  *lake.Lake
	log   Logger
}

// New constructs a Loader. A nil logger discards output.
func New(store *warehouse.Store, lk *lake.Lake, log Logger) *Loader {
	if log == nil {
		log = nopLogger{}
	}
	return &Loader{store: store, lake: lk, log: log}
}

// Run loads the current silver snapshot into the warehouse and, after the
// transaction commits, publishes the gold snapshot. On any warehouse error the
// transaction rolls back and the batch leaves no trace.
func (l *Loader) Run(ctx context.Context) (Result, error) {
	start := time.Now()

	res, err := l.run(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := metrics.Labels{"stage": "load", "status": status}
	metrics.IncCounter("pipeline_stage_total", 1, labels)
	metrics.ObserveHistogram("pipeline_stage_duration_seconds", time.Since(start).Seconds(), labels)

	if err != nil {
		l.log.Printf("stage=load error duration=%s processed=%d skipped=%d err=%v",
			time.Since(start).Round(time.Millisecond), res.Processed, res.Skipped, err)
		return res, err
	}

	metrics.IncCounter("pipeline_batches_total", 1, nil)
	metrics.IncCounter("pipeline_records_total", float64(res.Processed), metrics.Labels{"kind": "processed"})
	metrics.IncCounter("pipeline_records_total", float64(res.Skipped), metrics.Labels{"kind": "skipped"})

	l.log.Printf("stage=load ok duration=%s processed=%d skipped=%d",
		time.Since(start).Round(time.Millisecond), res.Processed, res.Skipped)
	return res, nil
}

func (l *Loader) run(ctx context.Context) (Result, error) {
	var res Result

	recs, err := l.lake.ReadSilver()
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}

	for _, rec := range recs {
		if err := l.loadOne(ctx, tx, rec, &res); err != nil {
			_ = tx.Rollback()
			res.Loaded = nil
			return res, fmt.Errorf("load: movie %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		res.Loaded = nil
		return res, fmt.Errorf("load: commit: %w", err)
	}

	// Gold is the post-commit copy of silver. A failure here does not undo the
	// warehouse batch; the snapshot is simply stale until the next run.
	if err := l.lake.WriteGold(recs); err != nil {
		return res, fmt.Errorf("load: batch committed but gold snapshot failed: %w", err)
	}
	return res, nil
}

func (l *Loader) loadOne(ctx context.Context, tx *warehouse.Tx, rec lake.Record, res *Result) error {
	_, exists, err := tx.FindMovieByName(ctx, rec.Name)
	if err != nil {
		return err
	}
	if exists {
		res.Skipped++
		return nil
	}

	dateID, err := tx.EnsureDate(ctx, rec.ReleaseDate)
	if err != nil {
		return err
	}
	countryID, err := tx.EnsureCountry(ctx, rec.Country)
	if err != nil {
		return err
	}
	languageID, err := tx.EnsureLanguage(ctx, rec.OrigLang)
	if err != nil {
		return err
	}

	movieID, err := tx.InsertMovie(ctx, warehouse.DimMovie{
		Name:      rec.Name,
		OrigTitle: rec.OrigTitle,
		Overview:  rec.Overview,
		Status:    rec.Status,
		DateID:    dateID,
	})
	if err != nil {
		return err
	}

	for _, genre := range rec.Genres {
		genreID, err := tx.EnsureGenre(ctx, genre)
		if err != nil {
			return err
		}
		if err := tx.LinkGenre(ctx, movieID, genreID); err != nil {
			return err
		}
	}

	for _, pair := range ParseCrewPairs(rec.Crew) {
		crewID, err := tx.EnsureCrew(ctx, pair.Name)
		if err != nil {
			return err
		}
		roleName, roleType := pair.Role()
		roleID, err := tx.EnsureRole(ctx, roleName, roleType)
		if err != nil {
			return err
		}
		if err := tx.LinkCrew(ctx, movieID, crewID, roleID, pair.CharacterName); err != nil {
			return err
		}
	}

	if _, err := tx.InsertFact(ctx, warehouse.FactRow{
		MovieID:    movieID,
		DateID:     dateID,
		CountryID:  countryID,
		LanguageID: languageID,
		Budget:     rec.Budget,
		Revenue:    rec.Revenue,
		Score:      rec.Score,
		Profit:     rec.Revenue - rec.Budget,
	}); err != nil {
		return err
	}

	res.Processed++
	res.Loaded = append(res.Loaded, Loaded{MovieID: movieID, Record: rec})
	return nil
}
