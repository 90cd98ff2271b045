// Package query is the read side of the warehouse: it validates filter
// parameters, runs the star-schema join and assembles full movie objects with
// their genre and crew lists.
package query

import (
	"context"
	"fmt"
	"time"

	"moviedw/internal/movie"
	"moviedw/internal/warehouse"
)

const (
	dateParamLayout = "2006-01-02"
	defaultLimit    = 10
)

// Params are the raw, unvalidated filter values as they arrive from callers.
// Zero values mean "no filter"; Limit <= 0 takes the default page size.
type Params struct {
	Country   string
	Language  string
	MinScore  *float64
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// InvalidParamError reports a filter value that failed validation.
type InvalidParamError struct {
	Param string
	Value string
	Hint  string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("query: invalid %s=%q: %s", e.Param, e.Value, e.Hint)
}

// Service answers movie queries against an open warehouse.
type Service struct {
	store *warehouse.Store
}

func New(store *warehouse.Store) *Service {
	return &Service{store: store}
}

// Movies validates params and returns the matching movies. All filters are
// conjunctive; string filters match case-insensitive substrings; soft-deleted
// movies are always excluded. No result ordering is guaranteed.
func (s *Service) Movies(ctx context.Context, p Params) ([]movie.Movie, error) {
	f, err := buildFilters(p)
	if err != nil {
		return nil, err
	}

	facts, err := s.store.QueryFacts(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]movie.Movie, 0, len(facts))
	for _, fj := range facts {
		genres, err := s.store.GenresFor(ctx, fj.MovieID)
		if err != nil {
			return nil, err
		}
		crew, err := s.store.CrewFor(ctx, fj.MovieID)
		if err != nil {
			return nil, err
		}
		out = append(out, movie.Movie{
			Name:        fj.Name,
			OrigTitle:   fj.OrigTitle,
			Overview:    fj.Overview,
			Status:      fj.Status,
			ReleaseDate: fj.ReleaseDate,
			Genres:      genres,
			Crew:        crew,
			Country:     fj.Country,
			Language:    fj.Language,
			Budget:      fj.Budget,
			Revenue:     fj.Revenue,
			Score:       fj.Score,
			IsDeleted:   fj.IsDeleted,
		})
	}
	return out, nil
}

func buildFilters(p Params) (warehouse.Filters, error) {
	f := warehouse.Filters{
		Country:  p.Country,
		Language: p.Language,
		MinScore: p.MinScore,
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	if p.StartDate != "" {
		t, err := parseDateParam("start_date", p.StartDate)
		if err != nil {
			return f, err
		}
		f.StartDate = &t
	}
	if p.EndDate != "" {
		t, err := parseDateParam("end_date", p.EndDate)
		if err != nil {
			return f, err
		}
		f.EndDate = &t
	}
	return f, nil
}

// parseDateParam accepts exactly YYYY-MM-DD. Partial or differently formatted
// dates are rejected rather than guessed at.
func parseDateParam(name, value string) (time.Time, error) {
	t, err := time.Parse(dateParamLayout, value)
	if err != nil {
		return time.Time{}, &InvalidParamError{
			Param: name,
			Value: value,
			Hint:  "want YYYY-MM-DD",
		}
	}
	return t, nil
}
