// Package movie holds the read-side domain representation of a movie as
// assembled from the warehouse: one row of fact_movie_performance joined with
// its dimensions, plus the genre and crew lists resolved through the bridge
// tables.
package movie

import "time"

// CrewMember is one entry of a movie's crew list.
// CharacterName is nil when the source data carried no character for the name
// (odd-length crew sequences).
type CrewMember struct {
	Name          string  `json:"name"`
	RoleName      string  `json:"role_name"`
	CharacterName *string `json:"character_name"`
}

// Movie is the read-only domain object returned by the query service.
type Movie struct {
	Name        string       `json:"name"`
	OrigTitle   string       `json:"orig_title"`
	Overview    string       `json:"overview"`
	Status      string       `json:"status"`
	ReleaseDate time.Time    `json:"-"`
	Genres      []string     `json:"genres"`
	Crew        []CrewMember `json:"crew"`
	Country     string       `json:"country"`
	Language    string       `json:"language"`
	Budget      float64      `json:"budget"`
	Revenue     float64      `json:"revenue"`
	Score       float64      `json:"score"`
	IsDeleted   bool         `json:"is_deleted"`
}

// Profit is derived, never stored on the domain object. The warehouse keeps
// its own materialized copy in the fact row; the two agree because both are
// computed as revenue - budget with no rounding step.
func (m Movie) Profit() float64 { return m.Revenue - m.Budget }

// Profitable reports whether the movie earned back more than its budget.
func (m Movie) Profitable() bool { return m.Profit() > 0 }

// Dict flattens the movie for JSON responses. ReleaseDate is rendered as an
// ISO-8601 date string, and the derived profit is included.
func (m Movie) Dict() map[string]any {
	return map[string]any{
		"name":         m.Name,
		"orig_title":   m.OrigTitle,
		"overview":     m.Overview,
		"status":       m.Status,
		"release_date": m.ReleaseDate.Format("2006-01-02"),
		"genres":       m.Genres,
		"crew":         m.Crew,
		"country":      m.Country,
		"language":     m.Language,
		"budget":       m.Budget,
		"revenue":      m.Revenue,
		"score":        m.Score,
		"profit":       m.Profit(),
		"is_deleted":   m.IsDeleted,
	}
}
