package pipeline

import (
	"context"
	"time"

	"moviedw/internal/lake"
)

// sampleRecords is the built-in demo dataset, enough to exercise every table
// of the schema including crew pairing and shared dimension rows.
func sampleRecords() []lake.Record {
	return []lake.Record{
		{
			Name:        "Creed III",
			ReleaseDate: time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC),
			Score:       73,
			Genres:      []string{"Drama", "Action"},
			Overview: "After dominating the boxing world, Adonis Creed has been " +
				"thriving in his career and family life. When a childhood friend " +
				"and former boxing prodigy resurfaces, the face-off is more than " +
				"just a fight.",
			Crew: []string{
				"Michael B. Jordan", "Adonis Creed",
				"Tessa Thompson", "Bianca Taylor",
				"Jonathan Majors", "Damian Anderson",
			},
			OrigTitle: "Creed III",
			Status:    "Released",
			OrigLang:  "English",
			Budget:    75000000,
			Revenue:   271616668,
			Country:   "AU",
		},
		{
			Name:        "Avatar: The Way of Water",
			ReleaseDate: time.Date(2022, 12, 15, 0, 0, 0, 0, time.UTC),
			Score:       78,
			Genres:      []string{"Science Fiction", "Adventure", "Action"},
			Overview: "Set more than a decade after the events of the first film, " +
				"the story of the Sully family: the trouble that follows them, the " +
				"lengths they go to keep each other safe, and the tragedies they endure.",
			Crew: []string{
				"Sam Worthington", "Jake Sully",
				"Zoe Saldaña", "Neytiri",
				"Sigourney Weaver", "Kiri",
			},
			OrigTitle: "Avatar: The Way of Water",
			Status:    "Released",
			OrigLang:  "English",
			Budget:    460000000,
			Revenue:   2316794914,
			Country:   "AU",
		},
	}
}

// SeedSample loads the built-in demo dataset. It publishes the records as the
// silver snapshot and runs the load and index stages; extract and transform
// are bypassed since the data is born clean.
func (p *Pipeline) SeedSample(ctx context.Context) (SeedResult, error) {
	var sr SeedResult

	if err := p.lake.WriteSilver(sampleRecords()); err != nil {
		return sr, err
	}

	res, err := p.loader.Run(ctx)
	if err != nil {
		return sr, err
	}
	sr.Processed = res.Processed
	sr.Skipped = res.Skipped

	p.index(ctx, res.Loaded, &sr)
	return sr, nil
}
