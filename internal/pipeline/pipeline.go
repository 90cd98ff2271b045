// Package pipeline wires the stages together: source file → bronze → silver →
// warehouse (→ gold) → search index. Each stage persists its snapshot before
// the next one starts, and each stage run is timed and counted.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"moviedw/internal/extract"
	"moviedw/internal/lake"
	"moviedw/internal/load"
	"moviedw/internal/metrics"
	"moviedw/internal/search"
	"moviedw/internal/transform"
)

// Logger is the minimal logging seam. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// acceptedUploadTypes are the file type tags callers may submit. pdf is
// accepted here and rejected by the extractor, so the caller gets the
// not-implemented error rather than a validation error.
var acceptedUploadTypes = []string{"json", "csv", "pdf"}

// UnsupportedTypeError reports an upload type tag outside the accepted set.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("pipeline: unsupported file type %q (accepted: %s)",
		e.Type, strings.Join(acceptedUploadTypes, ", "))
}

// SeedResult summarizes one full pipeline run.
type SeedResult struct {
	Processed   int `json:"processed"`
	Skipped     int `json:"skipped"`
	Indexed     int `json:"indexed"`
	IndexFailed int `json:"index_failed"`
}

// Pipeline owns the stage instances. Indexer may be nil, in which case the
// search stage is skipped.
type Pipeline struct {
	lake        *lake.Lake
	extractor   *extract.Extractor
	transformer *transform.Transformer
	loader      *load.Loader
	indexer     *search.Indexer
	log         Logger
}

func New(lk *lake.Lake, ex *extract.Extractor, tr *transform.Transformer, ld *load.Loader, ix *search.Indexer, log Logger) *Pipeline {
	if log == nil {
		log = nopLogger{}
	}
	return &Pipeline{
		lake:        lk,
		extractor:   ex,
		transformer: tr,
		loader:      ld,
		indexer:     ix,
		log:         log,
	}
}

// Seed runs the full pipeline over one source file.
func (p *Pipeline) Seed(ctx context.Context, path string) (SeedResult, error) {
	var sr SeedResult

	if err := p.runExtract(path); err != nil {
		return sr, err
	}
	if err := p.runTransform(); err != nil {
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

// SeedUpload persists an uploaded source stream under the lake's uploads
// directory and runs the full pipeline over it. fileType must be one of the
// accepted tags; the stored copy keeps a unique name so uploads never
// overwrite each other.
func (p *Pipeline) SeedUpload(ctx context.Context, fileType string, r io.Reader) (SeedResult, error) {
	var sr SeedResult

	fileType = strings.ToLower(strings.TrimSpace(fileType))
	if !acceptedType(fileType) {
		return sr, &UnsupportedTypeError{Type: fileType}
	}

	dir := filepath.Join(p.lake.Dir(), "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sr, fmt.Errorf("pipeline: uploads dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString(), fileType)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return sr, fmt.Errorf("pipeline: store upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return sr, fmt.Errorf("pipeline: store upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return sr, fmt.Errorf("pipeline: store upload: %w", err)
	}

	p.log.Printf("stage=upload ok type=%s file=%s", fileType, name)
	return p.Seed(ctx, path)
}

func acceptedType(t string) bool {
	for _, a := range acceptedUploadTypes {
		if t == a {
			return true
		}
	}
	return false
}

func (p *Pipeline) runExtract(path string) error {
	start := time.Now()
	t, err := p.extractor.Extract(path)
	p.observeStage("extract", start, err)
	if err != nil {
		return err
	}
	p.log.Printf("stage=extract ok duration=%s rows=%d cols=%d",
		time.Since(start).Round(time.Millisecond), len(t.Rows), len(t.Columns))
	return nil
}

func (p *Pipeline) runTransform() error {
	start := time.Now()
	recs, err := p.transformer.Run()
	p.observeStage("transform", start, err)
	if err != nil {
		return err
	}
	p.log.Printf("stage=transform ok duration=%s records=%d",
		time.Since(start).Round(time.Millisecond), len(recs))
	return nil
}

func (p *Pipeline) observeStage(stage string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		p.log.Printf("stage=%s error duration=%s err=%v",
			stage, time.Since(start).Round(time.Millisecond), err)
	}
	labels := metrics.Labels{"stage": stage, "status": status}
	metrics.IncCounter("pipeline_stage_total", 1, labels)
	metrics.ObserveHistogram("pipeline_stage_duration_seconds", time.Since(start).Seconds(), labels)
}

// index pushes newly loaded movies into the search sink and drains the result
// stream. Indexing failures are counted but never fail the seed: the warehouse
// batch already committed.
func (p *Pipeline) index(ctx context.Context, loaded []load.Loaded, sr *SeedResult) {
	if p.indexer == nil || len(loaded) == 0 {
		return
	}

	docs := make([]search.Document, 0, len(loaded))
	for _, l := range loaded {
		docs = append(docs, search.DocumentFor(l.MovieID, l.Record))
	}

	for res := range p.indexer.IndexAll(ctx, docs) {
		if res.Err != nil {
			sr.IndexFailed++
			continue
		}
		sr.Indexed++
	}
}
