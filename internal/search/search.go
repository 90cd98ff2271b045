// Package search maintains the full-text side channel of the warehouse in
// Elasticsearch. Indexing is best-effort: the warehouse batch has already
// committed by the time documents arrive here, and a failed upsert never
// propagates back into the pipeline — it is logged, counted and reported on
// the per-document result stream.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"moviedw/internal/lake"
	"moviedw/internal/metrics"
)

const dateFormat = "2006-01-02"

// Logger is the minimal logging seam. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Document is the denormalized movie shape stored in the search index.
type Document struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Overview    string   `json:"overview"`
	Score       float64  `json:"score"`
	Genres      []string `json:"genres"`
	Country     string   `json:"country"`
	Language    string   `json:"language"`
	ReleaseDate string   `json:"release_date"`
	Status      string   `json:"status"`
	Budget      float64  `json:"budget"`
	Revenue     float64  `json:"revenue"`
}

// DocumentFor flattens a loaded silver record into its index document. The
// warehouse surrogate id doubles as the document id, so re-indexing the same
// movie overwrites in place.
func DocumentFor(movieID int64, rec lake.Record) Document {
	return Document{
		ID:          strconv.FormatInt(movieID, 10),
		Name:        rec.Name,
		Overview:    rec.Overview,
		Score:       rec.Score,
		Genres:      rec.Genres,
		Country:     rec.Country,
		Language:    rec.OrigLang,
		ReleaseDate: rec.ReleaseDate.Format(dateFormat),
		Status:      rec.Status,
		Budget:      rec.Budget,
		Revenue:     rec.Revenue,
	}
}

// Config connects an Indexer.
type Config struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
}

// Result is the per-document outcome of one IndexAll run.
type Result struct {
	ID  string
	Err error
}

// Indexer writes movie documents into one Elasticsearch index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    Logger
}

// NewIndexer builds the client. Construction does not dial; connectivity
// errors surface on the first request.
func NewIndexer(cfg Config, log Logger) (*Indexer, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("search: missing index name")
	}
	if log == nil {
		log = nopLogger{}
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}
	return &Indexer{client: client, index: cfg.Index, log: log}, nil
}

// indexMapping types the fields that matter for matching and filtering;
// everything else falls back to dynamic mapping.
const indexMapping = `{
  "mappings": {
    "properties": {
      "name":         {"type": "text"},
      "overview":     {"type": "text"},
      "genres":       {"type": "keyword"},
      "country":      {"type": "keyword"},
      "language":     {"type": "keyword"},
      "status":       {"type": "keyword"},
      "release_date": {"type": "date", "format": "yyyy-MM-dd"},
      "score":        {"type": "double"},
      "budget":       {"type": "double"},
      "revenue":      {"type": "double"}
    }
  }
}`

// EnsureIndex creates the index with its mapping if it does not exist yet.
// Safe to run on every startup.
func (ix *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := ix.client.Indices.Exists([]string{ix.index},
		ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: index exists check: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}
	if res.StatusCode != 404 {
		return fmt.Errorf("search: index exists check: %s", res.String())
	}

	cres, err := ix.client.Indices.Create(
		ix.index,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}
	defer cres.Body.Close()

	if cres.IsError() {
		return fmt.Errorf("search: create index: %s", cres.String())
	}
	return nil
}

// IndexAll upserts the documents one by one and streams per-document results.
// The channel is closed when every document has been attempted; failures are
// reported on the channel and logged, never returned. Callers that do not care
// about individual outcomes can simply drain the channel.
func (ix *Indexer) IndexAll(ctx context.Context, docs []Document) <-chan Result {
	results := make(chan Result, len(docs))

	go func() {
		defer close(results)
		for _, doc := range docs {
			err := ix.indexOne(ctx, doc)

			status := "ok"
			if err != nil {
				status = "error"
				ix.log.Printf("stage=index error id=%s err=%v", doc.ID, err)
			}
			metrics.IncCounter("search_index_total", 1, metrics.Labels{"status": status})

			results <- Result{ID: doc.ID, Err: err}
		}
	}()
	return results
}

func (ix *Indexer) indexOne(ctx context.Context, doc Document) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}

	res, err := ix.client.Index(
		ix.index,
		&buf,
		ix.client.Index.WithContext(ctx),
		ix.client.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document %s: %s", doc.ID, res.String())
	}
	return nil
}

// Search runs a full-text query over name and overview and returns the
// matching documents. limit <= 0 takes the server default page size.
func (ix *Indexer) Search(ctx context.Context, q string, limit int) ([]Document, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "overview"},
			},
		},
	}
	if limit > 0 {
		query["size"] = limit
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("search: encode query: %w", err)
	}

	start := time.Now()
	res, err := ix.client.Search(
		ix.client.Search.WithContext(ctx),
		ix.client.Search.WithIndex(ix.index),
		ix.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search: %s", res.String())
	}

	var body struct {
		Hits struct {
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	ix.log.Printf("stage=search ok duration=%s hits=%d",
		time.Since(start).Round(time.Millisecond), len(body.Hits.Hits))

	docs := make([]Document, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}
