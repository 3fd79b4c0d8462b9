// Package pipeline orchestrates a run: list documents from a source,
// skip ones the content store already has, hydrate and extract the
// rest, and collect output records.
//
// Processing is single-threaded and sequential. If this is ever fanned
// out across workers, note that the existence check and the extraction
// are not atomic: two workers could both see "not found" for the same
// title and extract it twice. Acceptable for a single-operator batch
// tool, but a real limitation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fedwatch/fedwatch/internal/emit"
	"github.com/fedwatch/fedwatch/internal/extract"
	"github.com/fedwatch/fedwatch/internal/providers"
	"github.com/fedwatch/fedwatch/internal/source"
)

// DefaultMaxConsecutiveFetchFailures aborts a run whose source site
// keeps failing document after document.
const DefaultMaxConsecutiveFetchFailures = 3

// ExistsFunc reports whether a title is already in the content store.
// Errors propagate; a dead store must abort the run, never read as
// "not found".
type ExistsFunc func(ctx context.Context, title string) (bool, error)

// ProcessFunc turns one hydrated document into an output record.
type ProcessFunc func(ctx context.Context, doc *source.RawDocument) (emit.Record, error)

// Params configures a run.
type Params struct {
	Adapter source.Adapter
	Options source.FetchOptions
	Exists  ExistsFunc
	Process ProcessFunc
	Logger  *slog.Logger

	// MaxConsecutiveFetchFailures bounds hydration failures in a row
	// before the run aborts. Zero means the default.
	MaxConsecutiveFetchFailures int
}

// Stats summarizes a run for the operator.
type Stats struct {
	Listed   int
	Skipped  int
	Accepted int
	Failed   int
}

// Run executes one pipeline run and returns the accepted records.
//
// Per-document failures (extraction retries exhausted, a page that
// will not fetch) skip that document and continue. Connectivity-level
// failures (backend unreachable, content store unreachable, the source
// failing repeatedly) abort the whole run instead of failing every
// remaining document one at a time.
func Run(ctx context.Context, p Params) ([]emit.Record, Stats, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxConsecutive := p.MaxConsecutiveFetchFailures
	if maxConsecutive <= 0 {
		maxConsecutive = DefaultMaxConsecutiveFetchFailures
	}

	var stats Stats

	docs, err := p.Adapter.Fetch(ctx, p.Options)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to list documents from %s: %w", p.Adapter.Name(), err)
	}
	stats.Listed = len(docs)
	logger.Info("listed documents", "source", p.Adapter.Name(), "count", len(docs))

	var records []emit.Record
	consecutiveFetchFailures := 0

	for i := range docs {
		doc := &docs[i]
		if err := ctx.Err(); err != nil {
			return records, stats, err
		}

		exists, err := p.Exists(ctx, doc.Title)
		if err != nil {
			return records, stats, fmt.Errorf("existence check for %q: %w", doc.Title, err)
		}
		if exists {
			logger.Warn("skipping document, already exists", "title", doc.Title)
			stats.Skipped++
			continue
		}

		logger.Info("processing document", "title", doc.Title, "source", doc.Source)

		if err := p.Adapter.Hydrate(ctx, doc); err != nil {
			stats.Failed++
			consecutiveFetchFailures++
			logger.Error("failed to hydrate document", "title", doc.Title, "error", err)
			if consecutiveFetchFailures >= maxConsecutive {
				return records, stats, fmt.Errorf("aborting run: %d consecutive fetch failures from %s: %w",
					consecutiveFetchFailures, p.Adapter.Name(), err)
			}
			continue
		}
		consecutiveFetchFailures = 0

		if doc.Text == "" {
			logger.Warn("skipping document with empty text", "title", doc.Title)
			stats.Skipped++
			continue
		}

		record, err := p.Process(ctx, doc)
		if err != nil {
			var ef *extract.ExtractionFailure
			if errors.As(err, &ef) {
				stats.Failed++
				logger.Error("skipping document, extraction failed",
					"title", doc.Title, "attempts", ef.Attempts, "issues", issueSummary(ef))
				continue
			}
			if errors.Is(err, providers.ErrUnavailable) {
				return records, stats, fmt.Errorf("aborting run, backend unavailable: %w", err)
			}
			return records, stats, fmt.Errorf("processing %q: %w", doc.Title, err)
		}

		records = append(records, record)
		stats.Accepted++
		logger.Info("accepted document", "title", doc.Title)
	}

	logger.Info("run complete",
		"source", p.Adapter.Name(),
		"listed", stats.Listed,
		"accepted", stats.Accepted,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return records, stats, nil
}

func issueSummary(ef *extract.ExtractionFailure) []string {
	out := make([]string, len(ef.Issues))
	for i, issue := range ef.Issues {
		out[i] = issue.String()
	}
	return out
}
