// Package extract runs the profile lookup pipeline for one URL at a time.
//
//	ex := extract.New(cfg, searcher, extract.WithLogger(logger))
//	resp, err := ex.Extract(ctx, "https://www.linkedin.com/in/jane-doe")
//	if errors.Is(err, profile.ErrInvalidIdentifier) {
//	    // reject the request
//	}
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codeGROOVE-dev/linkscout/pkg/config"
	"github.com/codeGROOVE-dev/linkscout/pkg/linkedin"
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
	"github.com/codeGROOVE-dev/linkscout/pkg/search"
)

// Recorder receives pipeline events, e.g. for metrics.
type Recorder interface {
	RecordOutcome(resp *profile.Response)
	RecordSearchFailure()
	ObserveDuration(d time.Duration)
}

// Extractor turns profile URLs into classified responses.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	searcher   search.Searcher
	recorder   Recorder
	logger     *slog.Logger
	timeout    time.Duration
	numResults int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithRecorder sets a recorder for outcomes and failures.
func WithRecorder(r Recorder) Option {
	return func(e *Extractor) { e.recorder = r }
}

// New creates an Extractor that queries searcher using cfg's result count and timeout.
func New(cfg *config.Config, searcher search.Searcher, opts ...Option) *Extractor {
	e := &Extractor{
		searcher:   searcher,
		logger:     slog.Default(),
		timeout:    cfg.SearchTimeout,
		numResults: cfg.NumResults,
	}
	if e.timeout <= 0 {
		e.timeout = search.DefaultTimeout
	}
	if e.numResults <= 0 {
		e.numResults = search.DefaultNumResults
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract looks up the profile at profileURL.
// It returns an error wrapping profile.ErrInvalidIdentifier when the URL has no
// profile slug; every other path yields a response.
func (e *Extractor) Extract(ctx context.Context, profileURL string) (*profile.Response, error) {
	start := time.Now()

	slug, ok := linkedin.ExtractSlug(profileURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", profile.ErrInvalidIdentifier, profileURL)
	}

	results := e.search(ctx, slug)
	sel := linkedin.Select(results, slug)
	resp := linkedin.Classify(results, sel)

	attrs := []any{"slug", slug, "results", len(results), "status", resp.Status, "reason", resp.ReasonCode}
	if sel.Best != nil {
		attrs = append(attrs, "score", sel.Best.Score)
	}
	e.logger.InfoContext(ctx, "profile extracted", attrs...)

	if e.recorder != nil {
		e.recorder.RecordOutcome(resp)
		e.recorder.ObserveDuration(time.Since(start))
	}
	return resp, nil
}

// search makes one bounded provider call. Failures are logged and treated as no results.
func (e *Extractor) search(ctx context.Context, slug string) []profile.SearchResult {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results, err := e.searcher.Search(ctx, search.Query(slug), e.numResults)
	if err != nil {
		e.logger.WarnContext(ctx, "search failed, treating as no results", "slug", slug, "error", err)
		if e.recorder != nil {
			e.recorder.RecordSearchFailure()
		}
		return nil
	}
	e.logger.DebugContext(ctx, "search complete", "slug", slug, "results", len(results))
	return results
}

// Rank returns every result for profileURL with its score, best first.
// It is meant for diagnostics and makes the same single search call as Extract.
func (e *Extractor) Rank(ctx context.Context, profileURL string) ([]profile.ScoredResult, error) {
	slug, ok := linkedin.ExtractSlug(profileURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", profile.ErrInvalidIdentifier, profileURL)
	}
	return linkedin.Rank(e.search(ctx, slug), slug), nil
}
