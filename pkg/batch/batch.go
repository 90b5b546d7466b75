// Package batch extracts many profile URLs with bounded concurrency.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 4

// Extractor is the single-URL pipeline a batch fans out to.
type Extractor interface {
	Extract(ctx context.Context, profileURL string) (*profile.Response, error)
}

// Options controls batch pacing.
type Options struct {
	Logger *slog.Logger
	// Workers bounds concurrent extractions.
	Workers int
	// RateLimitRPS paces extraction starts. Zero disables pacing.
	RateLimitRPS float64
}

// Output is the result for one input URL. Exactly one of Response and Err is set.
type Output struct {
	Response *profile.Response `json:"response,omitempty"`
	URL      string            `json:"url"`
	Err      error             `json:"-"`
	Error    string            `json:"error,omitempty"`
}

// ExtractAll runs ex over urls and returns one Output per URL in input order.
// Per-URL failures are reported in Output.Err. A cancelled context stops
// scheduling; the remaining outputs carry the context error.
func ExtractAll(ctx context.Context, urls []string, ex Extractor, opts Options) ([]Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	out := make([]Output, len(urls))
	for i, u := range urls {
		out[i].URL = u
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range urls {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gCtx); err != nil {
					out[i].setErr(err)
					return nil
				}
			}
			if err := gCtx.Err(); err != nil {
				out[i].setErr(err)
				return nil
			}
			resp, err := ex.Extract(gCtx, u)
			if err != nil {
				logger.WarnContext(gCtx, "batch item failed", "url", u, "error", err)
				out[i].setErr(err)
				return nil
			}
			out[i].Response = resp
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("batch interrupted: %w", err)
	}
	return out, nil
}

func (o *Output) setErr(err error) {
	o.Err = err
	o.Error = err.Error()
}

// ReadURLs reads one URL per line, skipping blank lines and # comments.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read urls: %w", err)
	}
	return urls, nil
}
