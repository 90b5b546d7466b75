// Command linkscout classifies public LinkedIn profile URLs using a web search API.
//
// Usage:
//
//	linkscout https://www.linkedin.com/in/jane-doe
//	linkscout -batch urls.txt -workers 8
//	linkscout -serve -addr :8000
//
// Credentials come from GOOGLE_API_KEY and GOOGLE_CSE_ID (or BRAVE_API_KEY with
// -provider brave), read from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/codeGROOVE-dev/linkscout/pkg/batch"
	"github.com/codeGROOVE-dev/linkscout/pkg/config"
	"github.com/codeGROOVE-dev/linkscout/pkg/extract"
	"github.com/codeGROOVE-dev/linkscout/pkg/httpcache"
	"github.com/codeGROOVE-dev/linkscout/pkg/metrics"
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
	"github.com/codeGROOVE-dev/linkscout/pkg/search"
	"github.com/codeGROOVE-dev/linkscout/pkg/server"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
// Deferred cleanup finishes before it returns.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("linkscout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "enable debug logging")
	verbose := fs.Bool("v", false, "verbose logging (same as -debug)")
	provider := fs.String("provider", "", "search provider: google or brave (default from config)")
	noCache := fs.Bool("no-cache", false, "disable the search response cache even if LINKSCOUT_CACHE is set")
	cacheTTL := fs.Duration("cache-ttl", 0, "cache time-to-live (default from config, 24h)")
	batchFile := fs.String("batch", "", "extract every URL in `FILE`, one per line")
	workers := fs.Int("workers", batch.DefaultWorkers, "concurrent extractions in -batch mode")
	serveMode := fs.Bool("serve", false, "serve the HTTP API instead of extracting one URL")
	addr := fs.String("addr", "", "listen address for -serve (default from config, :8000)")
	rank := fs.Bool("rank", false, "print every scored search result instead of the classification")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if fs.NArg() < 1 && *batchFile == "" && !*serveMode {
		fmt.Fprintln(stderr, "Usage: linkscout [options] <linkedin-url>")
		fmt.Fprintln(stderr, "       linkscout [options] -batch FILE")
		fmt.Fprintln(stderr, "       linkscout [options] -serve [-addr ADDR]")
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\nProviders:", search.Providers())
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *cacheTTL > 0 {
		cfg.CacheTTL = *cacheTTL
	}
	if *noCache {
		cfg.CacheEnabled = false
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	logLevel := cfg.SlogLevel()
	if *debug || *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, profile.ErrMissingCredentials) {
			logger.Error("missing search credentials", "provider", cfg.Provider, "error", err)
		} else {
			logger.Error("invalid configuration", "error", err)
		}
		return 1
	}

	// Setup cache
	var httpCache *httpcache.Cache
	if cfg.CacheEnabled {
		if cfg.CacheDir != "" {
			httpCache, err = httpcache.NewWithPath(cfg.CacheTTL, cfg.CacheDir)
		} else {
			httpCache, err = httpcache.New(cfg.CacheTTL)
		}
		if err != nil {
			logger.Warn("failed to initialize cache, continuing without cache", "error", err)
			httpCache = nil
		} else {
			defer func() {
				if err := httpCache.Close(); err != nil {
					logger.Warn("failed to close cache", "error", err)
				}
				stats := httpcache.CacheStats()
				logger.Debug("cache stats", "hits", stats.Hits, "misses", stats.Misses)
			}()
			logger.Debug("HTTP cache initialized", "ttl", cfg.CacheTTL.String())
		}
	}

	// Build searcher
	opts := []search.Option{search.WithLogger(logger), search.WithAttempts(cfg.SearchAttempts)}
	if httpCache != nil {
		opts = append(opts, search.WithCache(httpCache))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, search.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)))
	}
	searcher, err := search.New(cfg.Provider, search.Credentials{APIKey: cfg.APIKey(), EngineID: cfg.GoogleCSEID}, opts...)
	if err != nil {
		logger.Error("failed to create searcher", "provider", cfg.Provider, "error", err)
		return 1
	}

	metrics.Register(prometheus.DefaultRegisterer)
	ex := extract.New(cfg, searcher, extract.WithLogger(logger), extract.WithRecorder(metrics.Recorder{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *serveMode:
		err = serve(ctx, ex, cfg.ListenAddr, logger)
	case *batchFile != "":
		err = runBatch(ctx, ex, *batchFile, batchOptions(cfg, *workers, logger), stdout)
	case *rank:
		err = runRank(ctx, ex, fs.Arg(0), stdout)
	default:
		err = runOne(ctx, ex, fs.Arg(0), stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runOne(ctx context.Context, ex *extract.Extractor, input string, w io.Writer) error {
	resp, err := ex.Extract(ctx, input)
	if err != nil {
		return err
	}
	return outputJSON(w, resp)
}

func runRank(ctx context.Context, ex *extract.Extractor, input string, w io.Writer) error {
	ranked, err := ex.Rank(ctx, input)
	if err != nil {
		return err
	}
	return outputJSON(w, ranked)
}

// batchOptions paces batch starts at the configured request rate. The searcher's
// own limiter still paces retries within each extraction.
func batchOptions(cfg *config.Config, workers int, logger *slog.Logger) batch.Options {
	return batch.Options{
		Logger:       logger,
		Workers:      workers,
		RateLimitRPS: cfg.RateLimitRPS,
	}
}

func runBatch(ctx context.Context, ex batch.Extractor, path string, opts batch.Options, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	urls, err := batch.ReadURLs(f)
	f.Close() //nolint:errcheck,gosec // read-only
	if err != nil {
		return err
	}

	out, err := batch.ExtractAll(ctx, urls, ex, opts)
	if jsonErr := outputJSON(w, out); jsonErr != nil {
		return jsonErr
	}
	return err
}

func serve(ctx context.Context, ex *extract.Extractor, addr string, logger *slog.Logger) error {
	srv := server.New(ex, server.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
