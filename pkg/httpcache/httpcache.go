// Package httpcache provides HTTP response caching with thundering herd prevention.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int64
	Misses int64
}

var globalStats atomic.Pointer[Stats]

func init() {
	globalStats.Store(&Stats{})
}

// CacheStats returns the current cache statistics.
func CacheStats() Stats {
	return *globalStats.Load()
}

// ResetStats resets the cache statistics.
func ResetStats() {
	globalStats.Store(&Stats{})
}

func recordHit() {
	for {
		old := globalStats.Load()
		updated := &Stats{Hits: old.Hits + 1, Misses: old.Misses}
		if globalStats.CompareAndSwap(old, updated) {
			return
		}
	}
}

func recordMiss() {
	for {
		old := globalStats.Load()
		updated := &Stats{Hits: old.Hits, Misses: old.Misses + 1}
		if globalStats.CompareAndSwap(old, updated) {
			return
		}
	}
}

// Cacher allows external cache implementations for sharing across packages.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache wraps sfcache for HTTP response caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a new Cache with disk persistence at ~/.cache/linkscout.
func New(ttl time.Duration) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "linkscout"))
}

// NewNull creates a Cache with no persistence (all gets miss, all sets discard).
func NewNull() *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc, ttl: 0}
}

// NewWithPath creates a new Cache with disk persistence at the specified path.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("linkscout", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a cache key using SHA256 hash.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// HTTPError represents an HTTP error response.
type HTTPError struct {
	URL        string
	Body       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d fetching %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// ResponseValidator validates a response body. Returns true if cacheable.
type ResponseValidator func(body []byte) bool

// FetchOptions controls how Fetch talks to the network.
type FetchOptions struct {
	// Limiter paces outbound attempts. Nil disables pacing.
	Limiter *rate.Limiter
	// Validator rejects bodies that must not be cached. The body is still returned.
	Validator ResponseValidator
	// CacheKey overrides the request URL as the cache key, e.g. to keep secrets out of it.
	CacheKey string
	// Attempts is the total number of tries. Zero means a single attempt.
	Attempts uint
}

// Fetch executes req, consulting cache first when one is supplied.
// Concurrent calls for the same key share one request. Errors are never cached.
func Fetch(ctx context.Context, cache Cacher, client *http.Client, req *http.Request, logger *slog.Logger, opts FetchOptions) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cacheKey := opts.CacheKey
	if cacheKey == "" {
		cacheKey = req.URL.String()
	}

	if cache == nil {
		recordMiss()
		return doFetch(ctx, client, req, logger, opts)
	}

	var wasFetched bool
	data, err := cache.GetSet(ctx, URLToKey(cacheKey), func(ctx context.Context) ([]byte, error) {
		wasFetched = true
		recordMiss()
		logger.DebugContext(ctx, "cache miss", "key", cacheKey)
		body, fetchErr := doFetch(ctx, client, req, logger, opts)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if opts.Validator != nil && !opts.Validator(body) {
			logger.DebugContext(ctx, "skipping cache due to validation failure", "key", cacheKey)
			return nil, &validationError{data: body}
		}
		return body, nil
	}, cache.TTL())

	if !wasFetched {
		recordHit()
		logger.DebugContext(ctx, "cache hit", "key", cacheKey)
	}

	var validErr *validationError
	if errors.As(err, &validErr) {
		return validErr.data, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

type validationError struct{ data []byte }

func (*validationError) Error() string { return "validation failed" }

func doFetch(ctx context.Context, client *http.Client, req *http.Request, logger *slog.Logger, opts FetchOptions) ([]byte, error) {
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 1
	}

	return retry.DoWithData(
		func() ([]byte, error) {
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(ctx); err != nil {
					return nil, retry.Unrecoverable(err)
				}
			}

			resp, err := client.Do(req.Clone(ctx))
			if err != nil {
				var urlErr *url.Error
				if errors.As(err, &urlErr) {
					urlErr.URL = withoutQuery(req.URL)
				}
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024)) //nolint:errcheck // best effort detail
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: withoutQuery(req.URL), Body: string(body)}
			}

			return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.DebugContext(ctx, "retrying HTTP request", "attempt", n+1, "error", err)
		}),
	)
}

// isRetryableError returns true for transient errors that should be retried.
func isRetryableError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false // 4xx errors (except 429) are permanent
		}
	}
	// Network errors, timeouts, etc. are retryable
	return true
}

// withoutQuery drops the query string, which may carry API keys.
func withoutQuery(u *url.URL) string {
	stripped := *u
	stripped.RawQuery = ""
	stripped.User = nil
	return stripped.String()
}
