// Package search queries web search APIs for indexed LinkedIn profile snippets.
//
// Providers register themselves by name; callers pick one at startup:
//
//	s, err := search.New("google", search.Credentials{APIKey: key, EngineID: cx},
//	    search.WithLogger(logger))
//	results, err := s.Search(ctx, search.Query("jane-doe"), search.DefaultNumResults)
package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/codeGROOVE-dev/linkscout/pkg/httpcache"
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// DefaultNumResults is how many results are requested per query.
const DefaultNumResults = 5

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// Searcher runs a text query against a search provider.
// Implementations return errors wrapping profile.ErrSearchFailed.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]profile.SearchResult, error)
}

// Query builds the provider query for a profile slug.
func Query(slug string) string {
	return "site:linkedin.com/in " + slug
}

// Credentials identify the caller to a provider.
type Credentials struct {
	APIKey string
	// EngineID is the search engine or context identifier, where the provider needs one.
	EngineID string
}

// Option configures a Searcher.
type Option func(*options)

type options struct {
	cache      httpcache.Cacher
	logger     *slog.Logger
	httpClient *http.Client
	limiter    *rate.Limiter
	endpoint   string
	attempts   uint
}

// WithCache sets a cache for storing provider responses.
func WithCache(cache httpcache.Cacher) Option {
	return func(o *options) { o.cache = cache }
}

// WithLogger sets a logger for the searcher.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithEndpoint overrides the provider's API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithAttempts sets the total number of tries per search. The default is one.
func WithAttempts(n uint) Option {
	return func(o *options) { o.attempts = n }
}

// WithLimiter paces outbound provider calls.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(o *options) { o.limiter = limiter }
}

func buildOptions(endpoint string, opts []Option) *options {
	o := &options{
		endpoint: endpoint,
		logger:   slog.Default(),
		attempts: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return o
}

func (o *options) fetchOptions(cacheKey string, validator httpcache.ResponseValidator) httpcache.FetchOptions {
	return httpcache.FetchOptions{
		Limiter:   o.limiter,
		Validator: validator,
		CacheKey:  cacheKey,
		Attempts:  o.attempts,
	}
}

// Factory creates a Searcher from credentials.
type Factory func(creds Credentials, opts ...Option) (Searcher, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds a provider under name.
// This should be called from each provider's init() function.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic("search provider already registered: " + name)
	}
	registry[name] = f
}

// Providers returns the registered provider names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the named provider's Searcher.
func New(name string, creds Credentials, opts ...Option) (Searcher, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown search provider %q (known: %v)", name, Providers())
	}
	return f(creds, opts...)
}

func searchFailed(err error) error {
	return fmt.Errorf("%w: %w", profile.ErrSearchFailed, err)
}
