package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/linkscout/pkg/httpcache"
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

func init() {
	Register("brave", func(creds Credentials, opts ...Option) (Searcher, error) {
		key := creds.APIKey
		if key == "" {
			key = LoadBraveAPIKey()
		}
		if key == "" {
			return nil, fmt.Errorf("%w: brave needs BRAVE_API_KEY or ~/.brave", profile.ErrMissingCredentials)
		}
		return NewBraveSearcher(key, opts...), nil
	})
}

// BraveSearcher implements Searcher using the Brave Search API.
// Free tier: 2,000 queries/month, 1 query/second.
// Get an API key at https://api.search.brave.com/
type BraveSearcher struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	opts       *options
	apiKey     string
}

// braveResponse represents the Brave Search API response.
type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// NewBraveSearcher creates a new Brave Search API client.
// apiKey is your Brave Search API subscription token.
func NewBraveSearcher(apiKey string, opts ...Option) *BraveSearcher {
	o := buildOptions(braveEndpoint, opts)
	return &BraveSearcher{
		httpClient: o.httpClient,
		cache:      o.cache,
		logger:     o.logger,
		opts:       o,
		apiKey:     apiKey,
	}
}

// LoadBraveAPIKey loads the Brave API key from multiple sources (in priority order):
// 1. BRAVE_API_KEY environment variable
// 2. ~/.brave file (first line, trimmed)
//
// Returns empty string if no key is found.
func LoadBraveAPIKey() string {
	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		return key
	}

	if home, err := os.UserHomeDir(); err == nil {
		braveFile := filepath.Join(home, ".brave")
		if data, err := os.ReadFile(braveFile); err == nil {
			if key := strings.TrimSpace(string(data)); key != "" {
				return key
			}
		}
	}

	return ""
}

// Search performs a web search using the Brave Search API.
func (b *BraveSearcher) Search(ctx context.Context, query string, num int) ([]profile.SearchResult, error) {
	num = max(1, num)

	u, err := url.Parse(b.opts.endpoint)
	if err != nil {
		return nil, searchFailed(fmt.Errorf("parse endpoint: %w", err))
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(num))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, searchFailed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	b.logger.DebugContext(ctx, "brave search", "query", query, "count", num)

	data, err := httpcache.Fetch(ctx, b.cache, b.httpClient, req, b.logger, b.opts.fetchOptions("brave|"+u.String(), isCleanBraveResponse))
	if err != nil {
		return nil, searchFailed(err)
	}
	return parseBraveResults(data)
}

// isCleanBraveResponse reports whether a body decodes and is safe to cache.
func isCleanBraveResponse(body []byte) bool {
	var br braveResponse
	return json.Unmarshal(body, &br) == nil
}

// parseBraveResults converts the raw JSON response to SearchResult slice.
func parseBraveResults(data []byte) ([]profile.SearchResult, error) {
	var br braveResponse
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, searchFailed(fmt.Errorf("decode response: %w", err))
	}

	results := make([]profile.SearchResult, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		results = append(results, profile.SearchResult{
			Title:   r.Title,
			Snippet: r.Description,
			URL:     r.URL,
		})
	}
	return results, nil
}
