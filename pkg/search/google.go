package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/codeGROOVE-dev/linkscout/pkg/httpcache"
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

const googleEndpoint = "https://www.googleapis.com/customsearch/v1"

// googleMaxResults is the largest page size the Custom Search API accepts.
const googleMaxResults = 10

func init() {
	Register("google", func(creds Credentials, opts ...Option) (Searcher, error) {
		if creds.APIKey == "" || creds.EngineID == "" {
			return nil, fmt.Errorf("%w: google needs an API key and a search engine ID", profile.ErrMissingCredentials)
		}
		return NewGoogleSearcher(creds.APIKey, creds.EngineID, opts...), nil
	})
}

// GoogleSearcher implements Searcher using the Google Custom Search JSON API.
// Free tier: 100 queries/day.
type GoogleSearcher struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	opts       *options
	apiKey     string
	engineID   string
}

// googleResponse represents the Custom Search API response.
type googleResponse struct {
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
		Code    int    `json:"code"`
	} `json:"error"`
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// NewGoogleSearcher creates a new Custom Search API client.
// engineID is the programmable search engine ID ("cx").
func NewGoogleSearcher(apiKey, engineID string, opts ...Option) *GoogleSearcher {
	o := buildOptions(googleEndpoint, opts)
	return &GoogleSearcher{
		httpClient: o.httpClient,
		cache:      o.cache,
		logger:     o.logger,
		opts:       o,
		apiKey:     apiKey,
		engineID:   engineID,
	}
}

// Search performs a web search using the Custom Search API.
func (g *GoogleSearcher) Search(ctx context.Context, query string, num int) ([]profile.SearchResult, error) {
	num = max(1, min(num, googleMaxResults))

	u, err := url.Parse(g.opts.endpoint)
	if err != nil {
		return nil, searchFailed(fmt.Errorf("parse endpoint: %w", err))
	}
	q := u.Query()
	q.Set("key", g.apiKey)
	q.Set("cx", g.engineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, searchFailed(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	g.logger.DebugContext(ctx, "google search", "query", query, "num", num)

	cacheKey := fmt.Sprintf("google|%s|%s|%d", g.engineID, query, num)
	data, err := httpcache.Fetch(ctx, g.cache, g.httpClient, req, g.logger, g.opts.fetchOptions(cacheKey, isCleanGoogleResponse))
	if err != nil {
		return nil, searchFailed(err)
	}
	return parseGoogleResults(data)
}

// isCleanGoogleResponse reports whether a body is safe to cache.
func isCleanGoogleResponse(body []byte) bool {
	var gr googleResponse
	return json.Unmarshal(body, &gr) == nil && gr.Error == nil
}

// parseGoogleResults converts the raw JSON response to SearchResult slice.
func parseGoogleResults(data []byte) ([]profile.SearchResult, error) {
	var gr googleResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, searchFailed(fmt.Errorf("decode response: %w", err))
	}
	if gr.Error != nil {
		return nil, searchFailed(fmt.Errorf("google API error %d: %s", gr.Error.Code, gr.Error.Message))
	}

	results := make([]profile.SearchResult, 0, len(gr.Items))
	for _, item := range gr.Items {
		results = append(results, profile.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			URL:     item.Link,
		})
	}
	return results, nil
}
