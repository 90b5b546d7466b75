package linkedin

import (
	"slices"
	"strings"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// AcceptThreshold is the minimum score for a result to be selected.
const AcceptThreshold = 50

// Selection is the outcome of candidate selection over one result set.
type Selection struct {
	// Best is the highest-scoring result, or nil when nothing reached AcceptThreshold.
	Best *profile.ScoredResult
	// SlugSeen is true when any result URL references the slug, regardless of score.
	SlugSeen bool
}

// Rank scores every result and returns them in descending score order.
// Results with equal scores keep their original order.
func Rank(results []profile.SearchResult, slug string) []profile.ScoredResult {
	scored := make([]profile.ScoredResult, 0, len(results))
	for _, r := range results {
		scored = append(scored, profile.ScoredResult{Result: r, Score: Score(r, slug)})
	}
	slices.SortStableFunc(scored, func(a, b profile.ScoredResult) int {
		return b.Score - a.Score
	})
	return scored
}

// Select picks at most one candidate from results.
func Select(results []profile.SearchResult, slug string) Selection {
	slug = strings.ToLower(slug)
	var sel Selection
	for _, r := range results {
		if urlHasSlug(r.URL, slug) {
			sel.SlugSeen = true
			break
		}
	}

	ranked := Rank(results, slug)
	if len(ranked) > 0 && accepted(ranked[0].Score) {
		best := ranked[0]
		sel.Best = &best
	}
	return sel
}

func accepted(score int) bool {
	return score >= AcceptThreshold
}
