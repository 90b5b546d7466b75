package linkedin

import (
	"strings"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// Signal weights. A result satisfying every signal scores MaxScore.
const (
	pathShapeWeight     = 20
	exactSlugWeight     = 40
	tokenCoverageWeight = 20
	experienceWeight    = 5
	educationWeight     = 5
	locationWeight      = 10

	MaxScore = pathShapeWeight + exactSlugWeight + tokenCoverageWeight +
		experienceWeight + educationWeight + locationWeight
)

// Score rates how well a search result matches the target slug.
// Each signal is evaluated independently and all comparisons ignore case.
// The location signal counts a known place as well as a literal "location:"
// label, since snippets usually name the city without labeling it.
func Score(r profile.SearchResult, slug string) int {
	slug = strings.ToLower(slug)
	u := strings.ToLower(r.URL)
	snippet := strings.ToLower(r.Snippet)

	var score int
	if strings.Contains(u, profilePath) {
		score += pathShapeWeight
	}
	if urlHasSlug(u, slug) {
		score += exactSlugWeight
	}
	if titleCoversSlug(r.Title, slug) {
		score += tokenCoverageWeight
	}
	if strings.Contains(snippet, "experience:") {
		score += experienceWeight
	}
	if strings.Contains(snippet, "education:") {
		score += educationWeight
	}
	if strings.Contains(snippet, "location:") || findPlace(snippet) != "" {
		score += locationWeight
	}
	return score
}

// slugTokens splits a slug on whitespace and hyphens.
func slugTokens(slug string) []string {
	return strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == ' ' || r == '\t' || r == '\n'
	})
}

// titleCoversSlug reports whether every slug token appears in the title.
// Slugs without tokens never match.
func titleCoversSlug(title, slug string) bool {
	tokens := slugTokens(slug)
	if len(tokens) == 0 {
		return false
	}
	title = strings.ToLower(title)
	for _, tok := range tokens {
		if !strings.Contains(title, tok) {
			return false
		}
	}
	return true
}
