// Package linkedin decides whether search results describe a LinkedIn profile
// and extracts structured fields from the matching result's snippet.
package linkedin

import (
	"net/url"
	"regexp"
	"strings"
)

// profilePath is the path shape every public profile URL contains.
const profilePath = "linkedin.com/in/"

var slugRegex = regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#\s]+)`)

// Match returns true if the URL is a LinkedIn profile URL.
func Match(urlStr string) bool {
	return strings.Contains(strings.ToLower(urlStr), profilePath)
}

// ExtractSlug returns the lowercased public identifier from a profile URL.
// The second return value is false when the URL has no linkedin.com/in/<slug> path,
// or when the slug decodes to more than one path segment.
func ExtractSlug(urlStr string) (string, bool) {
	m := slugRegex.FindStringSubmatch(urlStr)
	if len(m) < 2 {
		return "", false
	}
	slug := m[1]
	if strings.Contains(slug, "%") {
		if decoded, err := url.PathUnescape(slug); err == nil {
			slug = decoded
		}
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}

// ProfileURL returns the canonical profile URL for a slug.
func ProfileURL(slug string) string {
	return "https://www.linkedin.com/in/" + url.PathEscape(slug) + "/"
}

// urlHasSlug reports whether a result URL references the slug, in either its
// decoded or percent-encoded form.
func urlHasSlug(resultURL, slug string) bool {
	if slug == "" {
		return false
	}
	u := strings.ToLower(resultURL)
	if strings.Contains(u, slug) {
		return true
	}
	escaped := strings.ToLower(url.PathEscape(slug))
	return escaped != slug && strings.Contains(u, escaped)
}
