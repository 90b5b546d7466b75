package linkedin

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// ellipsis is the placeholder search providers use for truncated text.
const ellipsis = "..."

// knownPlaces is searched in order; the first place found in a snippet wins.
var knownPlaces = []string{
	"mumbai", "pune", "delhi", "bangalore", "bengaluru", "hyderabad",
	"chennai", "kolkata", "ahmedabad", "india", "new york", "london",
}

var (
	// segmentSeparators splits snippets on middle dot, pipe and bullet.
	segmentSeparators = regexp.MustCompile(`[·|•]`)

	// headlineRegex finds a role keyword followed by the rest of its clause.
	headlineRegex = regexp.MustCompile(`(?i)(?:student|engineer|developer|designer|analyst|specialist|manager)[^,.]*`)

	// inlineEmployerRegex matches phrases like "Engineer at Acme Corp".
	inlineEmployerRegex = regexp.MustCompile(`\b(?:at|with)\s+([A-Z][A-Za-z0-9 &]+)`)
)

// Structure extracts profile fields from a search result's title and snippet.
// Fields that cannot be found are left empty.
func Structure(title, snippet string) profile.StructuredProfile {
	var p profile.StructuredProfile

	if before, _, found := strings.Cut(title, "-"); found {
		p.Name = cleanValue(before)
	}

	segments := splitSegments(snippet)

	for _, s := range segments {
		if s == "" {
			continue
		}
		if s != ellipsis {
			p.About = s
		}
		break
	}

	p.Experience = labeledValue(segments, "experience")
	if p.Experience == "" {
		if m := inlineEmployerRegex.FindStringSubmatch(snippet); len(m) > 1 {
			p.Experience = cleanValue(m[1])
		}
	}
	p.Education = labeledValue(segments, "education")

	if place := findPlace(strings.ToLower(snippet)); place != "" {
		// Casers are stateful and must not be shared across goroutines.
		p.Location = cases.Title(language.Und).String(place)
	}

	if p.About != "" {
		if m := headlineRegex.FindString(p.About); m != "" {
			p.Headline = cleanValue(m)
		}
	}

	return p
}

func splitSegments(snippet string) []string {
	parts := segmentSeparators.Split(snippet, -1)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// labeledValue returns the value of the first segment mentioning label,
// taking the text after its first colon when one is present.
func labeledValue(segments []string, label string) string {
	for _, s := range segments {
		if !strings.Contains(strings.ToLower(s), label) {
			continue
		}
		if _, after, found := strings.Cut(s, ":"); found {
			s = after
		}
		return cleanValue(s)
	}
	return ""
}

// cleanValue trims v and discards the truncation placeholder.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if v == ellipsis {
		return ""
	}
	return v
}

// findPlace returns the first known place contained in the lowercased text.
func findPlace(lower string) string {
	for _, place := range knownPlaces {
		if strings.Contains(lower, place) {
			return place
		}
	}
	return ""
}
