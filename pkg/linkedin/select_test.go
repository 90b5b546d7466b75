package linkedin

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

var (
	// Scores 45 for jane-doe: slug in URL plus an experience marker.
	weakJane = profile.SearchResult{
		Title:   "Profile",
		Snippet: "Experience: Acme",
		URL:     "https://example.com/jane-doe",
	}
	// Scores 50 for jane-doe: slug in URL plus a known place.
	borderlineJane = profile.SearchResult{
		Title:   "Profile",
		Snippet: "Based in London",
		URL:     "https://example.com/profiles/jane-doe",
	}
	// Scores 20 for jane-doe: profile path only.
	stranger = profile.SearchResult{
		Title:   "John Smith - Analyst",
		Snippet: "Analyst",
		URL:     "https://www.linkedin.com/in/john-smith",
	}
)

func TestAccepted(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{0, false},
		{49, false},
		{50, true},
		{51, true},
		{100, true},
	}

	for _, tt := range tests {
		if got := accepted(tt.score); got != tt.want {
			t.Errorf("accepted(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		results  []profile.SearchResult
		wantBest *profile.ScoredResult
		wantSeen bool
	}{
		{
			name:    "no_results",
			results: nil,
		},
		{
			name:     "strong_match",
			results:  []profile.SearchResult{stranger, janeDoe},
			wantBest: &profile.ScoredResult{Result: janeDoe, Score: 100},
			wantSeen: true,
		},
		{
			name:     "exactly_threshold",
			results:  []profile.SearchResult{borderlineJane},
			wantBest: &profile.ScoredResult{Result: borderlineJane, Score: 50},
			wantSeen: true,
		},
		{
			name:     "below_threshold_with_slug",
			results:  []profile.SearchResult{stranger, weakJane},
			wantSeen: true,
		},
		{
			name:    "below_threshold_without_slug",
			results: []profile.SearchResult{stranger},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.results, "jane-doe")
			want := Selection{Best: tt.wantBest, SlugSeen: tt.wantSeen}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Select() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectTieKeepsFirstSeen(t *testing.T) {
	first := janeDoe
	second := janeDoe
	second.URL = "https://www.linkedin.com/in/jane-doe/"

	got := Select([]profile.SearchResult{first, second}, "jane-doe")
	if got.Best == nil {
		t.Fatal("Select() returned no candidate")
	}
	if got.Best.Result.URL != first.URL {
		t.Errorf("Select() picked %q, want first-seen %q", got.Best.Result.URL, first.URL)
	}
}

func TestSelectOrderIndependent(t *testing.T) {
	results := []profile.SearchResult{stranger, weakJane, janeDoe}
	perms := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}

	for _, p := range perms {
		permuted := []profile.SearchResult{results[p[0]], results[p[1]], results[p[2]]}
		got := Select(permuted, "jane-doe")
		if got.Best == nil {
			t.Fatalf("perm %v: no candidate selected", p)
		}
		if got.Best.Result != janeDoe || got.Best.Score != 100 {
			t.Errorf("perm %v: Select() = %+v, want jane-doe with score 100", p, *got.Best)
		}
	}
}

func TestRank(t *testing.T) {
	got := Rank([]profile.SearchResult{stranger, weakJane, janeDoe}, "jane-doe")
	want := []profile.ScoredResult{
		{Result: janeDoe, Score: 100},
		{Result: weakJane, Score: 45},
		{Result: stranger, Score: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}
