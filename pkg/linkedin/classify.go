package linkedin

import (
	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// Classify maps a result set and its selection onto a response.
// Rules are checked in priority order; the first that applies wins.
func Classify(results []profile.SearchResult, sel Selection) *profile.Response {
	switch {
	case len(results) == 0:
		return newResponse(profile.StatusNotFound, profile.ReasonNoResults, []profile.SearchResult{})
	case sel.Best == nil && !sel.SlugSeen:
		return newResponse(profile.StatusNotFound, profile.ReasonNoSlugMatch, []profile.SearchResult{})
	case sel.Best == nil:
		return newResponse(profile.StatusAmbiguous, profile.ReasonMultipleCandidates, results)
	}

	best := sel.Best.Result
	structured := Structure(best.Title, best.Snippet)
	resp := newResponse(profile.StatusPublicStructured, profile.ReasonProfilePublic, best)
	resp.StructuredData = &structured
	return resp
}

func newResponse(status profile.Status, reason profile.ReasonCode, raw any) *profile.Response {
	return &profile.Response{
		Status:        status,
		Confidence:    status.Confidence(),
		ReasonCode:    reason,
		ReasonMessage: reason.Message(),
		RawGoogleData: raw,
	}
}
