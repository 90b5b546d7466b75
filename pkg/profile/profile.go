// Package profile defines the common types for profile discovery and extraction.
package profile

import (
	"errors"
)

// Common errors returned by linkscout packages.
var (
	ErrInvalidIdentifier  = errors.New("invalid linkedin profile url")
	ErrMissingCredentials = errors.New("missing search provider credentials")
	ErrSearchFailed       = errors.New("search request failed")
)

// SearchResult is a single indexed hit returned by a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// ScoredResult pairs a search result with its relevance score for a slug.
type ScoredResult struct {
	Result SearchResult
	Score  int
}

// StructuredProfile holds fields extracted from a result's title and snippet.
// An empty field means the field was not found; it is omitted from JSON.
type StructuredProfile struct {
	Name       string `json:"name,omitempty"`
	About      string `json:"about,omitempty"`
	Experience string `json:"experience,omitempty"`
	Education  string `json:"education,omitempty"`
	Location   string `json:"location,omitempty"`
	Headline   string `json:"headline,omitempty"`
}

// Status is the categorical result of an extraction.
type Status string

// Status values, ordered from strongest to weakest match.
const (
	StatusPublicStructured Status = "public_structured"
	StatusAmbiguous        Status = "ambiguous"
	StatusNotFound         Status = "not_found"
)

// Confidence returns the fixed confidence reported for a status.
func (s Status) Confidence() float64 {
	switch s {
	case StatusPublicStructured:
		return 0.9
	case StatusAmbiguous:
		return 0.4
	default:
		return 0.2
	}
}

// ReasonCode explains why a status was chosen.
type ReasonCode string

// Reason codes reported alongside a status.
const (
	ReasonProfilePublic      ReasonCode = "PROFILE_PUBLIC"
	ReasonMultipleCandidates ReasonCode = "MULTIPLE_CANDIDATES"
	ReasonNoSlugMatch        ReasonCode = "NO_SLUG_MATCH"
	ReasonNoResults          ReasonCode = "GOOGLE_NO_RESULTS"
)

// Message returns the human-readable explanation for a reason code.
func (r ReasonCode) Message() string {
	switch r {
	case ReasonProfilePublic:
		return "A public profile snippet matched the requested profile"
	case ReasonMultipleCandidates:
		return "Related results were found but none matched the profile confidently"
	case ReasonNoSlugMatch:
		return "No search result referenced the requested profile"
	case ReasonNoResults:
		return "The search provider returned no results"
	default:
		return ""
	}
}

// Response is the outcome of one extraction request.
//
// RawGoogleData holds the chosen SearchResult for public_structured outcomes,
// every result for ambiguous outcomes, and an empty slice otherwise.
//
//nolint:govet // fieldalignment: intentional layout matches the wire order
type Response struct {
	Status         Status             `json:"status"`
	Confidence     float64            `json:"confidence"`
	ReasonCode     ReasonCode         `json:"reason_code"`
	ReasonMessage  string             `json:"reason_message"`
	RawGoogleData  any                `json:"raw_google_data"`
	StructuredData *StructuredProfile `json:"structured_data,omitempty"`
}
