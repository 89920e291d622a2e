package domain

import "time"

type Review struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	PlaceID     string    `json:"placeId"`   // external places-API identifier
	PlaceName   string    `json:"placeName"` // denormalized display name
	Rating      float64   `json:"rating"`
	Notes       *string   `json:"notes,omitempty"`
	Photos      []string  `json:"photos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	FinalRating *float64  `json:"finalRating"` // nil until comparative resolution completes
}

// Finalized reports whether the rating went through resolution (or was skipped).
func (r Review) Finalized() bool { return r.FinalRating != nil }

type NewReview struct {
	UserID    string
	PlaceID   string
	PlaceName string
	Rating    float64
	Notes     *string
	Photos    []string
}

// Verdict is the user's judgment of the new experience against the chosen candidate.
type Verdict string

const (
	VerdictBetter Verdict = "BETTER"
	VerdictWorse  Verdict = "WORSE"
	VerdictSame   Verdict = "SAME"
)

type ComparisonCandidate struct {
	ReviewID  string  `json:"reviewId"`
	PlaceName string  `json:"placeName"`
	Rating    float64 `json:"rating"`
}

// ComparisonResult is returned by the candidate lookup. When NeedsComparison is
// false the review was finalized at its raw rating and Candidates is empty.
type ComparisonResult struct {
	ReviewID        string                `json:"reviewId"`
	NeedsComparison bool                  `json:"needsComparison"`
	Candidates      []ComparisonCandidate `json:"candidates,omitempty"`
}
