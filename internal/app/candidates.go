package app

import (
	"math"
	"sort"

	"spotrank/internal/domain"
)

type candidateMatch int

const (
	matchNone candidateMatch = iota
	matchBracket
	matchNearest
)

func (m candidateMatch) String() string {
	switch m {
	case matchBracket:
		return "bracket"
	case matchNearest:
		return "nearest"
	default:
		return "none"
	}
}

// selectCandidates picks the two reviews to compare a new rating against.
// sorted must be ascending by rating. The tightest adjacent pair enclosing
// target wins, first occurrence on ties; otherwise the two nearest by
// absolute distance. A single review is returned twice.
func selectCandidates(sorted []domain.Review, target float64) (lo, hi domain.Review, m candidateMatch) {
	if len(sorted) == 0 {
		return domain.Review{}, domain.Review{}, matchNone
	}

	best := -1
	bestSpan := math.Inf(1)
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i].Rating, sorted[i+1].Rating
		if a > target || target > b {
			continue
		}
		if span := math.Abs(target-a) + math.Abs(target-b); span < bestSpan {
			best, bestSpan = i, span
		}
	}
	if best >= 0 {
		return sorted[best], sorted[best+1], matchBracket
	}

	near := make([]domain.Review, len(sorted))
	copy(near, sorted)
	sort.SliceStable(near, func(i, j int) bool {
		return math.Abs(near[i].Rating-target) < math.Abs(near[j].Rating-target)
	})
	if len(near) == 1 {
		return near[0], near[0], matchNearest
	}
	return near[0], near[1], matchNearest
}

// adjustRating applies a verdict to the chosen candidate's rating. The result
// always lies in [1,5].
func adjustRating(chosen float64, v domain.Verdict) (float64, bool) {
	switch v {
	case domain.VerdictSame:
		return clampRating(chosen), true
	case domain.VerdictBetter:
		return clampRating(chosen + ratingStep), true
	case domain.VerdictWorse:
		return clampRating(chosen - ratingStep), true
	default:
		return 0, false
	}
}
