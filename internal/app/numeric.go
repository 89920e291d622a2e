package app

import "math"

const (
	minRating  = 1.0
	maxRating  = 5.0
	ratingStep = 0.5
)

func clampRating(r float64) float64 {
	return math.Max(minRating, math.Min(maxRating, r))
}

// round2 rounds half away from zero to two decimals.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func validRating(r float64) bool {
	return !math.IsNaN(r) && r >= minRating && r <= maxRating
}
