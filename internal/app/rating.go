package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"spotrank/internal/adapters/observability"
	"spotrank/internal/domain"
)

// topSpotsPattern matches every cached top-spots aggregate.
const topSpotsPattern = "topspots:*"

// RatingService resolves a new review's rating by comparing it with the
// user's own history.
type RatingService struct {
	reviews domain.ReviewStore
	cache   domain.Cache
}

func NewRatingService(r domain.ReviewStore, c domain.Cache) *RatingService {
	return &RatingService{reviews: r, cache: c}
}

// ComparisonCandidates returns the two reviews the user should compare the new
// review against. Users with fewer than two other reviews skip comparison and
// the review is finalized at its raw rating.
func (s *RatingService) ComparisonCandidates(ctx context.Context, userID, reviewID string) (domain.ComparisonResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(reviewID) == "" {
		return domain.ComparisonResult{}, fmt.Errorf("%w: user id and review id are required", domain.ErrInvalidArgument)
	}
	rv, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	if rv.UserID != userID {
		return domain.ComparisonResult{}, fmt.Errorf("review %s for user %s: %w", reviewID, userID, domain.ErrNotFound)
	}

	others, err := s.reviews.ListUserReviews(ctx, userID, reviewID)
	if err != nil {
		return domain.ComparisonResult{}, err
	}

	if len(others) < 2 {
		if err := s.reviews.SetFinalRating(ctx, reviewID, rv.Rating); err != nil {
			return domain.ComparisonResult{}, err
		}
		observability.ObserveComparison("skipped")
		return domain.ComparisonResult{ReviewID: reviewID}, nil
	}

	lo, hi, m := selectCandidates(others, rv.Rating)
	observability.ObserveComparison(m.String())
	return domain.ComparisonResult{
		ReviewID:        reviewID,
		NeedsComparison: true,
		Candidates:      []domain.ComparisonCandidate{toCandidate(lo), toCandidate(hi)},
	}, nil
}

// FinalizeComparativeRating persists the rating derived from the chosen
// candidate and the user's verdict, then drops cached aggregates.
func (s *RatingService) FinalizeComparativeRating(ctx context.Context, reviewID string, chosenRating float64, verdict string) (float64, error) {
	v, err := ParseVerdict(verdict)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(reviewID) == "" {
		return 0, fmt.Errorf("%w: review id is required", domain.ErrInvalidArgument)
	}
	final, _ := adjustRating(chosenRating, v)

	if err := s.reviews.SetFinalRating(ctx, reviewID, final); err != nil {
		return 0, err
	}
	observability.ObserveFinalization(string(v))

	invalidateTopSpots(ctx, s.cache)
	return final, nil
}

func ParseVerdict(v string) (domain.Verdict, error) {
	switch domain.Verdict(v) {
	case domain.VerdictBetter:
		return domain.VerdictBetter, nil
	case domain.VerdictWorse:
		return domain.VerdictWorse, nil
	case domain.VerdictSame:
		return domain.VerdictSame, nil
	}
	return "", fmt.Errorf("%w: comparison must be BETTER, WORSE or SAME, got %q", domain.ErrInvalidArgument, v)
}

func toCandidate(r domain.Review) domain.ComparisonCandidate {
	return domain.ComparisonCandidate{ReviewID: r.ID, PlaceName: r.PlaceName, Rating: r.Rating}
}

// invalidateTopSpots never fails the caller; a stale aggregate expires with its TTL.
func invalidateTopSpots(ctx context.Context, c domain.Cache) {
	if c == nil {
		return
	}
	if err := c.DeletePattern(ctx, topSpotsPattern); err != nil {
		log.Warn().Err(err).Str("pattern", topSpotsPattern).Msg("top spots cache invalidation failed")
	}
}
