package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"spotrank/internal/domain"
)

type ReviewService struct {
	reviews domain.ReviewStore
	users   domain.UserStore
	cache   domain.Cache
	now     func() time.Time
}

func NewReviewService(r domain.ReviewStore, u domain.UserStore, c domain.Cache) *ReviewService {
	return &ReviewService{reviews: r, users: u, cache: c, now: time.Now}
}

// CreateReview stores a review with an unresolved final rating. Callers follow
// up with RatingService.ComparisonCandidates.
func (s *ReviewService) CreateReview(ctx context.Context, in domain.NewReview) (domain.Review, error) {
	if !validRating(in.Rating) {
		return domain.Review{}, fmt.Errorf("%w: rating must be between 1 and 5, got %v", domain.ErrInvalidArgument, in.Rating)
	}
	if strings.TrimSpace(in.PlaceID) == "" || strings.TrimSpace(in.PlaceName) == "" {
		return domain.Review{}, fmt.Errorf("%w: place id and place name are required", domain.ErrInvalidArgument)
	}
	if _, err := s.users.GetUser(ctx, in.UserID); err != nil {
		return domain.Review{}, err
	}

	rv := domain.Review{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		PlaceID:   in.PlaceID,
		PlaceName: strings.TrimSpace(in.PlaceName),
		Rating:    in.Rating,
		Notes:     in.Notes,
		Photos:    in.Photos,
		CreatedAt: s.now().UTC(),
	}
	if err := s.reviews.InsertReview(ctx, rv); err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	// the review now counts in aggregates whatever happens to the user link
	defer invalidateTopSpots(ctx, s.cache)

	if err := s.users.AddReviewRef(ctx, rv.UserID, rv.ID); err != nil {
		return domain.Review{}, fmt.Errorf("link review %s to user %s: %w", rv.ID, rv.UserID, err)
	}
	log.Info().Str("review_id", rv.ID).Str("user_id", rv.UserID).Str("place_id", rv.PlaceID).Msg("review created")
	return rv, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (domain.Review, error) {
	return s.reviews.GetReview(ctx, id)
}

// DeleteReview removes a review owned by userID.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	rv, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if rv.UserID != userID {
		return fmt.Errorf("review %s for user %s: %w", reviewID, userID, domain.ErrNotFound)
	}
	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	defer invalidateTopSpots(ctx, s.cache)

	if err := s.users.RemoveReviewRef(ctx, userID, reviewID); err != nil {
		return fmt.Errorf("unlink review %s from user %s: %w", reviewID, userID, err)
	}
	return nil
}
