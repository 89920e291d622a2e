package domain

import "context"

type ReviewStore interface {
	// Write paths
	InsertReview(ctx context.Context, r Review) error
	SetFinalRating(ctx context.Context, id string, rating float64) error
	DeleteReview(ctx context.Context, id string) error

	// Read paths
	GetReview(ctx context.Context, id string) (Review, error)
	// ListUserReviews returns the user's reviews except excludeID, ascending by rating.
	ListUserReviews(ctx context.Context, userID, excludeID string) ([]Review, error)
	// AggregateByPlace groups reviews by place. A nil userIDs means every user.
	AggregateByPlace(ctx context.Context, userIDs []string) ([]PlaceAggregate, error)
	DistinctPlaceIDs(ctx context.Context) ([]string, error)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (User, error)
	FriendIDs(ctx context.Context, id string) ([]string, error)
	AddReviewRef(ctx context.Context, userID, reviewID string) error
	RemoveReviewRef(ctx context.Context, userID, reviewID string) error
}

type PlaceRepository interface {
	UpsertPlace(ctx context.Context, p Place) error
	LogMiss(ctx context.Context, placeID string, status int, reason string) error
	GetPlaces(ctx context.Context, ids []string) (map[string]Place, error)
}

type PlacesClient interface {
	GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}
