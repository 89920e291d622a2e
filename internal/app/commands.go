package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spotrank/internal/adapters/places"
	"spotrank/internal/domain"
)

// PlaceIngestionService copies place details from the places API into the
// place metadata store.
type PlaceIngestionService struct {
	client domain.PlacesClient
	repo   domain.PlaceRepository
	cache  domain.Cache
}

func NewPlaceIngestionService(c domain.PlacesClient, r domain.PlaceRepository, cache domain.Cache) *PlaceIngestionService {
	return &PlaceIngestionService{client: c, repo: r, cache: cache}
}

func (s *PlaceIngestionService) IngestPlace(ctx context.Context, placeID string) error {
	if strings.TrimSpace(placeID) == "" {
		return fmt.Errorf("%w: place id is required", domain.ErrInvalidArgument)
	}

	p, err := s.client.GetPlaceDetails(ctx, placeID)
	if err != nil {
		switch {
		// 404: place removed upstream -> record miss and stop gracefully.
		case errors.Is(err, places.ErrNotFound):
			_ = s.repo.LogMiss(ctx, placeID, 404, "not found")
			return nil
		// 401/403: key rejected or place restricted.
		case errors.Is(err, places.ErrUnauthorized), errors.Is(err, places.ErrForbidden):
			_ = s.repo.LogMiss(ctx, placeID, 403, "inactive")
			return nil
		}

		return fmt.Errorf("%w: place %s: %v", domain.ErrUpstreamUnavailable, placeID, err)
	}

	if err := s.repo.UpsertPlace(ctx, mapPlace(placeID, p)); err != nil {
		return fmt.Errorf("upsert place %s: %w", placeID, err)
	}

	// City/country feed the top-spots filters.
	invalidateTopSpots(ctx, s.cache)
	return nil
}
