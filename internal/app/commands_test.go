package app_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"spotrank/internal/adapters/places"
	"spotrank/internal/app"
	"spotrank/internal/domain"
)

type fakeClient struct {
	payload map[string]any
	err     error
}

func (f fakeClient) GetPlaceDetails(ctx context.Context, placeID string) (map[string]any, error) {
	return f.payload, f.err
}

func lisbonPayload() map[string]any {
	return map[string]any{
		"result": map[string]any{
			"place_id":          "ChIJlisbon",
			"name":              "Tasca do Chico",
			"formatted_address": "R. do Diário de Notícias 39, Lisboa",
			"address_components": []any{
				map[string]any{"long_name": "Lisboa", "types": []any{"locality", "political"}},
				map[string]any{"long_name": "Portugal", "types": []any{"country", "political"}},
			},
			"types": []any{"bar", "restaurant"},
		},
	}
}

func TestIngestPlace_Upserts(t *testing.T) {
	repo := &fakePlaces{}
	cache := &fakeCache{}
	svc := app.NewPlaceIngestionService(fakeClient{payload: lisbonPayload()}, repo, cache)

	if err := svc.IngestPlace(context.Background(), "ChIJlisbon"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	p, ok := repo.places["ChIJlisbon"]
	if !ok {
		t.Fatalf("place not stored: %v", repo.places)
	}
	if deref(p.City) != "Lisboa" || deref(p.Country) != "Portugal" || deref(p.Name) != "Tasca do Chico" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if len(cache.patterns) != 1 {
		t.Fatalf("expected invalidation after ingest, got %v", cache.patterns)
	}
}

func TestIngestPlace_Misses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"not found", fmt.Errorf("details: %w", places.ErrNotFound), 404, "not found"},
		{"unauthorized", places.ErrUnauthorized, 403, "inactive"},
		{"forbidden", fmt.Errorf("wrap: %w", places.ErrForbidden), 403, "inactive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakePlaces{}
			svc := app.NewPlaceIngestionService(fakeClient{err: tc.err}, repo, nil)
			if err := svc.IngestPlace(context.Background(), "gone"); err != nil {
				t.Fatalf("misses are not errors: %v", err)
			}
			if len(repo.misses) != 1 || repo.misses[0] != (miss{"gone", tc.status, tc.reason}) {
				t.Fatalf("unexpected misses: %+v", repo.misses)
			}
			if len(repo.places) != 0 {
				t.Fatalf("nothing should be stored")
			}
		})
	}
}

func TestIngestPlace_Errors(t *testing.T) {
	svc := app.NewPlaceIngestionService(fakeClient{err: errBoom}, &fakePlaces{}, nil)
	if err := svc.IngestPlace(context.Background(), "p1"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if err := svc.IngestPlace(context.Background(), " "); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

// Transport errors carry the request URL, which may contain anything.
func TestIngestPlace_TransportErrorIsNotAMiss(t *testing.T) {
	for _, id := range []string{"ChIJ403x", "ChIJ401y", "not found"} {
		t.Run(id, func(t *testing.T) {
			repo := &fakePlaces{}
			transport := &url.Error{
				Op:  "Get",
				URL: "https://places.example/details/json?place_id=" + id,
				Err: errBoom,
			}
			svc := app.NewPlaceIngestionService(fakeClient{err: transport}, repo, nil)
			if err := svc.IngestPlace(context.Background(), id); !errors.Is(err, domain.ErrUpstreamUnavailable) {
				t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
			}
			if len(repo.misses) != 0 {
				t.Fatalf("transport failure recorded as miss: %+v", repo.misses)
			}
		})
	}
}
