package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"spotrank/internal/domain"
)

const DefaultTopSpotsLimit = 50

// TopSpotsService ranks places by average rating, globally or across a user
// and their direct friends.
type TopSpotsService struct {
	reviews  domain.ReviewStore
	users    domain.UserStore
	places   domain.PlaceRepository
	cache    domain.Cache
	cacheTTL time.Duration
	defLimit int
}

func NewTopSpotsService(r domain.ReviewStore, u domain.UserStore, p domain.PlaceRepository, c domain.Cache, ttl time.Duration) *TopSpotsService {
	return &TopSpotsService{reviews: r, users: u, places: p, cache: c, cacheTTL: ttl, defLimit: DefaultTopSpotsLimit}
}

// WithDefaultLimit overrides the limit used when a query omits one.
func (s *TopSpotsService) WithDefaultLimit(n int) *TopSpotsService {
	if n > 0 {
		s.defLimit = n
	}
	return s
}

func (s *TopSpotsService) GlobalTopRatedSpots(ctx context.Context, q domain.TopSpotsQuery) ([]domain.TopRatedSpot, error) {
	q = normalizeQuery(q, s.defLimit)
	key := topSpotsKey("global", q)
	var out []domain.TopRatedSpot
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	groups, err := s.reviews.AggregateByPlace(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	out = s.rank(ctx, groups, q, false)
	s.cacheSet(ctx, key, out)
	return out, nil
}

func (s *TopSpotsService) UserAndFriendsTopRatedSpots(ctx context.Context, userID string, q domain.TopSpotsQuery) ([]domain.TopRatedSpot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidArgument)
	}
	q = normalizeQuery(q, s.defLimit)
	key := topSpotsKey("user:"+userID, q)
	var out []domain.TopRatedSpot
	if s.cacheGet(ctx, key, &out) {
		return out, nil
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	friends, err := s.users.FriendIDs(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: friends of %s: %v", domain.ErrUpstreamUnavailable, userID, err)
	}

	groups, err := s.reviews.AggregateByPlace(ctx, scopeSet(userID, friends))
	if err != nil {
		return nil, fmt.Errorf("aggregate reviews: %w", err)
	}
	out = s.rank(ctx, groups, q, true)
	s.cacheSet(ctx, key, out)
	return out, nil
}

// scopeSet is the user plus direct friends, one hop only.
func scopeSet(userID string, friends []string) []string {
	seen := map[string]struct{}{userID: {}}
	out := []string{userID}
	for _, f := range friends {
		if _, ok := seen[f]; ok || f == "" {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// rank sorts groups by rounded average then review count (both descending,
// group order otherwise), joins place metadata, filters and truncates.
func (s *TopSpotsService) rank(ctx context.Context, groups []domain.PlaceAggregate, q domain.TopSpotsQuery, withReview bool) []domain.TopRatedSpot {
	spots := make([]domain.TopRatedSpot, 0, len(groups))
	for _, g := range groups {
		sp := domain.TopRatedSpot{
			PlaceID:       g.PlaceID,
			PlaceName:     g.PlaceName,
			AverageRating: round2(g.AvgRating),
			ReviewCount:   g.ReviewCount,
		}
		if withReview {
			rv := g.FirstReview
			sp.LatestReview = &rv
		}
		spots = append(spots, sp)
	}
	sort.SliceStable(spots, func(i, j int) bool {
		if spots[i].AverageRating != spots[j].AverageRating {
			return spots[i].AverageRating > spots[j].AverageRating
		}
		return spots[i].ReviewCount > spots[j].ReviewCount
	})

	s.joinPlaces(ctx, spots)

	out := spots[:0]
	for _, sp := range spots {
		if !matchesFilter(sp.Country, q.Country) || !matchesFilter(sp.City, q.City) {
			continue
		}
		out = append(out, sp)
		if len(out) == q.Limit {
			break
		}
	}
	return out
}

// joinPlaces fills metadata in place. Lookup failures leave fields nil.
func (s *TopSpotsService) joinPlaces(ctx context.Context, spots []domain.TopRatedSpot) {
	if s.places == nil || len(spots) == 0 {
		return
	}
	ids := make([]string, 0, len(spots))
	for _, sp := range spots {
		ids = append(ids, sp.PlaceID)
	}
	meta, err := s.places.GetPlaces(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("places", len(ids)).Msg("place metadata lookup failed; returning spots without metadata")
		return
	}
	for i := range spots {
		p, ok := meta[spots[i].PlaceID]
		if !ok {
			continue
		}
		spots[i].City = p.City
		spots[i].Country = p.Country
		spots[i].Address = p.Address
		spots[i].Photos = p.Photos
		spots[i].Types = p.Types
	}
}

func matchesFilter(v, want *string) bool {
	if want == nil {
		return true
	}
	return v != nil && strings.EqualFold(*v, *want)
}

func normalizeQuery(q domain.TopSpotsQuery, def int) domain.TopSpotsQuery {
	if q.Limit <= 0 {
		q.Limit = def
	}
	if q.Country != nil && strings.TrimSpace(*q.Country) == "" {
		q.Country = nil
	}
	if q.City != nil && strings.TrimSpace(*q.City) == "" {
		q.City = nil
	}
	return q
}

func topSpotsKey(scope string, q domain.TopSpotsQuery) string {
	return fmt.Sprintf("topspots:%s:%d:%s:%s", scope, q.Limit,
		strings.ToLower(deref(q.Country)), strings.ToLower(deref(q.City)))
}

func (s *TopSpotsService) cacheGet(ctx context.Context, key string, dst *[]domain.TopRatedSpot) bool {
	if s.cache == nil {
		return false
	}
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		// unreadable entry; drop it so the recompute below replaces it
		if derr := s.cache.Del(ctx, key); derr != nil {
			log.Debug().Err(derr).Str("key", key).Msg("top spots cache delete skipped")
		}
		return false
	}
	return ok
}

func (s *TopSpotsService) cacheSet(ctx context.Context, key string, v []domain.TopRatedSpot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("top spots cache write skipped")
	}
}
