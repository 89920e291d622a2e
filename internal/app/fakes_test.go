package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"

	"spotrank/internal/domain"
)

// ---- fakes ----

type fakeReviews struct {
	rows    []domain.Review // insertion order stands in for natural order
	aggErr  error
	aggArgs [][]string
}

func (f *fakeReviews) InsertReview(ctx context.Context, r domain.Review) error {
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeReviews) SetFinalRating(ctx context.Context, id string, rating float64) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			v := rating
			f.rows[i].Rating = rating
			f.rows[i].FinalRating = &v
			return nil
		}
	}
	return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
}

func (f *fakeReviews) DeleteReview(ctx context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
}

func (f *fakeReviews) GetReview(ctx context.Context, id string) (domain.Review, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Review{}, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
}

func (f *fakeReviews) ListUserReviews(ctx context.Context, userID, excludeID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.rows {
		if r.UserID == userID && r.ID != excludeID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out, nil
}

func (f *fakeReviews) AggregateByPlace(ctx context.Context, userIDs []string) ([]domain.PlaceAggregate, error) {
	f.aggArgs = append(f.aggArgs, userIDs)
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	in := func(u string) bool {
		if userIDs == nil {
			return true
		}
		for _, id := range userIDs {
			if id == u {
				return true
			}
		}
		return false
	}
	idx := map[string]int{}
	var groups []domain.PlaceAggregate
	sums := map[string]float64{}
	for _, r := range f.rows {
		if !in(r.UserID) {
			continue
		}
		i, ok := idx[r.PlaceID]
		if !ok {
			i = len(groups)
			idx[r.PlaceID] = i
			groups = append(groups, domain.PlaceAggregate{PlaceID: r.PlaceID, PlaceName: r.PlaceName, FirstReview: r})
		}
		groups[i].ReviewCount++
		sums[r.PlaceID] += r.Rating
	}
	for i := range groups {
		groups[i].AvgRating = sums[groups[i].PlaceID] / float64(groups[i].ReviewCount)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].PlaceID < groups[j].PlaceID })
	return groups, nil
}

func (f *fakeReviews) DistinctPlaceIDs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range f.rows {
		if !seen[r.PlaceID] {
			seen[r.PlaceID] = true
			out = append(out, r.PlaceID)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users     map[string]*domain.User
	friendErr error
	refErr    error // fails AddReviewRef and RemoveReviewRef
}

func newFakeUsers(ids ...string) *fakeUsers {
	f := &fakeUsers{users: map[string]*domain.User{}}
	for _, id := range ids {
		f.users[id] = &domain.User{ID: id, Username: id}
	}
	return f
}

func (f *fakeUsers) befriend(a, b string) {
	f.users[a].FriendIDs = append(f.users[a].FriendIDs, b)
	f.users[b].FriendIDs = append(f.users[b].FriendIDs, a)
}

func (f *fakeUsers) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return *u, nil
}

func (f *fakeUsers) FriendIDs(ctx context.Context, id string) ([]string, error) {
	if f.friendErr != nil {
		return nil, f.friendErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return u.FriendIDs, nil
}

func (f *fakeUsers) AddReviewRef(ctx context.Context, userID, reviewID string) error {
	if f.refErr != nil {
		return f.refErr
	}
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	for _, id := range u.ReviewIDs {
		if id == reviewID {
			return nil
		}
	}
	u.ReviewIDs = append(u.ReviewIDs, reviewID)
	return nil
}

func (f *fakeUsers) RemoveReviewRef(ctx context.Context, userID, reviewID string) error {
	if f.refErr != nil {
		return f.refErr
	}
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	out := u.ReviewIDs[:0]
	for _, id := range u.ReviewIDs {
		if id != reviewID {
			out = append(out, id)
		}
	}
	u.ReviewIDs = out
	return nil
}

type miss struct {
	id     string
	status int
	reason string
}

type fakePlaces struct {
	places map[string]domain.Place
	getErr error
	misses []miss
}

func (f *fakePlaces) UpsertPlace(ctx context.Context, p domain.Place) error {
	if f.places == nil {
		f.places = map[string]domain.Place{}
	}
	f.places[p.ID] = p
	return nil
}

func (f *fakePlaces) LogMiss(ctx context.Context, placeID string, status int, reason string) error {
	f.misses = append(f.misses, miss{placeID, status, reason})
	return nil
}

func (f *fakePlaces) GetPlaces(ctx context.Context, ids []string) (map[string]domain.Place, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := map[string]domain.Place{}
	for _, id := range ids {
		if p, ok := f.places[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	store      map[string][]byte
	patterns   []string
	patternErr error
	dels       []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	if c.patternErr != nil {
		return c.patternErr
	}
	for k := range c.store {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.store, k)
		}
	}
	return nil
}

var errBoom = errors.New("boom")

// ---- helpers ----

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func rv(id, user, place string, rating float64) domain.Review {
	return domain.Review{ID: id, UserID: user, PlaceID: place, PlaceName: "name-" + place, Rating: rating}
}
