//go:build integration || !unit

package mongostore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.mongodb.org/mongo-driver/mongo"

	"spotrank/internal/domain"
	mongostore "spotrank/internal/storage/mongo"
)

func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Skipf("run mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s", resource.GetPort("27017/tcp"))
	var client *mongo.Client
	if err := pool.Retry(func() error {
		var e error
		client, e = mongostore.Connect(context.Background(), uri)
		return e
	}); err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("spotrank_test")
	if err := mongostore.EnsureIndexes(context.Background(), db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return db
}

func review(id, user, place, name string, rating float64) domain.Review {
	return domain.Review{
		ID: id, UserID: user, PlaceID: place, PlaceName: name,
		Rating: rating, CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMongoStores(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()
	reviews := mongostore.NewReviewStore(db)
	users := mongostore.NewUserStore(db)

	for _, u := range []string{"ana", "bo", "cy"} {
		if err := users.CreateUser(ctx, domain.User{ID: u, Username: u}); err != nil {
			t.Fatalf("CreateUser %s: %v", u, err)
		}
	}
	if err := users.AddFriend(ctx, "ana", "bo"); err != nil {
		t.Fatalf("AddFriend: %v", err)
	}

	seed := []domain.Review{
		review("r1", "ana", "placeA", "Alfama Tasca", 5),
		review("r2", "bo", "placeA", "Alfama Tasca (old name)", 3),
		review("r3", "ana", "placeB", "Belem Pastries", 4),
		review("r4", "cy", "placeC", "Chiado Bar", 2),
	}
	for _, r := range seed {
		if err := reviews.InsertReview(ctx, r); err != nil {
			t.Fatalf("InsertReview %s: %v", r.ID, err)
		}
		if err := users.AddReviewRef(ctx, r.UserID, r.ID); err != nil {
			t.Fatalf("AddReviewRef: %v", err)
		}
	}

	t.Run("list sorted by rating excluding target", func(t *testing.T) {
		got, err := reviews.ListUserReviews(ctx, "ana", "r1")
		if err != nil {
			t.Fatalf("ListUserReviews: %v", err)
		}
		if len(got) != 1 || got[0].ID != "r3" {
			t.Fatalf("unexpected reviews: %+v", got)
		}
	})

	t.Run("final rating mirrors into rating", func(t *testing.T) {
		if err := reviews.SetFinalRating(ctx, "r3", 4.5); err != nil {
			t.Fatalf("SetFinalRating: %v", err)
		}
		got, err := reviews.GetReview(ctx, "r3")
		if err != nil {
			t.Fatalf("GetReview: %v", err)
		}
		if got.Rating != 4.5 || got.FinalRating == nil || *got.FinalRating != 4.5 {
			t.Fatalf("unexpected review: %+v", got)
		}
		if err := reviews.SetFinalRating(ctx, "missing", 3); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("global aggregation", func(t *testing.T) {
		groups, err := reviews.AggregateByPlace(ctx, nil)
		if err != nil {
			t.Fatalf("AggregateByPlace: %v", err)
		}
		if len(groups) != 3 {
			t.Fatalf("expected 3 groups, got %d", len(groups))
		}
		a := groups[0]
		if a.PlaceID != "placeA" || a.ReviewCount != 2 || a.AvgRating != 4 {
			t.Fatalf("unexpected placeA group: %+v", a)
		}
		// display name and review come from the first document visited, r1
		if a.PlaceName != "Alfama Tasca" || a.FirstReview.ID != "r1" || a.FirstReview.UserID != "ana" {
			t.Fatalf("unexpected first-in-group fields: name=%q review=%+v", a.PlaceName, a.FirstReview)
		}
	})

	t.Run("scoped aggregation", func(t *testing.T) {
		friends, err := users.FriendIDs(ctx, "ana")
		if err != nil {
			t.Fatalf("FriendIDs: %v", err)
		}
		groups, err := reviews.AggregateByPlace(ctx, append([]string{"ana"}, friends...))
		if err != nil {
			t.Fatalf("AggregateByPlace: %v", err)
		}
		for _, g := range groups {
			if g.PlaceID == "placeC" {
				t.Fatalf("non-friend review leaked into scope: %+v", g)
			}
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
	})

	t.Run("distinct places", func(t *testing.T) {
		ids, err := reviews.DistinctPlaceIDs(ctx)
		if err != nil || len(ids) != 3 {
			t.Fatalf("DistinctPlaceIDs = %v, %v", ids, err)
		}
	})

	t.Run("delete and unlink", func(t *testing.T) {
		if err := reviews.DeleteReview(ctx, "r4"); err != nil {
			t.Fatalf("DeleteReview: %v", err)
		}
		if err := users.RemoveReviewRef(ctx, "cy", "r4"); err != nil {
			t.Fatalf("RemoveReviewRef: %v", err)
		}
		u, err := users.GetUser(ctx, "cy")
		if err != nil {
			t.Fatalf("GetUser: %v", err)
		}
		if len(u.ReviewIDs) != 0 {
			t.Fatalf("expected review ref removed, got %v", u.ReviewIDs)
		}
		if _, err := reviews.GetReview(ctx, "r4"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := users.GetUser(ctx, "nobody"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
