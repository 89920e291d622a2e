package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spotrank/internal/domain"
)

type UserStore struct{ c *mongo.Collection }

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{c: db.Collection(usersCollection)}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (domain.User, error) {
	var d userDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return domain.User{}, err
	}
	return d.toDomain(), nil
}

// FriendIDs returns direct friends only.
func (s *UserStore) FriendIDs(ctx context.Context, id string) ([]string, error) {
	var d userDoc
	opts := options.FindOne().SetProjection(bson.M{"friends": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: friends of %s: %v", domain.ErrUpstreamUnavailable, id, err)
	}
	return d.Friends, nil
}

func (s *UserStore) AddReviewRef(ctx context.Context, userID, reviewID string) error {
	return s.updateRefs(ctx, userID, bson.M{"$addToSet": bson.M{"reviews": reviewID}})
}

func (s *UserStore) RemoveReviewRef(ctx context.Context, userID, reviewID string) error {
	return s.updateRefs(ctx, userID, bson.M{"$pull": bson.M{"reviews": reviewID}})
}

func (s *UserStore) updateRefs(ctx context.Context, userID string, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return nil
}

// CreateUser and AddFriend back the seed tooling and integration tests; user
// and friend management otherwise lives outside this service.
func (s *UserStore) CreateUser(ctx context.Context, u domain.User) error {
	if u.FriendIDs == nil {
		u.FriendIDs = []string{}
	}
	if u.ReviewIDs == nil {
		u.ReviewIDs = []string{}
	}
	_, err := s.c.InsertOne(ctx, userDoc{ID: u.ID, Username: u.Username, Friends: u.FriendIDs, Reviews: u.ReviewIDs})
	return err
}

// AddFriend links two users in both directions.
func (s *UserStore) AddFriend(ctx context.Context, a, b string) error {
	if err := s.updateRefs(ctx, a, bson.M{"$addToSet": bson.M{"friends": b}}); err != nil {
		return err
	}
	return s.updateRefs(ctx, b, bson.M{"$addToSet": bson.M{"friends": a}})
}
