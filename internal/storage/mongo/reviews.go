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

type ReviewStore struct{ c *mongo.Collection }

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{c: db.Collection(reviewsCollection)}
}

func (s *ReviewStore) InsertReview(ctx context.Context, r domain.Review) error {
	_, err := s.c.InsertOne(ctx, toReviewDoc(r))
	return err
}

// SetFinalRating writes the resolved rating to both finalRating and rating in
// one atomic document update.
func (s *ReviewStore) SetFinalRating(ctx context.Context, id string, rating float64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"finalRating": rating, "rating": rating}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *ReviewStore) DeleteReview(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *ReviewStore) GetReview(ctx context.Context, id string) (domain.Review, error) {
	var d reviewDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Review{}, fmt.Errorf("review %s: %w", id, domain.ErrNotFound)
		}
		return domain.Review{}, err
	}
	return d.toDomain(), nil
}

func (s *ReviewStore) ListUserReviews(ctx context.Context, userID, excludeID string) ([]domain.Review, error) {
	filter := bson.M{"userId": userID, "_id": bson.M{"$ne": excludeID}}
	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AggregateByPlace runs one $group pipeline per scope. Groups are emitted in
// place id order so ties after ranking stay deterministic.
func (s *ReviewStore) AggregateByPlace(ctx context.Context, userIDs []string) ([]domain.PlaceAggregate, error) {
	pipeline := mongo.Pipeline{}
	if userIDs != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"userId": bson.M{"$in": userIDs}}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$placeId"},
			{Key: "placeName", Value: bson.M{"$first": "$placeName"}},
			{Key: "averageRating", Value: bson.M{"$avg": "$rating"}},
			{Key: "reviewCount", Value: bson.M{"$sum": 1}},
			{Key: "firstReview", Value: bson.M{"$first": "$$ROOT"}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	)

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []placeGroupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.PlaceAggregate, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.PlaceAggregate{
			PlaceID:     d.PlaceID,
			PlaceName:   d.PlaceName,
			AvgRating:   d.AvgRating,
			ReviewCount: d.ReviewCount,
			FirstReview: d.FirstReview.toDomain(),
		})
	}
	return out, nil
}

func (s *ReviewStore) DistinctPlaceIDs(ctx context.Context) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "placeId", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok && id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}
