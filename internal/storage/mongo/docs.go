package mongostore

import (
	"time"

	"spotrank/internal/domain"
)

type reviewDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	PlaceID     string    `bson:"placeId"`
	PlaceName   string    `bson:"placeName"`
	Rating      float64   `bson:"rating"`
	Notes       *string   `bson:"notes,omitempty"`
	Photos      []string  `bson:"photos,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	FinalRating *float64  `bson:"finalRating"`
}

type userDoc struct {
	ID       string   `bson:"_id"`
	Username string   `bson:"username"`
	Friends  []string `bson:"friends"`
	Reviews  []string `bson:"reviews"`
}

type placeGroupDoc struct {
	PlaceID     string    `bson:"_id"`
	PlaceName   string    `bson:"placeName"`
	AvgRating   float64   `bson:"averageRating"`
	ReviewCount int       `bson:"reviewCount"`
	FirstReview reviewDoc `bson:"firstReview"`
}

func toReviewDoc(r domain.Review) reviewDoc {
	return reviewDoc{
		ID:          r.ID,
		UserID:      r.UserID,
		PlaceID:     r.PlaceID,
		PlaceName:   r.PlaceName,
		Rating:      r.Rating,
		Notes:       r.Notes,
		Photos:      r.Photos,
		CreatedAt:   r.CreatedAt.UTC(),
		FinalRating: r.FinalRating,
	}
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		ID:          d.ID,
		UserID:      d.UserID,
		PlaceID:     d.PlaceID,
		PlaceName:   d.PlaceName,
		Rating:      d.Rating,
		Notes:       d.Notes,
		Photos:      d.Photos,
		CreatedAt:   d.CreatedAt,
		FinalRating: d.FinalRating,
	}
}

func (d userDoc) toDomain() domain.User {
	return domain.User{ID: d.ID, Username: d.Username, FriendIDs: d.Friends, ReviewIDs: d.Reviews}
}
