package domain

type Place struct {
	ID       string // external places-API identifier
	Name     *string
	City     *string
	Country  *string
	Address  *string
	Lat, Lon *float64
	Photos   []string
	Types    []string
	RawJSON  []byte // full places-API payload
}

type User struct {
	ID        string
	Username  string
	FriendIDs []string
	ReviewIDs []string
}

// PlaceAggregate is one $group row from the review store: all reviews of a
// place within the requested scope, in the store's group order.
type PlaceAggregate struct {
	PlaceID     string
	PlaceName   string // first-seen within the group
	AvgRating   float64
	ReviewCount int
	FirstReview Review // first document visited for the group, not the newest
}

type TopRatedSpot struct {
	PlaceID       string   `json:"placeId"`
	PlaceName     string   `json:"placeName"`
	AverageRating float64  `json:"averageRating"` // rounded to 2 decimals
	ReviewCount   int      `json:"reviewCount"`
	City          *string  `json:"city"`
	Country       *string  `json:"country"`
	Address       *string  `json:"address"`
	Photos        []string `json:"photos,omitempty"`
	Types         []string `json:"types,omitempty"`
	LatestReview  *Review  `json:"latestReview,omitempty"` // social scope only; first-in-group, see PlaceAggregate
}

type TopSpotsQuery struct {
	Limit   int
	Country *string
	City    *string
}
