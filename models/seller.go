package models

import "time"

// Seller is a registered principal and the append-only history of their listings.
// Listings are in submission order, not time-of-sale order.
type Seller struct {
	ID        string          `bson:"uid" json:"uid"`
	Name      string          `bson:"name" json:"name"`
	Listings  []StoredListing `bson:"listings" json:"listings"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

// MatchResult is one ranked answer to a produce query. It is never persisted.
type MatchResult struct {
	SellerID      string        `json:"uid"`
	SellerName    string        `json:"name"`
	Location      string        `json:"location"`
	ScheduledTime string        `json:"time"`
	MatchedItems  []ProduceItem `json:"produce_items"`
	DistanceKm    float64       `json:"-"`
	DistanceMiles float64       `json:"distance_miles"`
	Latitude      float64       `json:"lat"`
	Longitude     float64       `json:"lon"`
	CreatedAt     *time.Time    `json:"created_at,omitempty"`
}

// ProductCount is one row of the most-sold products ranking.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
