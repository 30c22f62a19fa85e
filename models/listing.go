package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Coordinate is a WGS84 point. It is stored flat as lat/lon on listing documents.
type Coordinate struct {
	Latitude  float64 `bson:"lat" json:"lat"`
	Longitude float64 `bson:"lon" json:"lon"`
}

var ErrCoordinateOutOfRange = errors.New("coordinate out of range")

// Validate checks that both components are finite and inside the WGS84 ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrCoordinateOutOfRange, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrCoordinateOutOfRange, c.Longitude)
	}
	return nil
}

type ProduceItem struct {
	Name     string `bson:"name" json:"name"`
	Quantity Amount `bson:"quantity" json:"quantity"`
	Unit     string `bson:"unit" json:"unit"`
	Price    Amount `bson:"price" json:"price"`
}

// ListingEvent is the write model: a fully resolved listing ready to be appended
// to a seller's history.
type ListingEvent struct {
	ID            string        `bson:"id" json:"id"`
	Location      string        `bson:"location" json:"location"`
	Coordinate    `bson:",inline"`
	ScheduledTime string        `bson:"time" json:"time"`
	ProduceItems  []ProduceItem `bson:"produce_items" json:"produce_items"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
}

// StoredListing is a listing as read back from the store. Records written by
// earlier versions may lack coordinates or creation time, so those are optional.
type StoredListing struct {
	ID            string        `bson:"id,omitempty" json:"id,omitempty"`
	Location      string        `bson:"location" json:"location"`
	Latitude      *float64      `bson:"lat,omitempty" json:"lat,omitempty"`
	Longitude     *float64      `bson:"lon,omitempty" json:"lon,omitempty"`
	ScheduledTime string        `bson:"time" json:"time"`
	ProduceItems  []ProduceItem `bson:"produce_items" json:"produce_items"`
	CreatedAt     *time.Time    `bson:"created_at,omitempty" json:"created_at,omitempty"`

	// Malformed is set by the store when the raw record could not be decoded.
	Malformed error `bson:"-" json:"-"`
}

var ErrMissingCoordinate = errors.New("listing has no coordinates")

// Coordinate returns the listing's resolved location.
func (l StoredListing) Coordinate() (Coordinate, error) {
	if l.Latitude == nil || l.Longitude == nil {
		return Coordinate{}, ErrMissingCoordinate
	}
	c := Coordinate{Latitude: *l.Latitude, Longitude: *l.Longitude}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Stored converts a freshly ingested listing into its read shape.
func (l ListingEvent) Stored() StoredListing {
	lat, lon, created := l.Latitude, l.Longitude, l.CreatedAt
	return StoredListing{
		ID:            l.ID,
		Location:      l.Location,
		Latitude:      &lat,
		Longitude:     &lon,
		ScheduledTime: l.ScheduledTime,
		ProduceItems:  append([]ProduceItem(nil), l.ProduceItems...),
		CreatedAt:     &created,
	}
}
