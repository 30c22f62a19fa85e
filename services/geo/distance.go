// Package geo holds the great-circle math used to rank listings by proximity.
package geo

import (
	"math"

	"harvestmap/models"
)

const (
	EarthRadiusKm = 6371.0
	MilesPerKm    = 0.621371
)

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b models.Coordinate) float64 {
	lat1 := a.Latitude * (math.Pi / 180)
	lat2 := b.Latitude * (math.Pi / 180)
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h just outside [0, 1] near antipodes.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// KmToMiles converts kilometres to statute miles.
func KmToMiles(km float64) float64 {
	return km * MilesPerKm
}

// Round2 rounds to two decimal places. Only used for display values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
