// Package matching ranks stored listings by distance from a buyer's origin.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"
	"harvestmap/services/geo"
	"harvestmap/services/geocode"

	"go.uber.org/zap"
)

// OriginSpec is the buyer's reference point as supplied: either a ZIP code or
// a raw latitude/longitude pair in textual form. ZIP wins when both are given.
type OriginSpec struct {
	ZIP       string
	Latitude  string
	Longitude string
}

// MatchingService defines the query-time operations.
type MatchingService interface {
	ResolveOrigin(ctx context.Context, spec OriginSpec) (models.Coordinate, error)
	Query(ctx context.Context, origin models.Coordinate, itemFilter string, limit int) ([]models.MatchResult, error)
}

// DefaultMatchingService implements MatchingService with a full scan of the store.
type DefaultMatchingService struct {
	Repo     sellerRepo.SellerRepository
	Geocoder geocode.Resolver
	Logger   *zap.Logger
}

// ResolveOrigin turns an OriginSpec into a coordinate. Any failure is a
// missing_or_invalid_origin validation error.
func (s *DefaultMatchingService) ResolveOrigin(ctx context.Context, spec OriginSpec) (models.Coordinate, error) {
	if zip := strings.TrimSpace(spec.ZIP); zip != "" {
		coord, err := s.Geocoder.ResolveZIP(ctx, zip)
		if err != nil {
			s.logger().Warn("Failed to get coordinates for ZIP code", zap.String("zip", zip), zap.Error(err))
			return models.Coordinate{}, apperrors.Validation(apperrors.CodeMissingOrInvalidOrigin,
				"Invalid ZIP code or failed to get coordinates", err)
		}
		return coord, nil
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(spec.Latitude), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(spec.Longitude), 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		return models.Coordinate{}, apperrors.Validation(apperrors.CodeMissingOrInvalidOrigin,
			"Provide a valid ZIP code or lat/lon query parameters", err)
	}
	coord := models.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return models.Coordinate{}, apperrors.Validation(apperrors.CodeMissingOrInvalidOrigin,
			"Provide a valid ZIP code or lat/lon query parameters", err)
	}
	return coord, nil
}

// Query scans every listing, keeps those with at least one item whose name
// contains itemFilter (case-insensitive; empty matches everything), and returns
// them nearest first, at most limit entries. Listings that cannot be processed
// are logged and skipped. A store failure discards partial results.
func (s *DefaultMatchingService) Query(ctx context.Context, origin models.Coordinate, itemFilter string, limit int) ([]models.MatchResult, error) {
	logger := s.logger()

	if limit <= 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidLimit, "limit must be a positive integer", nil)
	}
	if err := origin.Validate(); err != nil {
		return nil, apperrors.Validation(apperrors.CodeMissingOrInvalidOrigin, "invalid origin", err)
	}

	sellers, err := s.Repo.Scan(ctx)
	if err != nil {
		logger.Error("Error accessing seller store", zap.Error(err))
		return nil, apperrors.Store("failed to scan listings", err)
	}

	filter := strings.ToLower(strings.TrimSpace(itemFilter))
	results := make([]models.MatchResult, 0)
	skipped := 0

	for _, seller := range sellers {
		for i, listing := range seller.Listings {
			result, ok, err := matchListing(origin, filter, seller, listing)
			if err != nil {
				skipped++
				logger.Warn("Skipping listing that could not be processed",
					zap.String("seller_id", seller.ID),
					zap.Int("listing_index", i),
					zap.Error(err))
				continue
			}
			if ok {
				results = append(results, result)
			}
		}
	}

	// Stable, so equal distances keep enumeration order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if len(results) > limit {
		results = results[:limit]
	}

	logger.Debug("Produce query complete",
		zap.String("filter", filter),
		zap.Int("returned", len(results)),
		zap.Int("skipped", skipped))
	return results, nil
}

// matchListing evaluates one stored listing. ok is false when nothing matched;
// err is set when the record itself is unusable.
func matchListing(origin models.Coordinate, filter string, seller models.Seller, listing models.StoredListing) (models.MatchResult, bool, error) {
	if listing.Malformed != nil {
		return models.MatchResult{}, false, listing.Malformed
	}

	matched := MatchItems(listing.ProduceItems, filter)
	if len(matched) == 0 {
		return models.MatchResult{}, false, nil
	}

	coord, err := listing.Coordinate()
	if err != nil {
		return models.MatchResult{}, false, err
	}

	km := geo.Haversine(origin, coord)
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return models.MatchResult{}, false, fmt.Errorf("non-finite distance to %+v", coord)
	}

	return models.MatchResult{
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		Location:      listing.Location,
		ScheduledTime: listing.ScheduledTime,
		MatchedItems:  matched,
		DistanceKm:    km,
		DistanceMiles: geo.Round2(geo.KmToMiles(km)),
		Latitude:      coord.Latitude,
		Longitude:     coord.Longitude,
		CreatedAt:     listing.CreatedAt,
	}, true, nil
}

// MatchItems returns, in original order, the items whose name contains the
// lower-cased filter. An empty filter keeps every item.
func MatchItems(items []models.ProduceItem, filter string) []models.ProduceItem {
	var matched []models.ProduceItem
	for _, item := range items {
		if filter == "" || strings.Contains(strings.ToLower(item.Name), filter) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (s *DefaultMatchingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
