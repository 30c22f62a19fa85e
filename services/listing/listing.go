// Package listing validates, geocodes, and persists new produce listings.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"
	"harvestmap/services/geocode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitRequest is a seller's listing submission as received from the client.
type SubmitRequest struct {
	Location      string               `json:"location"`
	ScheduledTime string               `json:"time"`
	ProduceItems  []models.ProduceItem `json:"produce_items"`
}

type ListingService interface {
	Submit(ctx context.Context, sellerID string, req SubmitRequest) (*models.ListingEvent, error)
}

// DefaultListingService is the production implementation.
type DefaultListingService struct {
	Repo     sellerRepo.SellerRepository
	Geocoder geocode.Resolver
	Logger   *zap.Logger

	// Now and NewID default to the wall clock and uuid v4.
	Now   func() time.Time
	NewID func() string
}

// Submit validates the request, resolves its address, and appends the listing
// to the seller's history. Validation and geocoding happen before any write;
// the append is the last step, so a failed submission leaves the store untouched.
func (s *DefaultListingService) Submit(ctx context.Context, sellerID string, req SubmitRequest) (*models.ListingEvent, error) {
	logger := s.logger()

	if err := validate(sellerID, req); err != nil {
		return nil, err
	}

	location := strings.TrimSpace(req.Location)
	coord, err := s.Geocoder.ResolveAddress(ctx, location)
	if err != nil {
		logger.Warn("Listing location could not be resolved",
			zap.String("seller_id", sellerID), zap.String("location", location), zap.Error(err))
		return nil, apperrors.Validation(apperrors.CodeUnresolvableLocation, "Invalid location address", err)
	}

	listing := models.ListingEvent{
		ID:            s.newID(),
		Location:      location,
		Coordinate:    coord,
		ScheduledTime: strings.TrimSpace(req.ScheduledTime),
		ProduceItems:  normalizeItems(req.ProduceItems),
		CreatedAt:     s.now(),
	}

	if err := s.Repo.AppendListing(ctx, sellerID, listing); err != nil {
		if errors.Is(err, sellerRepo.ErrSellerNotFound) {
			return nil, apperrors.NotFound("Seller not registered", err)
		}
		logger.Error("Failed to persist listing", zap.String("seller_id", sellerID), zap.Error(err))
		return nil, apperrors.Store("failed to persist listing", err)
	}

	logger.Info("Listing added",
		zap.String("seller_id", sellerID),
		zap.String("listing_id", listing.ID),
		zap.Int("items", len(listing.ProduceItems)))
	return &listing, nil
}

func validate(sellerID string, req SubmitRequest) error {
	if strings.TrimSpace(sellerID) == "" ||
		strings.TrimSpace(req.Location) == "" ||
		strings.TrimSpace(req.ScheduledTime) == "" ||
		len(req.ProduceItems) == 0 {
		return apperrors.Validation(apperrors.CodeMissingField, "Location, time, and produce_items required", nil)
	}

	for i, item := range req.ProduceItems {
		if missing := missingAttributes(item); len(missing) > 0 {
			return apperrors.Validation(apperrors.CodeIncompleteItem,
				fmt.Sprintf("Produce item %d is missing %s", i+1, strings.Join(missing, ", ")), nil)
		}
	}
	return nil
}

// missingAttributes lists the required attributes an item lacks.
// Items carry name, quantity, unit and price; the older name+price shape is rejected.
func missingAttributes(item models.ProduceItem) []string {
	var missing []string
	if strings.TrimSpace(item.Name) == "" {
		missing = append(missing, "name")
	}
	if _, ok := item.Quantity.Float(); !ok {
		missing = append(missing, "quantity")
	}
	if strings.TrimSpace(item.Unit) == "" {
		missing = append(missing, "unit")
	}
	if item.Price.IsZero() {
		missing = append(missing, "price")
	}
	return missing
}

func normalizeItems(items []models.ProduceItem) []models.ProduceItem {
	out := make([]models.ProduceItem, len(items))
	for i, item := range items {
		out[i] = models.ProduceItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: models.Amount(strings.TrimSpace(string(item.Quantity))),
			Unit:     strings.TrimSpace(item.Unit),
			Price:    models.Amount(strings.TrimSpace(string(item.Price))),
		}
	}
	return out
}

func (s *DefaultListingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultListingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *DefaultListingService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
