package sellerRepo

import (
	"context"
	"errors"

	"harvestmap/models"
)

var ErrSellerNotFound = errors.New("seller not found")

// SellerRepository defines methods for seller data access.
type SellerRepository interface {
	// GetByID retrieves a seller and their listing history. Returns ErrSellerNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	// Upsert creates the seller with an empty history, or renames an existing one.
	// Existing listings are never touched. The bool reports whether a record was created.
	Upsert(ctx context.Context, id, name string) (*models.Seller, bool, error)
	// AppendListing atomically appends one listing to the seller's history.
	AppendListing(ctx context.Context, sellerID string, listing models.ListingEvent) error
	// Scan returns every seller. Individual listings that could not be decoded
	// are returned with Malformed set rather than failing the scan.
	Scan(ctx context.Context) ([]models.Seller, error)
}
