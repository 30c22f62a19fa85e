package sellerRepo

import (
	"context"
	"sync"
	"time"

	"harvestmap/models"
)

// MemorySellerRepo is an in-process SellerRepository. It backs STORE_BACKEND=memory
// for local runs and is the store used by service tests.
type MemorySellerRepo struct {
	mu      sync.RWMutex
	sellers map[string]*models.Seller
	order   []string
	now     func() time.Time
}

func NewMemorySellerRepo() *MemorySellerRepo {
	return &MemorySellerRepo{
		sellers: make(map[string]*models.Seller),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Put stores a seller document verbatim, replacing any existing one with the same id.
func (r *MemorySellerRepo) Put(seller models.Seller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sellers[seller.ID]; !ok {
		r.order = append(r.order, seller.ID)
	}
	s := cloneSeller(seller)
	r.sellers[seller.ID] = &s
}

func (r *MemorySellerRepo) GetByID(_ context.Context, id string) (*models.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sellers[id]
	if !ok {
		return nil, ErrSellerNotFound
	}
	out := cloneSeller(*s)
	return &out, nil
}

func (r *MemorySellerRepo) Upsert(_ context.Context, id, name string) (*models.Seller, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s, ok := r.sellers[id]
	if !ok {
		s = &models.Seller{ID: id, Listings: []models.StoredListing{}, CreatedAt: now}
		r.sellers[id] = s
		r.order = append(r.order, id)
	}
	s.Name = name
	s.UpdatedAt = now

	out := cloneSeller(*s)
	return &out, !ok, nil
}

func (r *MemorySellerRepo) AppendListing(_ context.Context, sellerID string, listing models.ListingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sellers[sellerID]
	if !ok {
		return ErrSellerNotFound
	}
	s.Listings = append(s.Listings, listing.Stored())
	s.UpdatedAt = r.now()
	return nil
}

func (r *MemorySellerRepo) Scan(_ context.Context) ([]models.Seller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Seller, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneSeller(*r.sellers[id]))
	}
	return out, nil
}

func cloneSeller(s models.Seller) models.Seller {
	listings := make([]models.StoredListing, len(s.Listings))
	for i, l := range s.Listings {
		l.ProduceItems = append([]models.ProduceItem(nil), l.ProduceItems...)
		listings[i] = l
	}
	s.Listings = listings
	return s
}
