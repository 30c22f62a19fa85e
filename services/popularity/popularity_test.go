package popularity

import (
	"context"
	"errors"
	"testing"
	"time"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	ranking []models.ProductCount
	hit     bool
	getErr  error
	setErr  error
	sets    int
	ttl     time.Duration
}

func (f *fakeCache) Get(context.Context) ([]models.ProductCount, bool, error) {
	return f.ranking, f.hit, f.getErr
}

func (f *fakeCache) Set(_ context.Context, ranking []models.ProductCount, ttl time.Duration) error {
	f.sets++
	f.ttl = ttl
	if f.setErr != nil {
		return f.setErr
	}
	f.ranking, f.hit = ranking, true
	return nil
}

type brokenStore struct {
	*sellerRepo.MemorySellerRepo
}

func (brokenStore) Scan(context.Context) ([]models.Seller, error) {
	return nil, errors.New("connection refused")
}

func items(names ...string) []models.ProduceItem {
	out := make([]models.ProduceItem, len(names))
	for i, n := range names {
		out[i] = models.ProduceItem{Name: n, Quantity: "1", Unit: "lb", Price: "1"}
	}
	return out
}

func seededRepo() *sellerRepo.MemorySellerRepo {
	repo := sellerRepo.NewMemorySellerRepo()
	repo.Put(models.Seller{ID: "a", Listings: []models.StoredListing{
		{ProduceItems: items("Tomatoes", "Kale")},
		{ProduceItems: items(" tomatoes ", "Garlic")},
	}})
	repo.Put(models.Seller{ID: "b", Listings: []models.StoredListing{
		{ProduceItems: items("TOMATOES", "kale", "Apples")},
		{Malformed: errors.New("bad record"), ProduceItems: items("Garlic", "Garlic")},
	}})
	return repo
}

func TestCount(t *testing.T) {
	sellers, err := seededRepo().Scan(context.Background())
	require.NoError(t, err)

	got := Count(sellers)

	assert.Equal(t, []models.ProductCount{
		{Name: "Tomatoes", Count: 3},
		{Name: "Kale", Count: 2},
		{Name: "Apples", Count: 1},
		{Name: "Garlic", Count: 1},
	}, got)
}

func TestCount_EmptyStore(t *testing.T) {
	got := Count(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTop_MissComputesAndFillsCache(t *testing.T) {
	cache := &fakeCache{}
	svc := &DefaultPopularityService{Repo: seededRepo(), Cache: cache, TTL: time.Minute}

	got, err := svc.Top(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []models.ProductCount{{Name: "Tomatoes", Count: 3}, {Name: "Kale", Count: 2}}, got)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Minute, cache.ttl)
	assert.Len(t, cache.ranking, 4, "the full ranking is cached")
}

func TestTop_HitSkipsStore(t *testing.T) {
	cache := &fakeCache{hit: true, ranking: []models.ProductCount{{Name: "Figs", Count: 9}}}
	svc := &DefaultPopularityService{Repo: brokenStore{sellerRepo.NewMemorySellerRepo()}, Cache: cache}

	got, err := svc.Top(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []models.ProductCount{{Name: "Figs", Count: 9}}, got)
	assert.Zero(t, cache.sets)
}

func TestTop_CacheFailuresFallBackToStore(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	svc := &DefaultPopularityService{Repo: seededRepo(), Cache: cache}

	got, err := svc.Top(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestTop_WithoutCache(t *testing.T) {
	svc := &DefaultPopularityService{Repo: seededRepo()}

	got, err := svc.Top(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []models.ProductCount{{Name: "Tomatoes", Count: 3}}, got)
}

func TestTop_Errors(t *testing.T) {
	svc := &DefaultPopularityService{Repo: brokenStore{sellerRepo.NewMemorySellerRepo()}, Cache: &fakeCache{}}

	_, err := svc.Top(context.Background(), 0)
	assert.Equal(t, apperrors.CodeInvalidLimit, apperrors.CodeOf(err))

	_, err = svc.Top(context.Background(), 5)
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))
}

func TestRefresh_OverwritesStaleCache(t *testing.T) {
	cache := &fakeCache{hit: true, ranking: []models.ProductCount{{Name: "Stale", Count: 100}}}
	svc := &DefaultPopularityService{Repo: seededRepo(), Cache: cache}

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	got, err := svc.Top(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Tomatoes", got[0].Name)
}
