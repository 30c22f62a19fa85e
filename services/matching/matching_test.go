package matching

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"
	"harvestmap/services/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockResolver is a mock implementation of geocode.Resolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveAddress(ctx context.Context, address string) (models.Coordinate, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(models.Coordinate), args.Error(1)
}

func (m *MockResolver) ResolveZIP(ctx context.Context, zip string) (models.Coordinate, error) {
	args := m.Called(ctx, zip)
	return args.Get(0).(models.Coordinate), args.Error(1)
}

type brokenStore struct {
	*sellerRepo.MemorySellerRepo
}

func (brokenStore) Scan(context.Context) ([]models.Seller, error) {
	return nil, errors.New("server selection timeout")
}

var evanston = models.Coordinate{Latitude: 42.0565, Longitude: -87.6734}

// northOf returns the point the given number of miles due north of c.
func northOf(c models.Coordinate, miles float64) models.Coordinate {
	km := miles / geo.MilesPerKm
	return models.Coordinate{
		Latitude:  c.Latitude + km/(geo.EarthRadiusKm*math.Pi/180),
		Longitude: c.Longitude,
	}
}

func listingAt(location string, c models.Coordinate, names ...string) models.StoredListing {
	lat, lon := c.Latitude, c.Longitude
	created := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	items := make([]models.ProduceItem, len(names))
	for i, n := range names {
		items[i] = models.ProduceItem{Name: n, Quantity: "1", Unit: "lb", Price: "2.00"}
	}
	return models.StoredListing{
		ID:            location,
		Location:      location,
		Latitude:      &lat,
		Longitude:     &lon,
		ScheduledTime: "Saturday 9am",
		ProduceItems:  items,
		CreatedAt:     &created,
	}
}

// evanstonStore seeds listings at 4.7, 0.3 and 1.1 miles, in that enumeration order.
func evanstonStore() *sellerRepo.MemorySellerRepo {
	repo := sellerRepo.NewMemorySellerRepo()
	repo.Put(models.Seller{ID: "far", Name: "Garlic Guy", Listings: []models.StoredListing{
		listingAt("far", northOf(evanston, 4.7), "Garlic"),
	}})
	repo.Put(models.Seller{ID: "near", Name: "Anna", Listings: []models.StoredListing{
		listingAt("near", northOf(evanston, 0.3), "Tomatoes", "Basil"),
	}})
	repo.Put(models.Seller{ID: "mid", Name: "Ben", Listings: []models.StoredListing{
		listingAt("mid", northOf(evanston, 1.1), "Tomatoes"),
	}})
	return repo
}

func locations(results []models.MatchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Location
	}
	return out
}

func TestQuery_EvanstonTomatoScenario(t *testing.T) {
	svc := &DefaultMatchingService{Repo: evanstonStore()}

	results, err := svc.Query(context.Background(), evanston, "tomato", 5)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"near", "mid"}, locations(results))
	assert.Equal(t, 0.3, results[0].DistanceMiles)
	assert.Equal(t, 1.1, results[1].DistanceMiles)
	assert.Equal(t, "Anna", results[0].SellerName)
	assert.Len(t, results[0].MatchedItems, 1, "basil is not returned")
	assert.Equal(t, "Tomatoes", results[0].MatchedItems[0].Name)
}

func TestQuery_EmptyFilterMatchesEveryListing(t *testing.T) {
	svc := &DefaultMatchingService{Repo: evanstonStore()}

	results, err := svc.Query(context.Background(), evanston, "  ", 20)

	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far"}, locations(results))
	assert.Len(t, results[0].MatchedItems, 2)
}

func TestQuery_MatchedItemsAreExactSubsequence(t *testing.T) {
	repo := sellerRepo.NewMemorySellerRepo()
	repo.Put(models.Seller{ID: "s", Name: "S", Listings: []models.StoredListing{
		listingAt("stall", evanston, "Cherry Tomatoes", "Kale", "TOMATO paste", "Garlic", "tomatillo"),
	}})
	svc := &DefaultMatchingService{Repo: repo}

	results, err := svc.Query(context.Background(), evanston, "Tomat", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	var names []string
	for _, item := range results[0].MatchedItems {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Cherry Tomatoes", "TOMATO paste", "tomatillo"}, names)
	assert.Equal(t, 0.0, results[0].DistanceMiles)
}

func TestQuery_NoMatchesIsEmptyNotError(t *testing.T) {
	svc := &DefaultMatchingService{Repo: evanstonStore()}

	results, err := svc.Query(context.Background(), evanston, "durian", 5)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestQuery_SortedAndCapped(t *testing.T) {
	repo := sellerRepo.NewMemorySellerRepo()
	var listings []models.StoredListing
	for _, miles := range []float64{9, 3, 7, 1, 5, 2, 8} {
		listings = append(listings, listingAt("x", northOf(evanston, miles), "Apples"))
	}
	repo.Put(models.Seller{ID: "orchard", Name: "Orchard", Listings: listings})
	svc := &DefaultMatchingService{Repo: repo}

	results, err := svc.Query(context.Background(), evanston, "apple", 4)

	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].DistanceKm, results[i].DistanceKm)
	}
	assert.Equal(t, 1.0, results[0].DistanceMiles)
	assert.Equal(t, 5.0, results[3].DistanceMiles)
}

func TestQuery_TiesKeepEnumerationOrder(t *testing.T) {
	repo := sellerRepo.NewMemorySellerRepo()
	spot := northOf(evanston, 2)
	repo.Put(models.Seller{ID: "b", Name: "B", Listings: []models.StoredListing{listingAt("b1", spot, "Kale")}})
	repo.Put(models.Seller{ID: "a", Name: "A", Listings: []models.StoredListing{
		listingAt("a1", spot, "Kale"),
		listingAt("a2", spot, "Kale"),
	}})
	svc := &DefaultMatchingService{Repo: repo}

	results, err := svc.Query(context.Background(), evanston, "", 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "a1", "a2"}, locations(results))
}

func TestQuery_Idempotent(t *testing.T) {
	svc := &DefaultMatchingService{Repo: evanstonStore()}

	first, err := svc.Query(context.Background(), evanston, "", 10)
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), evanston, "", 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestQuery_SkipsUnprocessableListings(t *testing.T) {
	repo := evanstonStore()
	noCoords := listingAt("legacy", evanston, "Tomatoes")
	noCoords.Latitude = nil
	badLat := 123.0
	outOfRange := listingAt("broken", evanston, "Tomatoes")
	outOfRange.Latitude = &badLat
	repo.Put(models.Seller{ID: "legacy", Name: "Legacy", Listings: []models.StoredListing{
		noCoords,
		{Malformed: errors.New("undecodable")},
		outOfRange,
		listingAt("ok", northOf(evanston, 0.5), "tomatoes"),
	}})
	svc := &DefaultMatchingService{Repo: repo}

	results, err := svc.Query(context.Background(), evanston, "tomato", 10)

	require.NoError(t, err)
	assert.Equal(t, []string{"near", "ok", "mid"}, locations(results))
}

func TestQuery_StoreFailureDiscardsResults(t *testing.T) {
	svc := &DefaultMatchingService{Repo: brokenStore{sellerRepo.NewMemorySellerRepo()}}

	results, err := svc.Query(context.Background(), evanston, "", 5)

	require.Error(t, err)
	assert.Nil(t, results)
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))
}

func TestQuery_RejectsNonPositiveLimit(t *testing.T) {
	svc := &DefaultMatchingService{Repo: evanstonStore()}

	for _, limit := range []int{0, -3} {
		_, err := svc.Query(context.Background(), evanston, "", limit)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidLimit, apperrors.CodeOf(err))
	}
}

func TestResolveOrigin(t *testing.T) {
	zipErr := apperrors.Geocode("address not recognized", errors.New("ZERO_RESULTS"))

	tests := []struct {
		name      string
		spec      OriginSpec
		zipResult models.Coordinate
		zipErr    error
		want      models.Coordinate
		wantErr   bool
	}{
		{name: "zip", spec: OriginSpec{ZIP: "60201"}, zipResult: evanston, want: evanston},
		{name: "zip wins over coordinates", spec: OriginSpec{ZIP: "60201", Latitude: "1", Longitude: "1"}, zipResult: evanston, want: evanston},
		{name: "unknown zip", spec: OriginSpec{ZIP: "00000"}, zipErr: zipErr, wantErr: true},
		{name: "lat lon", spec: OriginSpec{Latitude: "42.0565", Longitude: " -87.6734 "}, want: evanston},
		{name: "missing everything", spec: OriginSpec{}, wantErr: true},
		{name: "missing lon", spec: OriginSpec{Latitude: "42"}, wantErr: true},
		{name: "not a number", spec: OriginSpec{Latitude: "north", Longitude: "-87"}, wantErr: true},
		{name: "nan", spec: OriginSpec{Latitude: "NaN", Longitude: "0"}, wantErr: true},
		{name: "out of range", spec: OriginSpec{Latitude: "91", Longitude: "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockResolver)
			if tt.spec.ZIP != "" {
				resolver.On("ResolveZIP", mock.Anything, tt.spec.ZIP).Return(tt.zipResult, tt.zipErr).Once()
			}
			svc := &DefaultMatchingService{Repo: sellerRepo.NewMemorySellerRepo(), Geocoder: resolver}

			got, err := svc.ResolveOrigin(context.Background(), tt.spec)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
				assert.Equal(t, apperrors.CodeMissingOrInvalidOrigin, apperrors.CodeOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			resolver.AssertExpectations(t)
			if tt.spec.ZIP == "" {
				resolver.AssertNotCalled(t, "ResolveZIP", mock.Anything, mock.Anything)
			}
		})
	}
}
