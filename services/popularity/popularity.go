// Package popularity ranks produce by how often it has been listed.
package popularity

import (
	"context"
	"sort"
	"strings"
	"time"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"

	"go.uber.org/zap"
)

const DefaultLimit = 10

type PopularityService interface {
	Top(ctx context.Context, limit int) ([]models.ProductCount, error)
	Refresh(ctx context.Context) ([]models.ProductCount, error)
}

// DefaultPopularityService counts over a full scan of the store. The complete
// ranking is cached so any limit can be served from one entry.
type DefaultPopularityService struct {
	Repo   sellerRepo.SellerRepository
	Cache  RankingCache
	TTL    time.Duration
	Logger *zap.Logger
}

// Top returns the limit most listed products. A cache miss or cache failure
// falls through to a direct count.
func (s *DefaultPopularityService) Top(ctx context.Context, limit int) ([]models.ProductCount, error) {
	if limit <= 0 {
		return nil, apperrors.Validation(apperrors.CodeInvalidLimit, "limit must be a positive integer", nil)
	}

	if s.Cache != nil {
		ranking, ok, err := s.Cache.Get(ctx)
		switch {
		case err != nil:
			s.logger().Warn("Popularity cache read failed", zap.Error(err))
		case ok:
			return truncate(ranking, limit), nil
		}
	}

	ranking, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return truncate(ranking, limit), nil
}

// Refresh recounts every listing and rewrites the cache. A cache write failure
// is logged; the fresh ranking is still returned.
func (s *DefaultPopularityService) Refresh(ctx context.Context) ([]models.ProductCount, error) {
	sellers, err := s.Repo.Scan(ctx)
	if err != nil {
		s.logger().Error("Error accessing seller store", zap.Error(err))
		return nil, apperrors.Store("failed to count products", err)
	}

	ranking := Count(sellers)
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, ranking, s.TTL); err != nil {
			s.logger().Warn("Popularity cache write failed", zap.Error(err))
		}
	}
	return ranking, nil
}

// Count tallies item names across every decodable listing. Names are compared
// trimmed and case-insensitively; the first spelling seen is the one reported.
// The result is ordered by count descending, then name ascending.
func Count(sellers []models.Seller) []models.ProductCount {
	index := make(map[string]int)
	var ranking []models.ProductCount

	for _, seller := range sellers {
		for _, listing := range seller.Listings {
			if listing.Malformed != nil {
				continue
			}
			for _, item := range listing.ProduceItems {
				name := strings.TrimSpace(item.Name)
				if name == "" {
					continue
				}
				key := strings.ToLower(name)
				if i, ok := index[key]; ok {
					ranking[i].Count++
					continue
				}
				index[key] = len(ranking)
				ranking = append(ranking, models.ProductCount{Name: name, Count: 1})
			}
		}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return strings.ToLower(ranking[i].Name) < strings.ToLower(ranking[j].Name)
	})
	if ranking == nil {
		ranking = []models.ProductCount{}
	}
	return ranking
}

func truncate(ranking []models.ProductCount, limit int) []models.ProductCount {
	if len(ranking) > limit {
		return ranking[:limit]
	}
	return ranking
}

func (s *DefaultPopularityService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
