package handlers

import (
	"net/http"
	"strconv"
	"time"

	"harvestmap/apperrors"
	"harvestmap/services/matching"
	"harvestmap/services/popularity"
	"harvestmap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProduceHandler struct {
	Matching       matching.MatchingService
	Popularity     popularity.PopularityService
	DefaultLimit   int
	MaxLimit       int
	GeocodeTimeout time.Duration
}

// QueryProduceHandler handles GET /query_produce?produce=&zip=&lat=&lon=&limit=.
func (h *ProduceHandler) QueryProduceHandler(c *gin.Context) {
	logger := getLogger(c)

	limit, err := parseLimit(c.Query("limit"), h.DefaultLimit, h.MaxLimit)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	ctx, cancel := withTimeout(c.Request.Context(), h.GeocodeTimeout)
	defer cancel()

	origin, err := h.Matching.ResolveOrigin(ctx, matching.OriginSpec{
		ZIP:       c.Query("zip"),
		Latitude:  c.Query("lat"),
		Longitude: c.Query("lon"),
	})
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	produce := c.Query("produce")
	results, err := h.Matching.Query(c.Request.Context(), origin, produce, limit)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	logger.Debug("Produce query served",
		zap.String("produce", produce),
		zap.Float64("lat", origin.Latitude),
		zap.Float64("lon", origin.Longitude),
		zap.Int("count", len(results)))
	c.JSON(http.StatusOK, gin.H{"matching_listings": results, "count": len(results)})
}

// MostSoldProductsHandler handles GET /most_sold_products?limit=.
func (h *ProduceHandler) MostSoldProductsHandler(c *gin.Context) {
	logger := getLogger(c)

	limit, err := parseLimit(c.Query("limit"), popularity.DefaultLimit, h.MaxLimit)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	products, err := h.Popularity.Top(c.Request.Context(), limit)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// parseLimit applies def when raw is empty and clamps to max when max > 0.
func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, apperrors.Validation(apperrors.CodeInvalidLimit, "limit must be a positive integer", err)
	}
	if max > 0 && limit > max {
		return max, nil
	}
	return limit, nil
}
