package handlers

import (
	"context"
	"net/http"
	"time"

	"harvestmap/apperrors"
	"harvestmap/services/listing"
	"harvestmap/services/tasks"
	"harvestmap/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListingHandler struct {
	Service        listing.ListingService
	Refresh        tasks.RefreshEnqueuer
	GeocodeTimeout time.Duration
}

func NewListingHandler(svc listing.ListingService, refresh tasks.RefreshEnqueuer, geocodeTimeout time.Duration) *ListingHandler {
	return &ListingHandler{Service: svc, Refresh: refresh, GeocodeTimeout: geocodeTimeout}
}

// AddListingHandler handles POST /add_listing/:uid.
func (h *ListingHandler) AddListingHandler(c *gin.Context) {
	logger := getLogger(c)
	uid := c.Param("uid")

	var req listing.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, logger, apperrors.Validation(apperrors.CodeInvalidBody, "Invalid request body", err))
		return
	}

	ctx, cancel := withTimeout(c.Request.Context(), h.GeocodeTimeout)
	defer cancel()

	event, err := h.Service.Submit(ctx, uid, req)
	if err != nil {
		utils.JSONError(c, logger, err)
		return
	}

	if h.Refresh != nil {
		if err := h.Refresh.EnqueueRefresh(c.Request.Context()); err != nil {
			logger.Warn("Failed to enqueue popularity refresh", zap.String("seller_id", uid), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Listing added successfully",
		"listing":    event,
		"created_at": event.CreatedAt,
	})
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
