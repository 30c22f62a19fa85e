package utils

import (
	"errors"
	"net/http"

	"harvestmap/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.FullPath()))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// StatusFor maps an error kind to the HTTP status the API reports for it.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindGeocode:
		return http.StatusBadRequest
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// JSONError sends a standardized JSON error response for err.
// Server-side failures get a generic message; the detail goes to the log only.
func JSONError(c *gin.Context, logger *zap.Logger, err error) {
	var ae *apperrors.Error
	kind := apperrors.KindOf(err)
	status := StatusFor(kind)

	resp := ErrorResponse{Error: "Internal server error"}
	if errors.As(err, &ae) {
		resp.Code = ae.Code
		if status < http.StatusInternalServerError && ae.Message != "" {
			resp.Error = ae.Message
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if kind == apperrors.KindStore {
			resp.Error = "Error accessing database"
		}
	} else {
		logger.Warn("Request rejected", zap.String("path", c.FullPath()), zap.String("code", resp.Code), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, resp)
}
