package handlers

import (
	"harvestmap/services/identity"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Verifier identity.Verifier

	// Seller endpoints
	AddSellerHandler  gin.HandlerFunc
	GetSellerHandler  gin.HandlerFunc
	VerifyAuthHandler gin.HandlerFunc

	// Listing endpoints
	AddListingHandler gin.HandlerFunc

	// Buyer endpoints
	QueryProduceHandler     gin.HandlerFunc
	MostSoldProductsHandler gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
