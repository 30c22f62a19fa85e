package routes

import (
	"strings"
	"time"

	"harvestmap/config"
	"harvestmap/handlers"
	"harvestmap/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSellerRoutes registers seller registration and lookup.
func RegisterSellerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	auth := middleware.AuthMiddleware(hb.Verifier)

	r.POST("/add_user", auth, hb.AddSellerHandler)
	r.GET("/user/:uid", hb.GetSellerHandler)
	r.GET("/verify-auth", auth, hb.VerifyAuthHandler)
}

// RegisterListingRoutes registers listing ingestion. A seller may only post
// under its own uid.
func RegisterListingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/add_listing/:uid",
		middleware.AuthMiddleware(hb.Verifier),
		middleware.RequireSelf("uid"),
		hb.AddListingHandler)
}

// RegisterBuyerRoutes registers the public search endpoints.
func RegisterBuyerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/query_produce", hb.QueryProduceHandler)
	r.GET("/most_sold_products", hb.MostSoldProductsHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(config.AppConfig.CORSAllowOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSellerRoutes(r, hb)
	RegisterListingRoutes(r, hb)
	RegisterBuyerRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
