package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harvestmap/config"
	"harvestmap/cron"
	"harvestmap/database"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/handlers"
	"harvestmap/middleware"
	"harvestmap/routes"
	"harvestmap/services/geocode"
	"harvestmap/services/identity"
	"harvestmap/services/listing"
	"harvestmap/services/matching"
	"harvestmap/services/popularity"
	"harvestmap/services/seller"
	"harvestmap/services/tasks"
	"harvestmap/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg := config.AppConfig
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Store backend.
	var (
		store       sellerRepo.SellerRepository
		mongoClient *mongo.Client
	)
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("Using in-memory seller store; data is lost on restart")
		store = sellerRepo.NewMemorySellerRepo()
	default:
		database.InitDB()
		mongoClient = database.MongoClient
		store = sellerRepo.NewMongoSellerRepo(database.Database(), logger)
	}

	redisClient := utils.InitCache()

	// Identity.
	var verifier identity.Verifier
	switch cfg.AuthProvider {
	case "jwt":
		if cfg.JWTSecret == "" {
			logger.Fatal("AUTH_PROVIDER=jwt requires JWT_SECRET")
		}
		verifier = identity.NewJWTVerifier(cfg.JWTSecret)
	default:
		verifier = identity.NewFirebaseVerifier(utils.FirebaseInit())
	}

	if cfg.GoogleMapsAPIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set; every geocoding lookup will fail")
	}
	resolver := geocode.NewGoogleResolver(
		cfg.GoogleMapsAPIKey,
		cfg.GeocodeBaseURL,
		&http.Client{Timeout: cfg.GeocodeTimeout()},
		logger.Named("geocode"),
	)

	// services.
	sellerService := &seller.DefaultSellerService{Repo: store, Logger: logger}
	listingService := &listing.DefaultListingService{Repo: store, Geocoder: resolver, Logger: logger}
	matchingService := &matching.DefaultMatchingService{Repo: store, Geocoder: resolver, Logger: logger}
	popularityService := &popularity.DefaultPopularityService{
		Repo:   store,
		Cache:  popularity.NewRedisRankingCache(redisClient),
		TTL:    cfg.PopularityCacheTTL(),
		Logger: logger,
	}

	// Background popularity refresh.
	worker := cron.InitPopularityWorker(popularityService, logger.Named("worker"))
	queue := asynq.NewClient(cron.RedisOpt())
	defer queue.Close()

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, time.Minute, redisClient, mongoClient)

	// handlers.
	sellerHandler := handlers.NewSellerHandler(sellerService)
	listingHandler := handlers.NewListingHandler(listingService, tasks.NewAsynqEnqueuer(queue), cfg.GeocodeTimeout())
	produceHandler := &handlers.ProduceHandler{
		Matching:       matchingService,
		Popularity:     popularityService,
		DefaultLimit:   cfg.DefaultQueryLimit,
		MaxLimit:       cfg.MaxQueryLimit,
		GeocodeTimeout: cfg.GeocodeTimeout(),
	}

	handlerBundle := &handlers.HandlerBundle{
		Verifier: verifier,

		AddSellerHandler:  sellerHandler.AddSellerHandler,
		GetSellerHandler:  sellerHandler.GetSellerHandler,
		VerifyAuthHandler: sellerHandler.VerifyAuthHandler,

		AddListingHandler: listingHandler.AddListingHandler,

		QueryProduceHandler:     produceHandler.QueryProduceHandler,
		MostSoldProductsHandler: produceHandler.MostSoldProductsHandler,

		HealthHandler: handlers.HealthHandler,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreBackend))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
