package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"storefront-service/internal/catalog"
	"storefront-service/internal/clients"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
	"storefront-service/internal/subscribers"
)

// @title Storefront Browse API
// @version 1.0.0
// @description Public storefront service: catalog browsing with search, category, facet and price filters, plus session cart and wishlist state.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection. Session state needs Redis; snapshot caching
	// merely degrades without it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (session state will fail)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize catalog snapshot store
	catalogClient := clients.NewCatalogClient()
	snapshots := catalog.NewStore(catalogClient, redisClient, logger)

	// Initialize session store
	sessionStore := repository.NewRedisSessionStore(redisClient, logger)

	// Initialize NATS-backed pieces only if NATS_URL is set: the search
	// analytics publisher and the catalog change subscriber.
	var eventsPublisher *events.Publisher
	var catalogSubscriber *subscribers.CatalogSubscriber
	if os.Getenv("NATS_URL") != "" {
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}

		catalogSubscriber, err = subscribers.NewCatalogSubscriber(snapshots, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize catalog subscriber: %v (snapshots expire by TTL only)", err)
		} else if err := catalogSubscriber.Start(context.Background()); err != nil {
			log.Printf("WARNING: Failed to start catalog subscriber: %v (snapshots expire by TTL only)", err)
			catalogSubscriber.Stop()
			catalogSubscriber = nil
		} else {
			log.Println("✓ Catalog subscriber started")
		}
	} else {
		log.Println("NATS_URL not set, skipping NATS initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
		if catalogSubscriber != nil {
			catalogSubscriber.Stop()
		}
	}()

	// Initialize handlers
	browseHandler := handlers.NewBrowseHandler(snapshots, eventsPublisher, logger, cfg.MaxPageSize)
	cartHandler := handlers.NewCartHandler(sessionStore, logger, cfg.TrendingLimit)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no tenant context required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	// Public storefront endpoints: tenant context plus a browse session
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware())
	storefront.Use(middleware.SessionMiddleware())
	{
		// Catalog browsing
		storefront.GET("/products", browseHandler.GetProducts)
		storefront.GET("/categories", browseHandler.GetCategories)
		storefront.GET("/facets", browseHandler.GetFacets)

		// Most-viewed tracking
		storefront.GET("/products/trending", cartHandler.GetTrending)
		storefront.POST("/products/:id/view", cartHandler.RecordView)

		// Session cart
		storefront.GET("/cart", cartHandler.GetCart)
		storefront.DELETE("/cart", cartHandler.ClearCart)
		storefront.POST("/cart/items", cartHandler.AddCartItem)
		storefront.PUT("/cart/items/:variationId", cartHandler.UpdateCartItem)
		storefront.DELETE("/cart/items/:variationId", cartHandler.RemoveCartItem)

		// Session wishlist
		storefront.GET("/wishlist", cartHandler.GetWishlist)
		storefront.DELETE("/wishlist", cartHandler.ClearWishlist)
		storefront.POST("/wishlist/items", cartHandler.AddWishlistItem)
		storefront.DELETE("/wishlist/items/:variationId", cartHandler.RemoveWishlistItem)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down storefront-service...")

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Storefront service stopped")
}
