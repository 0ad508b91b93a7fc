package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stwalsh4118/estatehub/internal/config"
	"github.com/stwalsh4118/estatehub/internal/database"
	"github.com/stwalsh4118/estatehub/internal/geocoding"
	"github.com/stwalsh4118/estatehub/internal/handlers"
	"github.com/stwalsh4118/estatehub/internal/logger"
	"github.com/stwalsh4118/estatehub/internal/middleware"
	"github.com/stwalsh4118/estatehub/internal/repository"
	"github.com/stwalsh4118/estatehub/internal/services"
	"github.com/stwalsh4118/estatehub/internal/storage"
)

const (
	shutdownTimeout  = 30 * time.Second
	metricsNamespace = "estatehub"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Server.Env, cfg.Server.LogLevel)
	log.Info("Starting EstateHub API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply schema", err, nil)
		}
		log.Info("Schema applied", nil)
	}

	geocoder, err := geocoding.New(cfg.Geocoding)
	if err != nil {
		log.Fatal("Failed to create geocoder", err, nil)
	}
	if _, disabled := geocoder.(geocoding.Disabled); disabled {
		log.Warn("Geocoding disabled; new listings will have no coordinates", nil)
	}

	files, err := storage.NewOsStore(cfg.Storage.UploadsDir)
	if err != nil {
		log.Fatal("Failed to open uploads directory", err, map[string]interface{}{
			"dir": cfg.Storage.UploadsDir,
		})
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET is empty; manager routes will reject every token", nil)
	}

	// Repositories and services
	listingService := services.NewListingService(services.ListingDeps{
		Tx:           db,
		Listings:     repository.NewListingRepository(db),
		Locations:    repository.NewLocationRepository(db),
		Managers:     repository.NewManagerRepository(db),
		Leases:       repository.NewLeaseRepository(db),
		Reviews:      repository.NewReviewRepository(db),
		Applications: repository.NewApplicationRepository(db),
		Geocoder:     geocoder,
		Files:        files,
	}, log)
	managerService := services.NewManagerService(repository.NewManagerRepository(db), log)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware order: RequestID -> Logger -> Recovery -> CORS -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	if cfg.Metrics.Enabled {
		metrics := middleware.NewMetrics(metricsNamespace)
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	handlers.RegisterRoutes(router, handlers.Handlers{
		Health: handlers.NewHealthHandler(cfg.Server.Env,
			handlers.Dependency{Name: "database", Pinger: db},
			handlers.Dependency{Name: "uploads", Pinger: files},
		),
		Listings: handlers.NewListingHandler(listingService),
		Managers: handlers.NewManagerHandler(managerService, listingService),
	}, middleware.ManagerAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// TLS handshake and connection errors from net/http
		ErrorLog: stdlog.New(log.GetZerolog(), "", 0),
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
