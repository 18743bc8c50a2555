package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mkrish/go-crime-routes/internal/api"
	"github.com/mkrish/go-crime-routes/internal/config"
	"github.com/mkrish/go-crime-routes/internal/geocode"
	"github.com/mkrish/go-crime-routes/internal/ingest"
	"github.com/mkrish/go-crime-routes/internal/logging"
	"github.com/mkrish/go-crime-routes/internal/repository"
	"github.com/mkrish/go-crime-routes/internal/routing"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "backend", cfg.Store.Backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize incident store: %v", err)
	}
	defer cleanup()

	geocoder := geocode.NewGeocoder(cfg.Geocode.BaseURL, cfg.Geocode.Qualifier, cfg.Geocode.Fallback, cfg.Geocode.Timeout)
	router := routing.NewClient(cfg.Routing.BaseURL, cfg.Routing.APIKey, routing.AlternativesConfig{
		TargetCount:  cfg.Routing.TargetCount,
		ShareFactor:  cfg.Routing.ShareFactor,
		WeightFactor: cfg.Routing.WeightFactor,
	}, cfg.Routing.Timeout)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	engine.Use(api.RateLimitMiddleware(5, 10)) // global limit; route lookups are expensive

	handler := api.NewHandler(repo, geocoder, router, cfg.Hazard.Threshold, cfg.Cluster.DefaultK, cfg.Cluster.Seed)
	handler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

// openStore builds the configured incident repository. The sqlite backend
// additionally seeds itself from the CSV file when one is present.
func openStore(ctx context.Context, cfg *config.Config) (repository.IncidentRepository, func(), error) {
	switch cfg.Store.Backend {
	case "csv":
		store, err := repository.NewCSVStore(cfg.Store.CSVPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		db, err := repository.NewSQLiteDB(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, err
		}

		if _, err := os.Stat(cfg.Store.CSVPath); err == nil {
			importer := ingest.NewImporter(db, cfg.Import.Workers, cfg.Import.BufferSize)
			if _, _, err := importer.Run(ctx, cfg.Store.CSVPath); err != nil {
				db.Close()
				return nil, nil, err
			}
		}

		return db, func() { db.Close() }, nil
	}
}
