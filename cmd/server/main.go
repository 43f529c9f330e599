package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stuchain/cuepoint/internal/catalog"
	"github.com/stuchain/cuepoint/internal/config"
	"github.com/stuchain/cuepoint/internal/constants"
	"github.com/stuchain/cuepoint/internal/export"
	"github.com/stuchain/cuepoint/internal/httpapi"
	"github.com/stuchain/cuepoint/internal/httpclient"
	"github.com/stuchain/cuepoint/internal/logger"
	"github.com/stuchain/cuepoint/internal/resolver"
	"github.com/stuchain/cuepoint/internal/store"
	"github.com/stuchain/cuepoint/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize catalog provider. "mock" serves the built-in fixture
	// catalog for local development.
	client := httpclient.NewClient(nil, cfg.RequestsPerSecond)
	var provider catalog.Provider
	if cfg.CatalogURL == constants.CatalogMock {
		provider = catalog.NewMockProvider()
	} else {
		provider = catalog.NewSiteProvider(cfg.CatalogURL, client)
	}
	cached := catalog.NewCachedProvider(provider, db, cfg.CacheTTL)

	// Initialize Resolver and Worker
	res := resolver.New(cached, cfg.Resolver, appLogger)
	w := worker.New(db, res, client, cfg, appLogger)
	w.Start()
	defer w.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	exporter := export.NewExporter(cfg.ExportDir, "")
	h := httpapi.NewHandler(db, w, exporter, cfg.UploadsDir, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
