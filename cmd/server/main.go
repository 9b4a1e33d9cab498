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

	"github.com/mzahid/tartil/internal/cache"
	"github.com/mzahid/tartil/internal/config"
	"github.com/mzahid/tartil/internal/handlers"
	"github.com/mzahid/tartil/internal/httpclient"
	"github.com/mzahid/tartil/internal/identity"
	"github.com/mzahid/tartil/internal/logger"
	"github.com/mzahid/tartil/internal/remote"
	"github.com/mzahid/tartil/internal/store"
	"github.com/mzahid/tartil/internal/synth"
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
	})

	// Initialize local durable store
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to open local store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if !cfg.RemoteEnabled() {
		appLogger.Info("No remote store configured, running local-only")
	}

	// Shared HTTP client for the remote store and the synthesis endpoint
	hc := httpclient.NewClient(nil, 0)

	remoteClient := remote.NewClient(cfg.RemoteURL, cfg.RemoteAPIKey, hc, appLogger)
	resolver := identity.NewResolver(nil, store.NewSettingsRepo(db), appLogger)

	manager := cache.NewManager(db, remoteClient, resolver, appLogger)
	manager.Start()
	defer manager.Stop()

	synthesizer := synth.NewSynthesizer(cfg.SynthURL, cfg.SynthAPIKey, cfg.SynthVoice, hc, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := handlers.NewHandler(manager, synthesizer, cfg.ExportsDir, appLogger)
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

	// Let pending remote mirrors finish before the process exits.
	if err := manager.Flush(ctx); err != nil {
		appLogger.Warn("Mirror flush incomplete", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
