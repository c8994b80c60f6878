// Package main is the entry point for the Inkwell blog API server.
// It loads configuration, connects to services, sets up routing, starts
// the scheduled-publishing worker, and runs the HTTP server with
// graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/ai"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/router"
	"inkwell/internal/scheduler"
	"inkwell/internal/store"
)

func main() {
	// Structured logger — text output, debug level in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the response cache. The API works without it,
	// every read just goes to Postgres.
	var responseCache *cache.ResponseCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey not reachable — running without response cache", "error", err)
	} else {
		defer valkeyClient.Close()
		responseCache = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	articleStore := store.NewArticleStore(db)
	commentStore := store.NewCommentStore(db)
	categoryStore := store.NewCategoryStore(db)

	// Start the scheduled-publishing worker: once a minute it promotes
	// scheduled articles whose publish time has arrived.
	promoter := scheduler.New(articleStore, scheduler.DefaultInterval)
	promoter.Start(context.Background())
	defer promoter.Stop()

	// Initialize the AI provider registry. A single key selects the
	// active provider; both speak the OpenAI chat completions format.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai": {APIKey: cfg.AIAPIKey, Model: cfg.AIModel, BaseURL: cfg.AIBaseURL},
		"zhipu":  {APIKey: cfg.AIAPIKey, Model: cfg.AIModel, BaseURL: cfg.AIBaseURL},
	})
	if cfg.AIProvider != "" {
		slog.Info("ai providers initialized",
			"active", aiRegistry.ActiveName(),
			"available", aiRegistry.Available(),
		)
	} else {
		slog.Warn("no AI provider configured — article generation disabled")
	}
	generator := ai.NewGenerator(aiRegistry)

	// Create handler groups with their dependencies.
	articleHandlers := handlers.NewArticles(articleStore, responseCache)
	commentHandlers := handlers.NewComments(commentStore, articleStore, responseCache)
	categoryHandlers := handlers.NewCategories(categoryStore)
	authHandlers := handlers.NewAuth(userStore, cfg.JWTSecret)
	aiHandlers := handlers.NewAI(generator, aiRegistry, categoryStore, cfg.AIModel)

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Options{
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
		Articles:   articleHandlers,
		Comments:   commentHandlers,
		Categories: categoryHandlers,
		Auth:       authHandlers,
		AI:         aiHandlers,
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate the AI endpoint waiting on LLM responses.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
