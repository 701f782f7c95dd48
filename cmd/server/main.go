package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mealmap/backend/config"
	"github.com/mealmap/backend/internal/app"
	httpDelivery "github.com/mealmap/backend/internal/delivery/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Printf("Server exited: %v", err)
		os.Exit(1)
	}
}

// run owns every resource of the process so that deferred cleanup, including
// closing the cache, happens before main exits.
func run() error {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting MealMap Backend %s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	if !cfg.USDAEnabled() {
		log.Printf("WARNING: USDA API key not configured - the usda tier is disabled")
	}
	log.Printf("Matching: usda=%.2f local=%.2f strict=%v fuzzy=%v debug=%v",
		cfg.Matching.USDAThreshold,
		cfg.Matching.LocalThreshold,
		cfg.Matching.StrictUSDA,
		cfg.Matching.EnableFuzzyMatching,
		cfg.Matching.EnableDebugLogging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Printf("Engine close error: %v", err)
		}
	}()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(engine.Resolver, engine.Batch)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, shutdownTimeout)
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts it
// down gracefully. A listener failure is returned.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
