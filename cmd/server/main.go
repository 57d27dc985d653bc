/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bakery engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env optional), then parse flags
  2. Initialize SQLite store (migrations applied on open)
  3. Seed the default product catalog if empty
  4. Create service, handler and router
  5. Start the recurring order scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port (env PORT, default: 8080)
  -db      SQLite database path (env DB_PATH, default: bakery.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  TZ_NAME, LOCALE, BAKERY_NAME, LOG_LEVEL, LOG_FORMAT, SCHEDULER_ENABLED,
  SCHEDULER_INTERVAL, CORS_ORIGINS, SEED_PRODUCTS. See config/config.go.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - bakery/service.go: Orchestration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/bakery-engine/api"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/config"
	"github.com/warp/bakery-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	log := cfg.NewLogger()

	// Initialize store
	store, err := sqlite.New(*dbPath, sqlite.WithLocation(cfg.Location))
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if cfg.SeedProducts {
		added, err := bakery.SeedDefaultProducts(context.Background(), store)
		if err != nil {
			log.WithError(err).Warn("Failed to seed default products")
		} else if added > 0 {
			log.WithField("added", added).Info("Seeded default products")
		}
	}

	service := bakery.NewService(store, log)
	service.Location = cfg.Location
	service.Summarizer = bakery.Summarizer{Locale: cfg.Locale}

	handler := api.NewHandler(service, log)
	handler.Locale = cfg.Locale
	handler.BakeryName = cfg.BakeryName

	router := api.NewRouter(handler, cfg.CORSOrigins)

	scheduler := api.NewRecurringScheduler(service, log)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":     *port,
			"db":       *dbPath,
			"timezone": cfg.Location.String(),
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
