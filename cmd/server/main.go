/*
main.go - HTTP server entry point

PURPOSE:
  Initializes and starts the net-worth simulation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite run store (optional)
  3. Create the API handler with dependencies
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path for persisted runs.
           Empty disables the /api/runs endpoints.
           Use ":memory:" for an in-memory database.
  -trace   Enable debug logging of every dispatched event

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with persisted runs
  ./server -db="./data/runs.db"

  # Run without persistence on another port
  ./server -port=3000

ENVIRONMENT:
  PORT and DB_PATH (via .env or the environment) are used as flag
  defaults when set.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Run persistence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/networth-engine/api"
	"github.com/warp/networth-engine/store/sqlite"
)

func main() {
	// .env is optional; flags still win over it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", os.Getenv("DB_PATH"), "SQLite path for persisted runs (empty disables)")
	trace := flag.Bool("trace", false, "log every dispatched event")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *trace {
		log.SetLevel(logrus.DebugLevel)
	}

	var store *sqlite.Store
	if *dbPath != "" {
		var err error
		store, err = sqlite.New(*dbPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to open run store")
		}
		defer store.Close()
		log.WithField("db", *dbPath).Info("Run persistence enabled")
	}

	router := api.NewRouter(api.NewHandler(log, store))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
