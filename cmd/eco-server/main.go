// Package main implements the ECO lookup server with RESTful API,
// admin-gated catalog refresh, and optional web UI serving capabilities.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eco/cmd/eco-server/cli"
	"eco/internal/config"
	"eco/internal/server/http"
	"eco/internal/server/service"
	"eco/internal/server/storage"
	"eco/internal/server/webserver"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	defaults := config.Default()

	// Command-line flags
	var (
		cfgPath = flag.String("config", "", "Optional YAML config file")

		// API server flags
		apiHost = flag.String("api-host", defaults.Server.Host, "API server host")
		apiPort = flag.Int("api-port", defaults.Server.Port, "API server port")
		dev     = flag.Bool("dev", false, "Development mode (relaxed rate limits, fixed JWT secret)")
		dbPath  = flag.String("db-path", "", "Path to SQLite database file (disables persistence if empty)")
		book    = flag.String("book", "", "Opening book CSV used when the database holds no catalog")
		baseURL = flag.String("base-url", defaults.Source.BaseURL, "Reference site base URL for refresh runs")
		pidPath = flag.String("pid", "", "Optional path to write PID file")
		pidLock = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")

		// Web UI server flags
		serveWeb = flag.Bool("serve-web", false, "Enable web UI server")
		webPort  = flag.Int("web-port", defaults.Server.WebPort, "Web UI server port")
	)
	flag.Parse()

	// Validate PID flags
	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	// Load config file, then let explicitly set flags override it
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-host":
			cfg.Server.Host = *apiHost
		case "api-port":
			cfg.Server.Port = *apiPort
		case "dev":
			cfg.Server.Dev = *dev
		case "db-path":
			cfg.Server.DBPath = *dbPath
		case "book":
			cfg.Server.BookPath = *book
		case "base-url":
			cfg.Source.BaseURL = *baseURL
		case "web-port":
			cfg.Server.WebPort = *webPort
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Manage PID file if requested
	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// 1. Initialize Storage (optional)
	var store *storage.Store
	if cfg.Server.DBPath != "" {
		log.Printf("Initializing persistent storage at: %s", cfg.Server.DBPath)
		store, err = storage.NewStore(cfg.Server.DBPath, cfg.Server.Dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -db-path to enable)")
	}

	// JWT secret management
	var jwtSecret []byte
	if cfg.Server.Dev {
		// Fixed secret in dev mode for testing consistency
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Printf("Using fixed JWT secret (dev mode)")
	} else {
		// Generate cryptographically secure secret
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("JWT secret generated (sessions valid until restart)")
	}

	// 2. Initialize the Service with optional storage and auth.
	// The service owns the store from here on and closes it on Shutdown.
	svc := service.New(store, jwtSecret, cfg.Source.FetcherOptions())

	// 3. Load the boot catalog: persisted catalog first, book CSV second
	loaded := 0
	if store != nil {
		n, err := svc.LoadCatalogFromStore()
		if err != nil {
			svc.Shutdown(gracefulShutdownTimeout)
			log.Fatalf("Failed to load catalog from database: %v", err)
		}
		if n > 0 {
			log.Printf("Catalog loaded from database: %d entries", n)
		}
		loaded = n
	}
	if loaded == 0 && cfg.Server.BookPath != "" {
		n, err := svc.LoadCatalogFromBook(cfg.Server.BookPath)
		if err != nil {
			svc.Shutdown(gracefulShutdownTimeout)
			log.Fatalf("Failed to load opening book %s: %v", cfg.Server.BookPath, err)
		}
		log.Printf("Catalog loaded from book %s: %d entries", cfg.Server.BookPath, n)
		loaded = n
	}
	if loaded == 0 {
		log.Printf("Warning: catalog is empty, classification unavailable until a refresh completes")
	}

	// Start cleanup job for expired refresh runs
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 4. Initialize the Fiber App/HTTP Handler, injecting the service
	app := http.NewFiberApp(svc, cfg.Server.Dev)

	// API Server configuration
	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	// Start API server in a goroutine
	go func() {
		log.Printf("ECO API Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		log.Printf("Catalog source: %s", cfg.Source.BaseURL)
		if cfg.Server.Dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if cfg.Server.DBPath != "" {
			log.Printf("Storage: Enabled (%s)", cfg.Server.DBPath)
		} else {
			log.Printf("Storage: Disabled (refresh and auth unavailable)")
		}
		log.Printf("API Endpoints: http://%s/api/v1/[classify|openings|catalog|refresh]", apiAddr)
		log.Printf("Auth Endpoint: http://%s/api/v1/auth/login", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// 5. Start Web UI server (optional)
	if *serveWeb {
		webAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.WebPort)
		apiURL := fmt.Sprintf("http://%s", apiAddr)

		go func() {
			log.Printf("Web UI Server starting...")
			log.Printf("Web UI Listening on: http://%s", webAddr)
			log.Printf("Web UI API target: %s", apiURL)

			if err := webserver.Start(cfg.Server.Host, cfg.Server.WebPort, apiURL); err != nil {
				log.Printf("Web UI server error: %v", err)
			}
		}()
	}

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown of HTTP server with timeout
	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cleanupCancel() // Stop cleanup job

	// Shutdown service last: aborts any in-flight refresh and drains storage
	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Servers exited")
}
