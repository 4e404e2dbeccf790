// ClassKit - Classroom Tools Backend
//
// This is the main entry point for the ClassKit API server. ClassKit is a
// multi-tenant backend for classroom tooling:
//   - Stateless JWT account lifecycle (register, login, refresh)
//   - Zero-knowledge encrypted storage for rosters and seating charts
//   - Classroom timers and an optional local AI proxy
//
// The server never sees roster plaintext: clients encrypt before upload and
// decrypt after download.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/classkit/classkit/migrations"

	"github.com/classkit/classkit/internal/ai"
	"github.com/classkit/classkit/internal/api"
	"github.com/classkit/classkit/internal/audit"
	"github.com/classkit/classkit/internal/auth"
	"github.com/classkit/classkit/internal/infrastructure/config"
	"github.com/classkit/classkit/internal/infrastructure/database"
	"github.com/classkit/classkit/internal/infrastructure/logging"
	"github.com/classkit/classkit/internal/roster"
	"github.com/classkit/classkit/internal/seating"
	"github.com/classkit/classkit/internal/tenant"
	"github.com/classkit/classkit/internal/timer"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting ClassKit",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Account components
	hasher := auth.NewHasher(auth.Argon2Params{
		Time:    uint32(cfg.Security.Argon2.TimeCost),
		Memory:  uint32(cfg.Security.Argon2.MemoryKiB),
		Threads: uint8(cfg.Security.Argon2.Parallelism),
	})
	tokens := auth.NewTokenService(
		cfg.Security.JWT.Secret,
		time.Duration(cfg.Security.JWT.AccessTokenTTL)*time.Minute,
		time.Duration(cfg.Security.JWT.RefreshTokenTTL)*time.Hour,
	)
	identities := auth.NewIdentityRepository(db.DB)
	accounts, err := auth.NewService(identities, hasher, tokens, log, cfg.Security.HashWorkers)
	if err != nil {
		return fmt.Errorf("creating account service: %w", err)
	}
	log.Info("account service initialised", "hash_workers", cfg.Security.HashWorkers)

	// Tenant-scoped repositories
	rosters := roster.NewRepository(db.DB)
	charts := seating.NewRepository(db.DB)
	presets := timer.NewRepository(db.DB)
	auditLog := audit.NewRepository(db.DB)

	// Local AI proxy. The server runs fine without it; AI endpoints
	// report unavailable until the inference service responds.
	aiClient := ai.NewClient(cfg.AI, log)
	if aiErr := aiClient.HealthCheck(ctx); aiErr != nil {
		log.Warn("AI service unreachable at startup", "base_url", cfg.AI.BaseURL)
	} else {
		log.Info("AI service reachable", "model", cfg.AI.Model)
	}

	// API server
	server, err := api.New(api.Deps{
		Config:     cfg.Server,
		Security:   cfg.Security,
		Logger:     log,
		DB:         db,
		Accounts:   accounts,
		Identities: identities,
		Tokens:     tokens,
		Tenants:    tenant.NewIdentityResolver(),
		Rosters:    rosters,
		Charts:     charts,
		Presets:    presets,
		Audit:      auditLog,
		AI:         aiClient,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if healthErr := healthCheck(ctx, db, server, log); healthErr != nil {
		return healthErr
	}

	log.Info("ClassKit started",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	)

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// healthCheck verifies core components are responsive after startup.
func healthCheck(ctx context.Context, db *database.DB, server *api.Server, log *logging.Logger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	if err := server.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}

	log.Info("health checks passed")
	return nil
}

// getConfigPath returns the configuration file path.
// The CLASSKIT_CONFIG environment variable overrides the default.
func getConfigPath() string {
	if path := os.Getenv("CLASSKIT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
