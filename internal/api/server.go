// Package api provides the HTTP REST API for ClassKit.
//
// It exposes the account lifecycle (register, login, refresh), the
// tenant-scoped encrypted resource endpoints (rosters, seating charts),
// classroom timers, the audit trail, and the local AI proxy.
//
// The server follows the same lifecycle pattern as other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/classkit/classkit/internal/ai"
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

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.ServerConfig
	Security   config.SecurityConfig
	Logger     *logging.Logger
	DB         *database.DB
	Accounts   *auth.Service
	Identities auth.IdentityRepository
	Tokens     *auth.TokenService
	Tenants    tenant.Resolver
	Rosters    roster.Repository
	Charts     seating.Repository
	Presets    timer.Repository
	Audit      audit.Repository
	AI         *ai.Client // optional: AI endpoints return 503 when nil
	Version    string
}

// Server is the HTTP API server for ClassKit.
type Server struct {
	cfg        config.ServerConfig
	secCfg     config.SecurityConfig
	logger     *logging.Logger
	db         *database.DB
	accounts   *auth.Service
	identities auth.IdentityRepository
	tokens     *auth.TokenService
	tenants    tenant.Resolver
	rosters    roster.Repository
	charts     seating.Repository
	presets    timer.Repository
	audit      audit.Repository
	ai         *ai.Client
	version    string

	server   *http.Server
	limiters *limiterStore
	cancel   context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Accounts == nil || deps.Identities == nil || deps.Tokens == nil {
		return nil, fmt.Errorf("account service, identity repository, and token service are required")
	}
	if deps.Tenants == nil {
		return nil, fmt.Errorf("tenant resolver is required")
	}
	if deps.Rosters == nil || deps.Charts == nil {
		return nil, fmt.Errorf("roster and seating repositories are required")
	}

	return &Server{
		cfg:        deps.Config,
		secCfg:     deps.Security,
		logger:     deps.Logger,
		db:         deps.DB,
		accounts:   deps.Accounts,
		identities: deps.Identities,
		tokens:     deps.Tokens,
		tenants:    deps.Tenants,
		rosters:    deps.Rosters,
		charts:     deps.Charts,
		presets:    deps.Presets,
		audit:      deps.Audit,
		ai:         deps.AI,
		version:    deps.Version,
		limiters:   newLimiterStore(deps.Security.RateLimit),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router, starts the rate limiter cleanup loop, and launches
// the HTTP listener in a background goroutine. Stop with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.limiters.cleanLoop(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
