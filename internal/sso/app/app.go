package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/cache"
	httpapi "github.com/aussiebroadwan/ssobridge/internal/sso/http"
	"github.com/aussiebroadwan/ssobridge/internal/sso/service"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store/drivers/sqlite"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the SSO bridge with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions session.Store
	cache    cache.Cache

	// Services
	flowService         *service.FlowService
	providerService     *service.ProviderService
	groupMappingService *service.GroupMappingService
	groupService        *service.GroupService
	sessionService      *service.SessionService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "sso-bridge",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initSessionsAndCache()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("sso bridge starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down sso bridge...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("sso bridge stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessionsAndCache picks Redis-backed or in-memory implementations for
// the flow/session store and the discovery cache.
func (app *Application) initSessionsAndCache() {
	if app.cfg.RedisAddr == "" {
		app.sessions = session.NewMemoryStore()
		app.cache = cache.NewMemory()
		app.logger.Info("using in-memory session store and cache")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
	})
	app.sessions = session.NewRedisStore(client)
	app.cache = cache.NewRedis(client)
	app.logger.Info("using redis session store and cache", "addr", app.cfg.RedisAddr)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	metadata := service.NewMetadataResolver(app.cache, app.cfg.DiscoveryCacheTTL)

	app.sessionService = &service.SessionService{
		Store:    app.db,
		Sessions: app.sessions,
		TTL:      app.cfg.SessionTTL,
	}

	app.flowService = &service.FlowService{
		Store:      app.db,
		Sessions:   app.sessions,
		Secrets:    service.EnvSecretResolver{},
		Metadata:   metadata,
		Exchange:   service.NewExchangeClient(),
		Reconciler: &service.Reconciler{Store: app.db},
		Logins:     app.sessionService,
		BaseURL:    app.cfg.BaseURL,
		LandingURL: app.cfg.LandingURL,
		StateTTL:   app.cfg.StateTTL,
	}

	app.providerService = &service.ProviderService{
		Store:    app.db,
		Metadata: metadata,
	}
	app.groupMappingService = &service.GroupMappingService{Store: app.db}
	app.groupService = &service.GroupService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cfg.AdminToken,
		session.CookieOptions{Secure: app.cfg.SecureCookies},
		app.cfg.StateTTL,
		app.logger,
	)

	// Wire services to router
	router.FlowService = app.flowService
	router.ProviderService = app.providerService
	router.GroupMappingService = app.groupMappingService
	router.GroupService = app.groupService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
