package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/vidtab/internal/accounts/http"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media/localfs"
	"github.com/aussiebroadwan/vidtab/internal/accounts/media/s3store"
	"github.com/aussiebroadwan/vidtab/internal/accounts/service"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store/drivers/mongodb"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/vidtab/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/vidtab/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the account service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	media      media.Store
	mediaFiles http.Handler // nil unless media is stored locally

	// Services
	tokenService   *service.TokenService
	accountService *service.AccountService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initMedia(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("accounts service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.DatabaseDriver,
		"media_driver", app.cfg.MediaDriver,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	case DriverMongo:
		db, err = mongodb.NewStore(ctx, app.cfg.DatabaseURL, app.cfg.DatabaseName)
	default:
		db, err = sqlite.NewStore(sqliteDSN(app.cfg.DatabaseURL))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// sqliteDSN turns a bare path into a DSN with the pragmas the service
// expects. Full DSNs are used as given.
func sqliteDSN(url string) string {
	if strings.HasPrefix(url, "file:") {
		return url
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", url)
}

// initMedia picks where uploaded images go
func (app *Application) initMedia(ctx context.Context) error {
	switch app.cfg.MediaDriver {
	case MediaS3:
		s, err := s3store.New(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize s3 media store: %w", err)
		}
		app.media = s
	default:
		s, err := localfs.New(app.cfg.MediaLocalDir, app.cfg.MediaPublicBaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize local media store: %w", err)
		}
		app.media = s
		app.mediaFiles = s.Handler()
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	tokens, err := service.NewTokenService(app.db, service.TokenConfig{
		Issuer:        app.cfg.Issuer,
		AccessSecret:  []byte(app.cfg.AccessTokenSecret),
		RefreshSecret: []byte(app.cfg.RefreshTokenSecret),
		AccessTTL:     app.cfg.AccessTokenExpiry,
		RefreshTTL:    app.cfg.RefreshTokenExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	app.accountService = &service.AccountService{
		Store:      app.db,
		Tokens:     tokens,
		Media:      app.media,
		BcryptCost: app.cfg.BcryptCost,
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.RouterConfig{
		BuildVersion:   BuildVersion,
		CORSOrigins:    app.cfg.CORSOrigins(),
		MaxUploadBytes: app.cfg.MaxUploadBytes,
		Media:          app.mediaFiles,
	}, app.db, app.logger)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
