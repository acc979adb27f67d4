package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/halcyonstudio/portal/internal/portal/http"
	"github.com/halcyonstudio/portal/internal/portal/service"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/internal/portal/store/drivers/sqlite"
	"github.com/halcyonstudio/portal/pkg/jwtx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the portal service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256

	accessService   *service.AccessService
	userService     *service.UserService
	proposalService *service.ProposalService
	invoiceService  *service.InvoiceService
	assetService    *service.AssetService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("PORTAL_SESSION_SECRET must be set")
	}
	app.tokens = &jwtx.HS256{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.Issuer,
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Create the bootstrap admin before traffic lands, if configured
	ctx := context.Background()
	if err := app.userService.Bootstrap(ctx, app.cfg.BootstrapEmail, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap admin failed: %w", err)
	}

	app.logger.Info("portal service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down portal service...")

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

	app.logger.Info("portal service stopped")
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

// initServices initializes all business logic services
func (app *Application) initServices() {
	var mailer service.Mailer = service.NopMailer{}
	if app.cfg.SMTPHost != "" {
		mailer = service.NewSMTPMailer(
			app.cfg.SMTPHost,
			app.cfg.SMTPPort,
			app.cfg.SMTPUser,
			app.cfg.SMTPPassword,
			app.cfg.SMTPFrom,
		)
		app.logger.Info("smtp mailer enabled", "host", app.cfg.SMTPHost)
	}

	app.accessService = &service.AccessService{
		Store:    app.db,
		Validity: app.cfg.CodeValidity,
	}
	app.userService = &service.UserService{
		Store:      app.db,
		Signer:     app.tokens,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}
	app.proposalService = &service.ProposalService{
		Store:  app.db,
		Access: app.accessService,
		Mailer: mailer,
	}
	app.invoiceService = &service.InvoiceService{
		Store:  app.db,
		Access: app.accessService,
		Mailer: mailer,
		PDF:    service.NewInvoicePDF(app.cfg.StudioName),
	}
	app.assetService = &service.AssetService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AccessService = app.accessService
	router.UserService = app.userService
	router.ProposalService = app.proposalService
	router.InvoiceService = app.invoiceService
	router.AssetService = app.assetService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
