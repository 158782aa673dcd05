// Package server initializes and runs the application server. It opens the
// database, applies migrations, seeds the ID counters, wires the services
// to their collaborators, and serves the REST API until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rcabrera/citywatch/internal/logging"
	"github.com/rcabrera/citywatch/internal/server/broadcast"
	"github.com/rcabrera/citywatch/internal/server/config"
	"github.com/rcabrera/citywatch/internal/server/httpapi"
	"github.com/rcabrera/citywatch/internal/server/mail"
	"github.com/rcabrera/citywatch/internal/server/models"
	"github.com/rcabrera/citywatch/internal/server/objectstore"
	"github.com/rcabrera/citywatch/internal/server/repositories/repomanager"
	"github.com/rcabrera/citywatch/internal/server/sequence"
	"github.com/rcabrera/citywatch/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// report and emergency counters exist from the start; per-year user
	// counters are created lazily on first registration
	countersRepo := rm.Counters(db)
	for _, key := range []string{models.CounterReportID, models.CounterEmergencyID} {
		if err := countersRepo.EnsureInitialized(ctx, key, 0); err != nil {
			return nil, fmt.Errorf("counter init error: %w", err)
		}
	}

	store, err := objectstore.NewS3Store(ctx, objectstore.S3Config{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Timeout:      cfg.OutboundTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  cfg.OutboundTimeout,
		})
	} else {
		logger.Warn(ctx, "no SMTP host configured, mail delivery disabled")
		mailer = mail.NewNopMailer(logger)
	}

	allocator := sequence.NewAllocator(countersRepo)
	hub := broadcast.NewHub()

	userService := services.NewUserService(db, rm, allocator, mailer, logger, cfg)
	adminService := services.NewAdminService(db, rm, logger, cfg)
	reportService := services.NewReportService(db, rm, allocator, store, mailer, logger, cfg)
	emergencyService := services.NewEmergencyService(db, rm, allocator, store, mailer, hub, logger, cfg)
	postService := services.NewPostService(db, rm, logger)

	api := httpapi.New(userService, adminService, reportService, emergencyService, postService, hub, logger, cfg)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		handler: api.Routes(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until the context is cancelled or a shutdown signal
// arrives, then drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}
