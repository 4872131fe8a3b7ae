// Package app owns the process-wide objects: configuration, database,
// logger, realtime hub and HTTP engine. They are built once by New and
// released by Run when its context ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mainhusharm/main-launch/internal/config"
	"github.com/mainhusharm/main-launch/internal/database"
	"github.com/mainhusharm/main-launch/internal/logging"
	"github.com/mainhusharm/main-launch/internal/realtime"
	"github.com/mainhusharm/main-launch/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled application.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *logrus.Logger
	Hub    *realtime.Hub
	Engine *gin.Engine
}

type options struct {
	db     *gorm.DB
	logger *logrus.Logger
	groups router.Groups
}

// Option customises New.
type Option func(*options)

// WithDB uses db instead of opening cfg.Database.URL. Migrations still run.
func WithDB(db *gorm.DB) Option {
	return func(o *options) { o.db = db }
}

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGroups supplies the business route groups.
func WithGroups(g router.Groups) Option {
	return func(o *options) { o.groups = g }
}

// New assembles the application for cfg.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.New(cfg.Log.Level, cfg.Log.Format)
	}

	db := o.db
	if db == nil {
		var err error
		if db, err = database.Open(cfg.Database); err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	hub := realtime.NewHub(logger.WithField("component", "realtime"))

	engine := router.SetupRouter(router.Deps{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Hub:    hub,
		Groups: o.groups,
	})

	logger.WithFields(logrus.Fields{
		"profile": cfg.Profile,
		"static":  cfg.Static.Dir,
	}).Info("application assembled")

	return &App{
		Config: cfg,
		DB:     db,
		Logger: logger,
		Hub:    hub,
		Engine: engine,
	}, nil
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts the server down and closes the database.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.serve(ctx, srv, srv.ListenAndServe)
}

func (a *App) serve(ctx context.Context, srv *http.Server, listen func() error) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.Hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.WithField("addr", srv.Addr).Info("server listening")
		errCh <- listen()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("run server: %w", err)
		}
	case <-ctx.Done():
		a.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("shutdown server: %w", err)
		}
	}

	stopHub()
	if err := a.Close(); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// Close releases the database.
func (a *App) Close() error {
	if err := database.Close(a.DB); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
