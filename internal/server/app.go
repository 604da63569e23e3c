// Package server wires configuration, storage, the change feed and the gRPC
// endpoint together and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/server/config"
	"github.com/dmitrijs2005/securepay/internal/server/feed"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securepay/internal/server/services"

	gs "github.com/dmitrijs2005/securepay/internal/server/grpc"
)

const tokenPurgeInterval = time.Hour

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	hub            *feed.Hub
	userService    *services.UserService
	rowService     *services.RowService
	profileService *services.ProfileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New("json", c.LogLevel, os.Stdout)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		hub:            feed.NewHub(),
		userService:    services.NewUserService(db, rm, c),
		rowService:     services.NewRowService(db, rm),
		profileService: services.NewProfileService(db, rm, c),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.userService, app.rowService, app.profileService, app.hub, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startListener(ctx context.Context) {
	l := feed.NewListener(app.config.DatabaseDSN, app.config.NotifyChannel, app.hub, app.logger)
	if err := l.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}

func (app *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "refresh tokens purged", "count", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startListener(ctx)
	}()
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
