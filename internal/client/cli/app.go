package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/client/config"
	"github.com/dmitrijs2005/securepay/internal/client/repositories/goals"
	"github.com/dmitrijs2005/securepay/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/securepay/internal/client/services"
	"github.com/dmitrijs2005/securepay/internal/filex"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/money"
	"golang.org/x/text/language"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *client.GRPCClient

	auth      *services.AuthService
	txs       *services.TransactionService
	schedules *services.ScheduleService
	goals     *services.GoalService
	profile   *services.ProfileService

	format *money.Formatter
	reader *bufio.Reader
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New("text", c.LogLevel, os.Stderr)

	if err := filex.EnsureParentDir(c.DatabaseFile); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	identity := client.NewIdentity()
	backend := client.Backend{Store: apiClient, Feed: apiClient, Identity: identity}

	app := &App{
		config:    c,
		logger:    logger,
		db:        db,
		api:       apiClient,
		auth:      services.NewAuthService(apiClient, identity, metadata.NewSQLiteRepository(db), logger),
		txs:       services.NewTransactionService(backend, logger, c.RequestTimeout),
		schedules: services.NewScheduleService(backend, logger, c.RequestTimeout),
		goals:     services.NewGoalService(goals.NewSQLiteRepository(db)),
		profile:   services.NewProfileService(backend, apiClient),
		format:    money.NewFormatter(language.English),
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
	return app, nil
}

func (a *App) Close() {
	if err := a.api.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing grpc client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing database", "error", err)
	}
}

// Run restores the previous session, starts the background watchers and
// serves the REPL until the user quits or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restoreSession(ctx)

	var wg sync.WaitGroup
	for _, watch := range []func(context.Context){
		a.txs.Watch,
		a.schedules.Watch,
		func(ctx context.Context) { a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval) },
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			watch(ctx)
		}()
	}

	printlnFn("Welcome to SecurePay+ (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
}

func (a *App) restoreSession(ctx context.Context) {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.auth.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session restore failed", "error", err)
		return
	}
	if u != nil {
		a.setMode(ModeOnline)
	}
}

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUser() != nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher probes the server every interval and flips the
// mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultOnlineCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.auth.CurrentUser(); u != nil {
		s = u.Email + " "
	}
	s = strings.TrimSpace(s + string(a.getMode()))
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}
