package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// notificationSource is the part of *pgx.Conn the listener needs.
type notificationSource interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, dsn string) (notificationSource, error) {
	return pgx.Connect(ctx, dsn)
}

var after = time.After

// Listener holds a dedicated PostgreSQL connection LISTENing on the change
// channel and publishes every notification to a Hub.
type Listener struct {
	dsn     string
	channel string
	hub     *Hub
	logger  logging.Logger
}

func NewListener(dsn, channel string, hub *Hub, logger logging.Logger) *Listener {
	return &Listener{
		dsn:     dsn,
		channel: channel,
		hub:     hub,
		logger:  logger.With("module", "feed_listener"),
	}
}

// Run listens until ctx is done, reconnecting with exponential backoff when
// the connection drops. The backoff starts over after every connection that
// got as far as LISTEN.
func (l *Listener) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		listened, err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if listened {
			backoff = minBackoff
		}
		l.logger.Warn(ctx, "change feed interrupted", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return nil
		case <-after(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// listen runs one connection until it fails, reporting whether LISTEN
// succeeded on it.
func (l *Listener) listen(ctx context.Context) (bool, error) {
	conn, err := connect(ctx, l.dsn)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	l.logger.Info(ctx, "Listening for changes", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, err
		}
		l.handle(ctx, n.Payload)
	}
}

func (l *Listener) handle(ctx context.Context, payload string) {
	var c models.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		l.logger.Warn(ctx, "bad change payload", "payload", payload, "error", err)
		return
	}
	if c.Table == "" || c.UserID == "" {
		l.logger.Warn(ctx, "incomplete change payload", "payload", payload)
		return
	}
	n := l.hub.Publish(c)
	l.logger.Debug(ctx, "change published", "table", c.Table, "op", c.Op, "subscribers", n)
}
