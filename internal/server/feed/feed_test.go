package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RoutesByTableAndOwner(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("scheduled_payments", "u1")
	defer cancelA()
	b, cancelB := h.Subscribe("scheduled_payments", "u2")
	defer cancelB()

	assert.Equal(t, 1, h.Publish(models.Change{Table: "scheduled_payments", UserID: "u1", Op: "INSERT"}))

	select {
	case <-a:
	default:
		t.Fatal("u1 subscriber not signalled")
	}
	select {
	case <-b:
		t.Fatal("u2 subscriber signalled for u1 change")
	default:
	}
}

func TestHub_CoalescesBursts(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("t", "u")
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Publish(models.Change{Table: "t", UserID: "u"})
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("burst should collapse into one signal")
	default:
	}
}

func TestHub_CancelClosesAndUnregisters(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("t", "u")
	assert.Equal(t, 1, h.Subscribers("t", "u"))

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("t", "u"))
	assert.Equal(t, 0, h.Publish(models.Change{Table: "t", UserID: "u"}))
}

type fakeConn struct {
	mu       sync.Mutex
	execSQL  []string
	payloads chan string
	closed   bool
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execSQL = append(c.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p, ok := <-c.payloads:
		if !ok {
			return nil, errors.New("conn closed")
		}
		return &pgconn.Notification{Channel: "securepay_changes", Payload: p}, nil
	}
}

func (c *fakeConn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestListener_PublishesNotifications(t *testing.T) {
	conn := &fakeConn{payloads: make(chan string, 4)}
	orig := connect
	connect = func(ctx context.Context, dsn string) (notificationSource, error) { return conn, nil }
	t.Cleanup(func() { connect = orig })

	hub := NewHub()
	ch, cancel := hub.Subscribe("securepay_transactions", "u1")
	defer cancel()

	l := NewListener("dsn", "securepay_changes", hub, logging.NewNop())
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	conn.payloads <- `not json`
	conn.payloads <- `{"table":"securepay_transactions","user_id":"u1","op":"DELETE"}`

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}

	stop()
	require.NoError(t, <-done)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Equal(t, []string{`LISTEN "securepay_changes"`}, conn.execSQL)
	assert.True(t, conn.closed)
}

func TestListener_RetriesAfterConnectFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	orig := connect
	connect = func(ctx context.Context, dsn string) (notificationSource, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return nil, errors.New("refused")
	}
	t.Cleanup(func() { connect = orig })

	l := NewListener("dsn", "c", NewHub(), logging.NewNop())
	ctx, stop := context.WithTimeout(context.Background(), minBackoff+200*time.Millisecond)
	defer stop()

	require.NoError(t, l.Run(ctx))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestListener_IgnoresIncompletePayload(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("t", "")
	defer cancel()

	l := NewListener("dsn", "c", hub, logging.NewNop())
	l.handle(context.Background(), `{"table":"t"}`)

	select {
	case <-ch:
		t.Fatal("incomplete payload must not be published")
	default:
	}
}

func recordBackoff(t *testing.T, stopAfter int, stop context.CancelFunc) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	orig := after
	after = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		if len(waits) == stopAfter {
			stop()
		}
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	t.Cleanup(func() { after = orig })
	return &waits
}

func TestListener_BackoffResetsAfterListen(t *testing.T) {
	orig := connect
	connect = func(ctx context.Context, dsn string) (notificationSource, error) {
		// LISTEN succeeds, then the connection drops at once
		payloads := make(chan string)
		close(payloads)
		return &fakeConn{payloads: payloads}, nil
	}
	t.Cleanup(func() { connect = orig })

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	waits := recordBackoff(t, 4, stop)

	l := NewListener("dsn", "c", NewHub(), logging.NewNop())
	require.NoError(t, l.Run(ctx))

	require.Len(t, *waits, 4)
	for _, d := range *waits {
		assert.Equal(t, minBackoff, d)
	}
}

func TestListener_BackoffGrowsWhileConnectFails(t *testing.T) {
	orig := connect
	connect = func(ctx context.Context, dsn string) (notificationSource, error) {
		return nil, errors.New("refused")
	}
	t.Cleanup(func() { connect = orig })

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	waits := recordBackoff(t, 3, stop)

	l := NewListener("dsn", "c", NewHub(), logging.NewNop())
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, []time.Duration{minBackoff, 2 * minBackoff, 4 * minBackoff}, *waits)
}
