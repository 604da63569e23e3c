// Package services holds the client-side application services: the live
// dashboard lists, session handling, goals and the profile.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/reconcile"
	"github.com/dmitrijs2005/securepay/internal/records"
)

// ListController keeps one remote table of the signed-in user on screen.
// Writes go through the Reconciler optimistically; change notifications
// trigger a full re-fetch.
type ListController[T reconcile.Record[T]] struct {
	backend   client.Backend
	table     string
	normalize func(records.Row) T
	rec       *reconcile.Reconciler[T]
	logger    logging.Logger
	timeout   time.Duration

	mu  sync.Mutex
	err error

	// signal is a 1-slot channel: notifications arriving while a fetch runs
	// collapse into one follow-up fetch.
	signal chan struct{}
}

func NewListController[T reconcile.Record[T]](
	backend client.Backend,
	table string,
	normalize func(records.Row) T,
	compare func(a, b T) int,
	logger logging.Logger,
	timeout time.Duration,
	opts ...reconcile.Option[T],
) *ListController[T] {
	return &ListController[T]{
		backend:   backend,
		table:     table,
		normalize: normalize,
		rec:       reconcile.New(compare, opts...),
		logger:    logger.With("table", table),
		timeout:   timeout,
		signal:    make(chan struct{}, 1),
	}
}

func (l *ListController[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.timeout)
}

// Snapshot returns the visible collection.
func (l *ListController[T]) Snapshot() []T {
	return l.rec.Snapshot()
}

func (l *ListController[T]) Get(id string) (T, bool) {
	return l.rec.Get(id)
}

// Err returns the error of the latest fetch, or nil once a fetch succeeded.
func (l *ListController[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *ListController[T]) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Load fetches the whole table for the signed-in user and applies it. A
// fetch that completes after a later one has been applied is dropped.
func (l *ListController[T]) Load(ctx context.Context) error {
	ticket := l.rec.BeginRefresh()

	u := l.backend.Identity.CurrentUser()
	if u == nil {
		l.rec.ApplyRefresh(ticket, nil)
		l.setErr(nil)
		return nil
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	rows, err := l.backend.Store.Query(ctx, l.table, u.ID)
	if err != nil {
		l.setErr(err)
		return err
	}

	list := make([]T, 0, len(rows))
	for _, row := range rows {
		list = append(list, l.normalize(row))
	}
	if !l.rec.ApplyRefresh(ticket, list) {
		l.logger.Debug(ctx, "stale fetch dropped")
	}
	l.setErr(nil)
	return nil
}

// Notify schedules a re-fetch on the Watch loop.
func (l *ListController[T]) Notify() {
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Watch keeps the list in sync until ctx ends: it subscribes to the change
// feed of the signed-in user, re-subscribes on sign-in and sign-out, and
// re-fetches on every notification. Subscription failures are logged and
// the list keeps working without realtime updates.
func (l *ListController[T]) Watch(ctx context.Context) {
	authChanged := make(chan struct{}, 1)
	unsubscribe := l.backend.Identity.OnAuthStateChange(func(*client.User) {
		select {
		case authChanged <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	var sub *client.Subscription
	stop := func() {
		if sub != nil {
			sub.Unsubscribe()
			sub = nil
		}
	}
	defer stop()

	subscribe := func() {
		stop()
		u := l.backend.Identity.CurrentUser()
		if u == nil {
			return
		}
		s, err := l.backend.Feed.Subscribe(ctx, l.table, u.ID, l.Notify)
		if err != nil {
			l.logger.Warn(ctx, "subscribe failed", "error", err)
			return
		}
		sub = s
	}

	subscribe()
	l.Notify()

	for {
		select {
		case <-ctx.Done():
			return
		case <-authChanged:
			subscribe()
			l.Notify()
		case <-l.signal:
			if err := l.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Warn(ctx, "fetch failed", "error", err)
			}
		}
	}
}

// Add shows rec right away and stores row remotely. On success the
// optimistic record is swapped for the stored one; on failure it is
// dropped and the error returned.
func (l *ListController[T]) Add(ctx context.Context, rec T, row records.Row) (T, error) {
	l.rec.InsertOptimistic(rec)
	return l.commit(ctx, rec.RecordID(), row)
}

// Update shows rec in place of the confirmed record replacedID until the
// remote write settles. A failed write brings the original back.
func (l *ListController[T]) Update(ctx context.Context, rec T, replacedID string, row records.Row) (T, error) {
	l.rec.InsertOptimisticReplacing(rec, replacedID)
	return l.commit(ctx, rec.RecordID(), row)
}

func (l *ListController[T]) commit(ctx context.Context, tempID string, row records.Row) (T, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	stored, err := l.backend.Store.Upsert(ctx, l.table, row)
	if err != nil {
		l.rec.Revert(tempID)
		var zero T
		return zero, err
	}

	canonical := l.normalize(stored)
	l.rec.Confirm(tempID, canonical)
	return canonical, nil
}

// Delete hides the record id and deletes it remotely, restoring it when
// the remote delete fails. A record already gone remotely stays hidden.
func (l *ListController[T]) Delete(ctx context.Context, id string) error {
	if records.IsTempID(id) {
		return ErrPending
	}
	removed, ok := l.rec.Remove(id)
	if !ok {
		return client.ErrNotFound
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	err := l.backend.Store.Delete(ctx, l.table, id)
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		l.rec.Restore(removed)
		return err
	}
	return nil
}
