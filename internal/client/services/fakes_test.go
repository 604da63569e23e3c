package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/records"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	orig := now
	t.Cleanup(func() { now = orig })
	now = func() time.Time { return fixedNow }
}

// fakeStore is an in-memory RemoteStore. Upserts assign ids c1, c2, ...
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string][]records.Row
	nextID    int
	queryErr  error
	upsertErr error
	deleteErr error
	upserts   []records.Row
	queries   int

	// gate, when set, blocks Query until a value is received.
	gate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string][]records.Row)}
}

func (f *fakeStore) put(table string, rows ...records.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[table] = append(f.rows[table], rows...)
}

func (f *fakeStore) Query(ctx context.Context, table, ownerID string) ([]records.Row, error) {
	f.mu.Lock()
	gate := f.gate
	f.queries++
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := []records.Row{}
	for _, r := range f.rows[table] {
		if r["user_id"] == ownerID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (f *fakeStore) Upsert(_ context.Context, table string, row records.Row) (records.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, row.Clone())
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	stored := row.Clone()
	if _, ok := stored["id"]; !ok {
		f.nextID++
		stored["id"] = fmt.Sprintf("c%d", f.nextID)
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = fixedNow.Format(time.RFC3339)
	}
	list := f.rows[table]
	for i, r := range list {
		if r["id"] == stored["id"] {
			list[i] = stored
			return stored.Clone(), nil
		}
	}
	f.rows[table] = append(list, stored)
	return stored.Clone(), nil
}

func (f *fakeStore) Delete(_ context.Context, table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	list := f.rows[table]
	for i, r := range list {
		if r["id"] == id {
			f.rows[table] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

// fakeFeed hands out subscriptions whose onChange can be fired by tests.
type fakeFeed struct {
	mu        sync.Mutex
	err       error
	listeners map[string]func()
	subs      int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{listeners: make(map[string]func())}
}

func (f *fakeFeed) Subscribe(ctx context.Context, table, ownerID string, onChange func()) (*client.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subs++
	key := table + "/" + ownerID
	f.listeners[key] = onChange
	return client.NewSubscription(ctx, func(ctx context.Context) {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.listeners, key)
		f.mu.Unlock()
	}), nil
}

func (f *fakeFeed) fire(table, ownerID string) bool {
	f.mu.Lock()
	fn := f.listeners[table+"/"+ownerID]
	f.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

func (f *fakeFeed) active(table, ownerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.listeners[table+"/"+ownerID]
	return ok
}

func newBackend(store *fakeStore, feed *fakeFeed, user *client.User) (client.Backend, *client.Identity) {
	id := client.NewIdentity()
	id.Set(user)
	return client.Backend{Store: store, Feed: feed, Identity: id}, id
}

var alice = &client.User{ID: "u1", Email: "alice@example.com"}

func openLocalDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "securepay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
