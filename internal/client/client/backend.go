package client

import (
	"context"

	"github.com/dmitrijs2005/securepay/internal/records"
)

// User is the signed-in account.
type User struct {
	ID    string
	Email string
}

// RemoteStore reads and writes rows of the remote tables. Rows are scoped
// to ownerID; upserts are scoped to the signed-in user.
type RemoteStore interface {
	Query(ctx context.Context, table, ownerID string) ([]records.Row, error)
	// Upsert inserts row, or updates the row whose canonical id it carries,
	// and returns the stored row.
	Upsert(ctx context.Context, table string, row records.Row) (records.Row, error)
	Delete(ctx context.Context, table, id string) error
}

// ChangeFeed delivers "something changed" signals for a table and owner.
type ChangeFeed interface {
	// Subscribe calls onChange, from a single goroutine, for every change
	// notification until ctx ends or the subscription is cancelled.
	Subscribe(ctx context.Context, table, ownerID string, onChange func()) (*Subscription, error)
}

// IdentityProvider exposes the signed-in user.
type IdentityProvider interface {
	CurrentUser() *User
	// OnAuthStateChange registers fn for sign-in and sign-out events and
	// returns a func that unregisters it.
	OnAuthStateChange(fn func(*User)) (unsubscribe func())
}

// Backend bundles the remote contracts handed to the dashboard.
type Backend struct {
	Store    RemoteStore
	Feed     ChangeFeed
	Identity IdentityProvider
}

// Subscription is a running change subscription.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscription starts run on its own goroutine with a context that ends
// when parent does or Unsubscribe is called.
func NewSubscription(parent context.Context, run func(ctx context.Context)) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		run(ctx)
	}()
	return s
}

// Unsubscribe stops the subscription and waits for it to wind down. It is
// safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
