// Package metadata stores small client-side settings, such as the persisted
// session, in the local SQLite database.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeySession  = "session"
	KeyLastSeen = "last_seen_online"
)

type Repository interface {
	// Get returns common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any) error
	Clear(ctx context.Context) error
}
