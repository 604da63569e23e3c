// Package profiles manages the server-owned columns of the profiles table.
package profiles

import "context"

type Repository interface {
	// SetAvatarKey records the object key of the user's avatar, creating the
	// profile row if needed.
	SetAvatarKey(ctx context.Context, userID, key string) error
	// AvatarKey returns the stored key, or common.ErrorNotFound when the
	// user has no avatar.
	AvatarKey(ctx context.Context, userID string) (string, error)
}
