package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SetAvatarKey(ctx context.Context, userID, key string) error {
	query :=
		`INSERT INTO profiles (id, user_id, avatar_key)
		 VALUES ($1::uuid, $1::uuid, $2)
		 ON CONFLICT (id) DO UPDATE SET avatar_key = EXCLUDED.avatar_key, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, userID, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AvatarKey(ctx context.Context, userID string) (string, error) {
	query := `SELECT avatar_key FROM profiles WHERE id = $1::uuid`

	var key sql.NullString
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	if !key.Valid || key.String == "" {
		return "", common.ErrorNotFound
	}
	return key.String, nil
}
