package rows

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Query(ctx context.Context, t Table, ownerID string) ([]map[string]any, error) {
	query := fmt.Sprintf(
		`SELECT row_to_json(t)::text FROM %s AS t WHERE t.user_id = $1::uuid ORDER BY %s`,
		t.Name, t.OrderBy)

	rs, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rs.Close()

	out := make([]map[string]any, 0)
	for rs.Next() {
		var raw string
		if err := rs.Scan(&raw); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		row, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// Upsert inserts row, or updates it when it carries the id of an existing
// row of the same owner. Rows of other owners are reported as not found.
func (r *PostgresRepository) Upsert(ctx context.Context, t Table, ownerID string, row map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	cols := []string{"user_id"}
	exprs := []string{"$1::uuid"}
	if t.IDIsOwner {
		cols = append(cols, "id")
		exprs = append(exprs, "$1::uuid")
	} else if id, ok := row["id"].(string); ok && id != "" {
		cols = append(cols, "id")
		exprs = append(exprs, "r.id")
	}

	sets := []string{"user_id = EXCLUDED.user_id"}
	for _, c := range t.Columns {
		if _, ok := row[c]; !ok {
			continue
		}
		cols = append(cols, c)
		exprs = append(exprs, "r."+c)
		sets = append(sets, c+" = EXCLUDED."+c)
	}

	query := fmt.Sprintf(
		`INSERT INTO %[1]s AS t (%[2]s)
		 SELECT %[3]s FROM json_populate_record(NULL::%[1]s, $2::json) AS r
		 ON CONFLICT (id) DO UPDATE SET %[4]s
		 WHERE t.user_id = EXCLUDED.user_id
		 RETURNING row_to_json(t)::text`,
		t.Name, strings.Join(cols, ", "), strings.Join(exprs, ", "), strings.Join(sets, ", "))

	var raw string
	if err := r.db.QueryRowContext(ctx, query, ownerID, string(payload)).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapError(err)
	}
	return decode(raw)
}

func (r *PostgresRepository) Delete(ctx context.Context, t Table, ownerID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1::uuid AND user_id = $2::uuid`, t.Name)

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return mapError(err)
	}
	return dbx.ExpectOneRow(res)
}

func decode(raw string) (map[string]any, error) {
	var row map[string]any
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}

// mapError turns input-related PostgreSQL errors into validation errors.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02", "22007", "22008", "22003", "23502", "23514":
			return fmt.Errorf("%w: %s", common.ErrValidation, pgErr.Message)
		case "23505":
			return common.ErrAlreadyExists
		}
	}
	return fmt.Errorf("db error: %w", err)
}
