package goals

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/dbx"
	"github.com/dmitrijs2005/securepay/internal/goals"
	"github.com/dmitrijs2005/securepay/internal/money"
	"github.com/google/uuid"
)

// newID is a seam for tests.
var newID = func() string { return uuid.NewString() }

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, g goals.Goal) (goals.Goal, error) {
	g.ID = newID()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.CreatedAt = g.CreatedAt.UTC()

	var start sql.NullString
	if g.StartDate != nil {
		start = sql.NullString{String: g.StartDate.UTC().Format(time.RFC3339), Valid: true}
	}

	query := `INSERT INTO goals (id, name, target, saved, duration, unit, start_date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.Name, int64(g.Target), int64(g.Saved), g.Duration, string(g.Unit),
		start, g.Note, g.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return goals.Goal{}, fmt.Errorf("failed to insert goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]goals.Goal, error) {
	query := `SELECT id, name, target, saved, duration, unit, start_date, note, created_at
		FROM goals ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select goals: %w", err)
	}
	defer rows.Close()

	result := []goals.Goal{}
	for rows.Next() {
		var (
			g             goals.Goal
			target, saved int64
			unit, created string
			start         sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &saved, &g.Duration, &unit, &start, &g.Note, &created); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		g.Target = money.Amount(target)
		g.Saved = money.Amount(saved)
		g.Unit = goals.ParseUnit(unit)
		if start.Valid {
			if ts, err := time.Parse(time.RFC3339, start.String); err == nil {
				g.StartDate = &ts
			}
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			g.CreatedAt = ts
		}
		result = append(result, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
