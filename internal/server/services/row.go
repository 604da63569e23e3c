package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securepay/internal/server/repositories/rows"
)

// RowService serves the dashboard tables on behalf of an authenticated owner.
type RowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewRowService(db *sql.DB, m repomanager.RepositoryManager) *RowService {
	return &RowService{db: db, repomanager: m}
}

// Query lists every row of table owned by ownerID.
func (s *RowService) Query(ctx context.Context, table, ownerID string) ([]map[string]any, error) {
	t, err := rows.Lookup(table)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Rows(s.db).Query(ctx, t, ownerID)
}

// Upsert writes row and returns the stored version. The owner column is
// never taken from row.
func (s *RowService) Upsert(ctx context.Context, table, ownerID string, row map[string]any) (map[string]any, error) {
	t, err := rows.Lookup(table)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: empty row", common.ErrValidation)
	}
	if id, ok := row["id"].(string); ok && strings.HasPrefix(id, common.TempIDPrefix) {
		return nil, fmt.Errorf("%w: temporary id %q", common.ErrValidation, id)
	}
	return s.repomanager.Rows(s.db).Upsert(ctx, t, ownerID, row)
}

// Delete removes the row id of table owned by ownerID.
func (s *RowService) Delete(ctx context.Context, table, ownerID, id string) error {
	t, err := rows.Lookup(table)
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", common.ErrValidation)
	}
	return s.repomanager.Rows(s.db).Delete(ctx, t, ownerID, id)
}
