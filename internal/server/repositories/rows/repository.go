package rows

import "context"

// Repository reads and writes rows of a Table on behalf of an owner.
type Repository interface {
	Query(ctx context.Context, t Table, ownerID string) ([]map[string]any, error)
	Upsert(ctx context.Context, t Table, ownerID string, row map[string]any) (map[string]any, error)
	Delete(ctx context.Context, t Table, ownerID, id string) error
}
