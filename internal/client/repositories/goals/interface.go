package goals

import (
	"context"

	"github.com/dmitrijs2005/securepay/internal/goals"
)

type Repository interface {
	// Create stores g under a fresh id and returns the stored goal.
	Create(ctx context.Context, g goals.Goal) (goals.Goal, error)
	List(ctx context.Context) ([]goals.Goal, error)
	// Delete returns common.ErrorNotFound when no goal has the id.
	Delete(ctx context.Context, id string) error
}
