package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/repositories/goals"
	"github.com/dmitrijs2005/securepay/internal/common"
	budget "github.com/dmitrijs2005/securepay/internal/goals"
	"github.com/dmitrijs2005/securepay/internal/money"
)

// GoalInput is what a user types into the goal calculator.
type GoalInput struct {
	Name      string
	Target    string
	Saved     string
	Duration  int
	Unit      string
	StartDate string
	Note      string
}

// Goal parses in into a validated goal.
func (in GoalInput) Goal() (budget.Goal, error) {
	target, err := money.Parse(in.Target)
	if err != nil {
		return budget.Goal{}, fmt.Errorf("%w: enter a positive target amount", common.ErrValidation)
	}
	var saved money.Amount
	if strings.TrimSpace(in.Saved) != "" {
		if saved, err = money.Parse(in.Saved); err != nil {
			return budget.Goal{}, fmt.Errorf("%w: enter a valid saved amount", common.ErrValidation)
		}
	}

	g := budget.Goal{
		Name:     strings.TrimSpace(in.Name),
		Target:   target,
		Saved:    saved,
		Duration: in.Duration,
		Unit:     budget.ParseUnit(in.Unit),
		Note:     strings.TrimSpace(in.Note),
	}
	if s := strings.TrimSpace(in.StartDate); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return budget.Goal{}, fmt.Errorf("%w: start date must look like 2006-01-02", common.ErrValidation)
		}
		g.StartDate = &d
	}
	if err := g.Validate(); err != nil {
		return budget.Goal{}, err
	}
	return g, nil
}

// GoalService stores budget goals locally.
type GoalService struct {
	repo goals.Repository
}

func NewGoalService(repo goals.Repository) *GoalService {
	return &GoalService{repo: repo}
}

// Preview runs the calculator without saving anything.
func (s *GoalService) Preview(in GoalInput) (budget.Plan, error) {
	g, err := in.Goal()
	if err != nil {
		return budget.Plan{}, err
	}
	return g.Plan(), nil
}

func (s *GoalService) Save(ctx context.Context, in GoalInput) (budget.Goal, error) {
	g, err := in.Goal()
	if err != nil {
		return budget.Goal{}, err
	}
	g.CreatedAt = now()
	return s.repo.Create(ctx, g)
}

func (s *GoalService) List(ctx context.Context) ([]budget.Goal, error) {
	return s.repo.List(ctx)
}

func (s *GoalService) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
