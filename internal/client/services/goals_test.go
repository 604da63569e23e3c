package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securepay/internal/client/repositories/goals"
	"github.com/dmitrijs2005/securepay/internal/common"
	budget "github.com/dmitrijs2005/securepay/internal/goals"
	"github.com/dmitrijs2005/securepay/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalInput_Goal(t *testing.T) {
	tests := []struct {
		name    string
		in      GoalInput
		wantErr bool
	}{
		{"valid", GoalInput{Name: "Bike", Target: "1500", Saved: "300", Duration: 3, Unit: "months"}, false},
		{"saved optional", GoalInput{Name: "Bike", Target: "1500", Duration: 3}, false},
		{"start date", GoalInput{Name: "Bike", Target: "1500", Duration: 3, StartDate: "2026-06-01"}, false},
		{"missing name", GoalInput{Target: "1500", Duration: 3}, true},
		{"bad target", GoalInput{Name: "Bike", Target: "lots", Duration: 3}, true},
		{"zero target", GoalInput{Name: "Bike", Target: "0", Duration: 3}, true},
		{"bad saved", GoalInput{Name: "Bike", Target: "10", Saved: "x", Duration: 3}, true},
		{"zero duration", GoalInput{Name: "Bike", Target: "10"}, true},
		{"bad date", GoalInput{Name: "Bike", Target: "10", Duration: 1, StartDate: "june"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Goal()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGoalService_Preview(t *testing.T) {
	svc := NewGoalService(nil)

	plan, err := svc.Preview(GoalInput{Name: "Bike", Target: "1500", Saved: "300", Duration: 3, Unit: "months"})
	require.NoError(t, err)
	assert.Equal(t, "400.00", plan.PerPeriod.String())
	assert.Equal(t, 20, plan.Percent)
}

func TestGoalService_SaveListRemove(t *testing.T) {
	freezeTime(t)
	svc := NewGoalService(goals.NewSQLiteRepository(openLocalDB(t)))
	ctx := context.Background()

	g, err := svc.Save(ctx, GoalInput{Name: "Trip", Target: "520", Duration: 8, Unit: "weeks"})
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, budget.Weeks, list[0].Unit)
	assert.Equal(t, money.Amount(52000), list[0].Target)
	assert.Equal(t, "65.00", list[0].Plan().PerWeek.String())

	require.NoError(t, svc.Remove(ctx, g.ID))
	assert.ErrorIs(t, svc.Remove(ctx, g.ID), common.ErrorNotFound)

	_, err = svc.Save(ctx, GoalInput{Name: "", Target: "1", Duration: 1})
	assert.ErrorIs(t, err, common.ErrValidation)
}
