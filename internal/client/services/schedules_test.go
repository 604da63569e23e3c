package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleService(t *testing.T, store *fakeStore) *ScheduleService {
	t.Helper()
	backend, _ := newBackend(store, newFakeFeed(), alice)
	return NewScheduleService(backend, logging.NewNop(), time.Second)
}

func TestScheduleService_CreateAndEdit(t *testing.T) {
	freezeTime(t)
	store := newFakeStore()
	svc := newScheduleService(t, store)
	ctx := context.Background()

	created, err := svc.Create(ctx, records.ScheduleInput{Payee: "Landlord", Amount: "1200", ScheduleType: "monthly", IntervalValue: 5})
	require.NoError(t, err)
	assert.Equal(t, "c1", created.ID)
	assert.Equal(t, "Every month (day 5)", created.Summary())

	edited, err := svc.Edit(ctx, created.ID, records.ScheduleInput{Payee: "Landlord", Amount: "1300", ScheduleType: "custom", IntervalValue: 10})
	require.NoError(t, err)
	assert.Equal(t, created.ID, edited.ID)
	assert.Equal(t, "Every 10 days", edited.Summary())

	require.Len(t, store.upserts, 2)
	assert.Equal(t, "c1", store.upserts[1]["id"])

	list := svc.Snapshot()
	require.Len(t, list, 1)
	assert.Equal(t, "1300.00", list[0].Amount.String())
}

func TestScheduleService_EditFailureRestoresOriginal(t *testing.T) {
	store := newFakeStore()
	store.put(common.TableScheduledPayments, records.Row{
		"id": "s1", "user_id": "u1", "payee": "Gym", "amount": "30.00", "schedule_type": "monthly",
	})
	svc := newScheduleService(t, store)
	ctx := context.Background()
	require.NoError(t, svc.Load(ctx))
	before := svc.Snapshot()

	store.upsertErr = errBoom
	_, err := svc.Edit(ctx, "s1", records.ScheduleInput{Payee: "Gym", Amount: "35"})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, before, svc.Snapshot())
}

func TestScheduleService_EditErrors(t *testing.T) {
	store := newFakeStore()
	svc := newScheduleService(t, store)
	ctx := context.Background()

	_, err := svc.Edit(ctx, "missing", records.ScheduleInput{Payee: "x", Amount: "1"})
	assert.ErrorIs(t, err, client.ErrNotFound)

	sp, err := records.ScheduleInput{Payee: "x", Amount: "1"}.Validate("u1", nil, fixedNow)
	require.NoError(t, err)
	svc.rec.InsertOptimistic(sp)
	_, err = svc.Edit(ctx, sp.ID, records.ScheduleInput{Payee: "y", Amount: "2"})
	assert.ErrorIs(t, err, ErrPending)

	_, err = svc.Create(ctx, records.ScheduleInput{Payee: "x", Amount: "1", ScheduleType: "yearly"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, store.upserts)
}
