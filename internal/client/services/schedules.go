package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/client"
	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/logging"
	"github.com/dmitrijs2005/securepay/internal/reconcile"
	"github.com/dmitrijs2005/securepay/internal/records"
)

// ScheduleService is the live scheduled payments list.
type ScheduleService struct {
	*ListController[records.ScheduledPayment]
	identity client.IdentityProvider
}

func NewScheduleService(backend client.Backend, logger logging.Logger, timeout time.Duration, opts ...reconcile.Option[records.ScheduledPayment]) *ScheduleService {
	return &ScheduleService{
		ListController: NewListController(backend, common.TableScheduledPayments,
			records.NormalizeScheduledPayment, records.NextRunFirst, logger, timeout, opts...),
		identity: backend.Identity,
	}
}

func (s *ScheduleService) Create(ctx context.Context, in records.ScheduleInput) (records.ScheduledPayment, error) {
	u := s.identity.CurrentUser()
	if u == nil {
		return records.ScheduledPayment{}, ErrSignedOut
	}
	sp, err := in.Validate(u.ID, nil, now())
	if err != nil {
		return records.ScheduledPayment{}, err
	}
	return s.Add(ctx, sp, sp.Row())
}

// Edit replaces the confirmed scheduled payment id with in. The edit is
// shown in its place until the remote update settles.
func (s *ScheduleService) Edit(ctx context.Context, id string, in records.ScheduleInput) (records.ScheduledPayment, error) {
	u := s.identity.CurrentUser()
	if u == nil {
		return records.ScheduledPayment{}, ErrSignedOut
	}
	editing, ok := s.Get(id)
	if !ok {
		return records.ScheduledPayment{}, client.ErrNotFound
	}
	if editing.IsOptimistic {
		return records.ScheduledPayment{}, ErrPending
	}

	sp, err := in.Validate(u.ID, &editing, now())
	if err != nil {
		return records.ScheduledPayment{}, err
	}
	row := sp.Row()
	row["id"] = editing.ID
	return s.Update(ctx, sp, editing.ID, row)
}
