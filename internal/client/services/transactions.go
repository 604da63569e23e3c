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

// now is a seam for tests.
var now = time.Now

// TransactionService is the live transactions list.
type TransactionService struct {
	*ListController[records.Transaction]
	identity client.IdentityProvider
}

func NewTransactionService(backend client.Backend, logger logging.Logger, timeout time.Duration, opts ...reconcile.Option[records.Transaction]) *TransactionService {
	return &TransactionService{
		ListController: NewListController(backend, common.TableTransactions,
			records.NormalizeTransaction, records.NewestFirst, logger, timeout, opts...),
		identity: backend.Identity,
	}
}

// Add validates in and saves it as a new transaction of the signed-in user.
// Nothing changes when validation fails.
func (s *TransactionService) Add(ctx context.Context, in records.TransactionInput) (records.Transaction, error) {
	u := s.identity.CurrentUser()
	if u == nil {
		return records.Transaction{}, ErrSignedOut
	}
	tx, err := in.Validate(u.ID, now())
	if err != nil {
		return records.Transaction{}, err
	}
	return s.ListController.Add(ctx, tx, tx.Row())
}

// Insights summarizes the visible transactions, pending ones included.
func (s *TransactionService) Insights() records.Insights {
	return records.ComputeInsights(s.Snapshot(), now())
}
