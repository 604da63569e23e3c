package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/money"
)

// TransactionInput is what a user types to add a transaction.
type TransactionInput struct {
	Merchant string
	Category string
	Amount   string
	Note     string
	Type     TransactionType
}

// Validate checks the input and returns the optimistic record to show. No
// state is touched when it fails.
func (in TransactionInput) Validate(userID string, now time.Time) (Transaction, error) {
	merchant := strings.TrimSpace(in.Merchant)
	if merchant == "" {
		return Transaction{}, fmt.Errorf("%w: please enter the merchant name", common.ErrValidation)
	}
	amount, err := money.Parse(in.Amount)
	if err != nil || amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: please enter a valid amount", common.ErrValidation)
	}

	typ := Expense
	if in.Type == Income {
		typ = Income
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultTransactionCategory
	}

	return Transaction{
		ID:        NewTempID(),
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Currency:  money.DefaultCurrency,
		Category:  category,
		Merchant:  merchant,
		Note:      strings.TrimSpace(in.Note),
		Icon:      DefaultTransactionIcon,
		CreatedAt: now,
	}, nil
}

// ScheduleInput is what a user types to create or edit a scheduled payment.
type ScheduleInput struct {
	Payee         string
	Category      string
	Amount        string
	Currency      string
	ScheduleType  string
	IntervalValue int
	NextRun       *time.Time
	Note          string
}

// Validate checks the input and returns the optimistic record to show.
// editing, when non-nil, is the confirmed record being edited; its creation
// time, active flag and next run carry over.
func (in ScheduleInput) Validate(userID string, editing *ScheduledPayment, now time.Time) (ScheduledPayment, error) {
	payee := strings.TrimSpace(in.Payee)
	if payee == "" {
		return ScheduledPayment{}, fmt.Errorf("%w: please enter the payee", common.ErrValidation)
	}
	amount, err := money.Parse(in.Amount)
	if err != nil || amount <= 0 {
		return ScheduledPayment{}, fmt.Errorf("%w: please enter a valid amount", common.ErrValidation)
	}

	st := Monthly
	if strings.TrimSpace(in.ScheduleType) != "" {
		var ok bool
		if st, ok = ParseScheduleType(strings.TrimSpace(in.ScheduleType)); !ok {
			return ScheduledPayment{}, fmt.Errorf("%w: unknown schedule type %q", common.ErrValidation, in.ScheduleType)
		}
	}
	if in.IntervalValue < 0 {
		return ScheduledPayment{}, fmt.Errorf("%w: interval must not be negative", common.ErrValidation)
	}
	if st == Custom && in.IntervalValue < 1 {
		return ScheduledPayment{}, fmt.Errorf("%w: custom schedules need an interval in days", common.ErrValidation)
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = money.DefaultCurrency
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultScheduleCategory
	}

	s := ScheduledPayment{
		ID:            NewTempID(),
		UserID:        userID,
		Payee:         payee,
		Category:      category,
		Amount:        amount,
		Currency:      currency,
		ScheduleType:  st,
		IntervalValue: in.IntervalValue,
		NextRun:       in.NextRun,
		Active:        true,
		Note:          strings.TrimSpace(in.Note),
		Icon:          DefaultScheduleIcon,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if editing != nil {
		s.CreatedAt = editing.CreatedAt
		s.Active = editing.Active
		if s.NextRun == nil {
			s.NextRun = editing.NextRun
		}
	}
	return s, nil
}
