package records

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepay/internal/money"
)

type ScheduleType string

const (
	Daily   ScheduleType = "daily"
	Weekly  ScheduleType = "weekly"
	Monthly ScheduleType = "monthly"
	Custom  ScheduleType = "custom"
)

// ParseScheduleType returns the schedule type named by s and whether it is
// known.
func ParseScheduleType(s string) (ScheduleType, bool) {
	switch st := ScheduleType(s); st {
	case Daily, Weekly, Monthly, Custom:
		return st, true
	}
	return Monthly, false
}

const (
	DefaultScheduleCategory = "General"
	DefaultPayee            = "General"
	DefaultScheduleIcon     = "⏰"
)

// ScheduledPayment is a normalized row of the scheduled payments table.
// IntervalValue is 0 when unset; NextRun is nil when not yet planned.
type ScheduledPayment struct {
	ID            string
	UserID        string
	Payee         string
	Category      string
	Amount        money.Amount
	Currency      string
	ScheduleType  ScheduleType
	IntervalValue int
	NextRun       *time.Time
	Active        bool
	Note          string
	Icon          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	IsOptimistic  bool
}

func (s ScheduledPayment) RecordID() string { return s.ID }

func (s ScheduledPayment) WithOptimistic(b bool) ScheduledPayment {
	s.IsOptimistic = b
	return s
}

// NormalizeScheduledPayment maps a remote row into a ScheduledPayment.
func NormalizeScheduledPayment(row Row) ScheduledPayment {
	s := ScheduledPayment{
		ID:       row.stringOr("id", ""),
		UserID:   row.stringOr("user_id", ""),
		Payee:    row.stringOr("payee", DefaultPayee),
		Category: row.stringOr("category", DefaultScheduleCategory),
		Amount:   money.Coerce(row["amount"]),
		Currency: row.stringOr("currency", money.DefaultCurrency),
		Active:   true,
		Note:     row.stringOr("note", ""),
		Icon:     row.stringOr("icon", DefaultScheduleIcon),
	}

	st, _ := row.String("schedule_type")
	s.ScheduleType, _ = ParseScheduleType(st)

	if n, ok := row.Int("interval_value"); ok && n > 0 {
		s.IntervalValue = n
	}
	if b, ok := row.Bool("active"); ok {
		s.Active = b
	}
	if ts, ok := row.Time("next_run"); ok {
		s.NextRun = &ts
	}
	if ts, ok := row.Time("created_at"); ok {
		s.CreatedAt = ts
	}
	if ts, ok := row.Time("updated_at"); ok {
		s.UpdatedAt = ts
	}
	return s
}

// Row builds the upsert payload. A canonical id turns the upsert into an
// update of that record.
func (s ScheduledPayment) Row() Row {
	row := Row{
		"user_id":       s.UserID,
		"payee":         s.Payee,
		"category":      s.Category,
		"amount":        s.Amount.String(),
		"currency":      s.Currency,
		"schedule_type": string(s.ScheduleType),
		"active":        s.Active,
		"icon":          s.Icon,
		"updated_at":    s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if s.IntervalValue > 0 {
		row["interval_value"] = s.IntervalValue
	} else {
		row["interval_value"] = nil
	}
	if s.NextRun != nil {
		row["next_run"] = s.NextRun.UTC().Format(time.RFC3339Nano)
	} else {
		row["next_run"] = nil
	}
	if s.Note != "" {
		row["note"] = s.Note
	} else {
		row["note"] = nil
	}
	if s.ID != "" && !IsTempID(s.ID) {
		row["id"] = s.ID
	}
	return row
}

// Summary describes the recurrence, e.g. "Every month (day 5)".
func (s ScheduledPayment) Summary() string {
	iv := "-"
	if s.IntervalValue > 0 {
		iv = fmt.Sprint(s.IntervalValue)
	}
	switch s.ScheduleType {
	case Daily:
		return "Every day"
	case Weekly:
		return fmt.Sprintf("Every week (interval %s)", iv)
	case Monthly:
		return fmt.Sprintf("Every month (day %s)", iv)
	case Custom:
		return fmt.Sprintf("Every %s days", iv)
	}
	return string(s.ScheduleType)
}

// NextRunFirst orders scheduled payments by NextRun ascending; unplanned
// payments go last.
func NextRunFirst(a, b ScheduledPayment) int {
	switch {
	case a.NextRun == nil && b.NextRun == nil:
		return 0
	case a.NextRun == nil:
		return 1
	case b.NextRun == nil:
		return -1
	}
	return a.NextRun.Compare(*b.NextRun)
}
