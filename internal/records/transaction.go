package records

import (
	"time"

	"github.com/dmitrijs2005/securepay/internal/money"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	DefaultTransactionCategory = "Other"
	DefaultMerchant            = "General"
	DefaultTransactionIcon     = "💳"
)

// Transaction is a normalized row of the transactions table.
type Transaction struct {
	ID           string
	UserID       string
	Type         TransactionType
	Amount       money.Amount
	Currency     string
	Category     string
	Merchant     string
	Note         string
	Icon         string
	CreatedAt    time.Time
	IsOptimistic bool
}

func (t Transaction) RecordID() string { return t.ID }

func (t Transaction) WithOptimistic(b bool) Transaction {
	t.IsOptimistic = b
	return t
}

// NormalizeTransaction maps a remote row into a Transaction. Only "income"
// is an income; every other type (including the legacy "debit") is an
// expense.
func NormalizeTransaction(row Row) Transaction {
	t := Transaction{
		ID:       row.stringOr("id", ""),
		UserID:   row.stringOr("user_id", ""),
		Type:     Expense,
		Amount:   money.Coerce(row["amount"]),
		Currency: row.stringOr("currency", money.DefaultCurrency),
		Category: row.stringOr("category", DefaultTransactionCategory),
		Merchant: row.stringOr("merchant", DefaultMerchant),
		Note:     row.stringOr("note", row.stringOr("purpose", "")),
		Icon:     row.stringOr("icon", DefaultTransactionIcon),
	}
	if s, _ := row.String("type"); s == string(Income) {
		t.Type = Income
	}
	if ts, ok := row.Time("created_at"); ok {
		t.CreatedAt = ts
	} else if ts, ok := row.Time("date"); ok {
		t.CreatedAt = ts
	}
	return t
}

// Row builds the upsert payload. Temporary ids and server-managed columns
// are left out.
func (t Transaction) Row() Row {
	row := Row{
		"user_id":  t.UserID,
		"type":     string(t.Type),
		"amount":   t.Amount.String(),
		"currency": t.Currency,
		"category": t.Category,
		"merchant": t.Merchant,
		"icon":     t.Icon,
	}
	if t.Note != "" {
		row["note"] = t.Note
		row["purpose"] = t.Note
	}
	if t.ID != "" && !IsTempID(t.ID) {
		row["id"] = t.ID
	}
	return row
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() money.Amount {
	if t.Type == Income {
		return t.Amount
	}
	return -t.Amount.Abs()
}

// NewestFirst orders transactions by CreatedAt descending.
func NewestFirst(a, b Transaction) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}
