package records

import (
	"time"

	"github.com/dmitrijs2005/securepay/internal/money"
)

const insightsWindow = 7 * 24 * time.Hour

// Insights are aggregates over the visible transactions, optimistic rows
// included.
type Insights struct {
	Balance   money.Amount
	Last7Days money.Amount
	AvgPerDay money.Amount
	Count     int
}

// ComputeInsights sums income minus expenses for the balance, and the
// volume of transactions created within seven days of now (expenses counted
// by absolute value).
func ComputeInsights(txs []Transaction, now time.Time) Insights {
	var in Insights
	for _, t := range txs {
		in.Count++
		in.Balance += t.Signed()

		if t.CreatedAt.IsZero() {
			continue
		}
		if now.Sub(t.CreatedAt) > insightsWindow {
			continue
		}
		if t.Type == Income {
			in.Last7Days += t.Amount
		} else {
			in.Last7Days += t.Amount.Abs()
		}
	}
	in.AvgPerDay = money.FromFloat(in.Last7Days.Float() / 7)
	return in
}
