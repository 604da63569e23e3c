package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/securepay/internal/records"
)

const timeLayout = "2006-01-02 15:04"

func pendingMark(optimistic bool) string {
	if optimistic {
		return "*"
	}
	return ""
}

func (a *App) listErr(err error) {
	if err != nil {
		fmt.Fprintf(a.out, "(could not refresh: %v)\n", err)
	}
}

func (a *App) ListTransactions(ctx context.Context) error {
	list := a.txs.Snapshot()
	a.listErr(a.txs.Err())
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No transactions yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tMERCHANT\tCATEGORY\tAMOUNT\t")
	for _, t := range list {
		amount := a.format.Format(t.Amount, t.Currency)
		if t.Type == records.Expense {
			amount = "-" + amount
		} else {
			amount = "+" + amount
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s %s\t%s\t%s\t\n",
			t.ID, pendingMark(t.IsOptimistic), t.CreatedAt.Local().Format(timeLayout),
			t.Icon, t.Merchant, t.Category, amount)
	}
	return w.Flush()
}

func (a *App) AddTransaction(ctx context.Context) error {
	var in records.TransactionInput
	var err error

	if in.Merchant, err = getSimpleText(a.reader, "Merchant", a.out); err != nil {
		return err
	}
	if in.Amount, err = getSimpleText(a.reader, "Amount", a.out); err != nil {
		return err
	}
	typ, err := getSimpleText(a.reader, "Type (income/expense) [expense]", a.out)
	if err != nil {
		return err
	}
	in.Type = records.TransactionType(strings.ToLower(typ))
	if in.Category, err = getSimpleText(a.reader, "Category (optional)", a.out); err != nil {
		return err
	}
	if in.Note, err = getSimpleText(a.reader, "Note (optional)", a.out); err != nil {
		return err
	}

	t, err := a.txs.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%s)\n", t.ID, a.format.Format(t.Amount, t.Currency))
	return nil
}

func (a *App) DeleteTransaction(ctx context.Context, id string) error {
	if err := a.txs.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

func (a *App) Insights(ctx context.Context) error {
	in := a.txs.Insights()
	fmt.Fprintf(a.out, "Balance:      %s\n", a.format.Format(in.Balance, ""))
	fmt.Fprintf(a.out, "Last 7 days:  %s\n", a.format.Format(in.Last7Days, ""))
	fmt.Fprintf(a.out, "Avg per day:  %s\n", a.format.Format(in.AvgPerDay, ""))
	fmt.Fprintf(a.out, "Transactions: %d (as of %s)\n", in.Count, time.Now().Format(timeLayout))
	return nil
}
