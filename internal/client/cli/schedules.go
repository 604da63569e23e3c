package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/records"
)

func (a *App) ListSchedules(ctx context.Context) error {
	list := a.schedules.Snapshot()
	a.listErr(a.schedules.Err())
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No scheduled payments yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAYEE\tAMOUNT\tSCHEDULE\tNEXT RUN\tACTIVE\t")
	for _, s := range list {
		next := "-"
		if s.NextRun != nil {
			next = s.NextRun.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s%s\t%s %s\t%s\t%s\t%s\t%t\t\n",
			s.ID, pendingMark(s.IsOptimistic), s.Icon, s.Payee,
			a.format.Format(s.Amount, s.Currency), s.Summary(), next, s.Active)
	}
	return w.Flush()
}

// readSchedule prompts for a scheduled payment. Defaults come from prev when
// editing.
func (a *App) readSchedule(prev *records.ScheduledPayment) (records.ScheduleInput, error) {
	var in records.ScheduleInput
	hint := func(label, def string) string {
		if def == "" {
			return label
		}
		return fmt.Sprintf("%s [%s]", label, def)
	}
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	var def records.ScheduledPayment
	if prev != nil {
		def = *prev
	}
	defAmount := ""
	if prev != nil {
		defAmount = def.Amount.String()
	}

	payee, err := getSimpleText(a.reader, hint("Payee", def.Payee), a.out)
	if err != nil {
		return in, err
	}
	in.Payee = orDefault(payee, def.Payee)

	amount, err := getSimpleText(a.reader, hint("Amount", defAmount), a.out)
	if err != nil {
		return in, err
	}
	in.Amount = orDefault(amount, defAmount)

	currency, err := getSimpleText(a.reader, hint("Currency", orDefault(def.Currency, "INR")), a.out)
	if err != nil {
		return in, err
	}
	in.Currency = orDefault(currency, def.Currency)

	st, err := getSimpleText(a.reader, hint("Schedule (daily/weekly/monthly/custom)", orDefault(string(def.ScheduleType), "monthly")), a.out)
	if err != nil {
		return in, err
	}
	in.ScheduleType = strings.ToLower(orDefault(st, string(def.ScheduleType)))

	if in.IntervalValue, err = getInt(a.reader, hint("Interval (day of month, weekday or days)", intHint(def.IntervalValue)), def.IntervalValue, a.out); err != nil {
		return in, err
	}

	next, err := getSimpleText(a.reader, "Next run YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return in, err
	}
	if next != "" {
		d, err := time.ParseInLocation(time.DateOnly, next, time.Local)
		if err != nil {
			return in, fmt.Errorf("%w: next run must look like 2006-01-02", common.ErrValidation)
		}
		in.NextRun = &d
	}

	category, err := getSimpleText(a.reader, hint("Category", def.Category), a.out)
	if err != nil {
		return in, err
	}
	in.Category = orDefault(category, def.Category)

	note, err := getSimpleText(a.reader, hint("Note", def.Note), a.out)
	if err != nil {
		return in, err
	}
	in.Note = orDefault(note, def.Note)
	return in, nil
}

func intHint(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprint(n)
}

func (a *App) AddSchedule(ctx context.Context) error {
	in, err := a.readSchedule(nil)
	if err != nil {
		return err
	}
	s, err := a.schedules.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Scheduled %s: %s\n", s.ID, s.Summary())
	return nil
}

func (a *App) EditSchedule(ctx context.Context, id string) error {
	prev, ok := a.schedules.Get(id)
	if !ok {
		return fmt.Errorf("no scheduled payment %s", id)
	}
	in, err := a.readSchedule(&prev)
	if err != nil {
		return err
	}
	s, err := a.schedules.Edit(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s: %s\n", s.ID, s.Summary())
	return nil
}

func (a *App) DeleteSchedule(ctx context.Context, id string) error {
	if err := a.schedules.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
