package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/securepay/internal/client/services"
	"github.com/dmitrijs2005/securepay/internal/goals"
)

func (a *App) readGoal(withName bool) (services.GoalInput, error) {
	var in services.GoalInput
	var err error

	if withName {
		if in.Name, err = getSimpleText(a.reader, "Goal name", a.out); err != nil {
			return in, err
		}
	} else {
		in.Name = "calculator"
	}
	if in.Target, err = getSimpleText(a.reader, "Target amount", a.out); err != nil {
		return in, err
	}
	if in.Saved, err = getSimpleText(a.reader, "Already saved [0]", a.out); err != nil {
		return in, err
	}
	if in.Duration, err = getInt(a.reader, "Duration", 0, a.out); err != nil {
		return in, err
	}
	if in.Unit, err = getSimpleText(a.reader, "Unit (weeks/months) [months]", a.out); err != nil {
		return in, err
	}
	if withName {
		if in.StartDate, err = getSimpleText(a.reader, "Start date YYYY-MM-DD (optional)", a.out); err != nil {
			return in, err
		}
		if in.Note, err = getSimpleText(a.reader, "Note (optional)", a.out); err != nil {
			return in, err
		}
	}
	return in, nil
}

func (a *App) printPlan(p goals.Plan, unit goals.Unit) {
	fmt.Fprintf(a.out, "Remaining:  %s\n", a.format.Format(p.Remaining, ""))
	fmt.Fprintf(a.out, "Per %-6s  %s\n", unit.Singular()+":", a.format.Format(p.PerPeriod, ""))
	if unit == goals.Weeks {
		fmt.Fprintf(a.out, "Per month:  ~%s\n", a.format.Format(p.PerMonth, ""))
	} else {
		fmt.Fprintf(a.out, "Per week:   ~%s\n", a.format.Format(p.PerWeek, ""))
	}
	fmt.Fprintf(a.out, "Progress:   %d%%\n", p.Percent)
}

// Calculate runs the goal calculator without saving.
func (a *App) Calculate(ctx context.Context) error {
	in, err := a.readGoal(false)
	if err != nil {
		return err
	}
	p, err := a.goals.Preview(in)
	if err != nil {
		return err
	}
	a.printPlan(p, goals.ParseUnit(in.Unit))
	return nil
}

func (a *App) AddGoal(ctx context.Context) error {
	in, err := a.readGoal(true)
	if err != nil {
		return err
	}
	g, err := a.goals.Save(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved goal %s\n", g.ID)
	a.printPlan(g.Plan(), g.Unit)
	return nil
}

func (a *App) ListGoals(ctx context.Context) error {
	list, err := a.goals.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No goals yet")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTARGET\tSAVED\tPLAN\tPROGRESS\tSTART\t")
	for _, g := range list {
		p := g.Plan()
		start := "-"
		if g.StartDate != nil {
			start = g.StartDate.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s/%s x %d\t%d%%\t%s\t\n",
			g.ID, g.Name, a.format.Format(g.Target, ""), a.format.Format(g.Saved, ""),
			a.format.Format(p.PerPeriod, ""), g.Unit.Singular(), g.Duration, p.Percent, start)
	}
	return w.Flush()
}

func (a *App) DeleteGoal(ctx context.Context, id string) error {
	if err := a.goals.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}
