// Package goals implements the savings goal calculator.
package goals

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/securepay/internal/common"
	"github.com/dmitrijs2005/securepay/internal/money"
)

type Unit string

const (
	Weeks  Unit = "weeks"
	Months Unit = "months"
)

const (
	weeksPerYear  = 52
	monthsPerYear = 12
)

// ParseUnit accepts "weeks"/"months" and their singular forms. Anything else
// is months.
func ParseUnit(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weeks", "w":
		return Weeks
	}
	return Months
}

// Singular returns "week" or "month".
func (u Unit) Singular() string {
	if u == Weeks {
		return "week"
	}
	return "month"
}

// Input are the calculator parameters.
type Input struct {
	Target   money.Amount
	Saved    money.Amount
	Duration int
	Unit     Unit
}

// Plan is the calculator result. PerMonth is set for weekly plans and PerWeek
// for monthly ones, both approximated with 52/12 weeks per month.
type Plan struct {
	Remaining money.Amount
	PerPeriod money.Amount
	PerWeek   money.Amount
	PerMonth  money.Amount
	Percent   int
}

// Calculate splits what remains to be saved over the duration. Durations
// below one count as one.
func Calculate(in Input) Plan {
	duration := int64(max(1, in.Duration))
	remaining := max(0, in.Target-in.Saved)

	p := Plan{
		Remaining: remaining,
		PerPeriod: remaining.MulDiv(1, duration),
		Percent:   Percent(in.Saved, in.Target),
	}
	if in.Unit == Weeks {
		p.PerWeek = p.PerPeriod
		p.PerMonth = remaining.MulDiv(weeksPerYear, monthsPerYear*duration)
	} else {
		p.PerMonth = p.PerPeriod
		p.PerWeek = remaining.MulDiv(monthsPerYear, weeksPerYear*duration)
	}
	return p
}

// Percent returns round(min(100, saved/target*100)), or 0 for a
// non-positive target.
func Percent(saved, target money.Amount) int {
	if target <= 0 || saved <= 0 {
		return 0
	}
	pct := math.Round(float64(saved) / float64(target) * 100)
	return int(min(100, pct))
}

// Goal is a saved savings goal.
type Goal struct {
	ID        string
	Name      string
	Target    money.Amount
	Saved     money.Amount
	Duration  int
	Unit      Unit
	StartDate *time.Time
	Note      string
	CreatedAt time.Time
}

// Plan runs the calculator for g.
func (g Goal) Plan() Plan {
	return Calculate(Input{Target: g.Target, Saved: g.Saved, Duration: g.Duration, Unit: g.Unit})
}

// Validate checks the fields a user must provide.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: please give the goal a name", common.ErrValidation)
	}
	if g.Target <= 0 {
		return fmt.Errorf("%w: enter a positive target amount", common.ErrValidation)
	}
	if g.Duration < 1 {
		return fmt.Errorf("%w: enter a duration (>=1)", common.ErrValidation)
	}
	if g.Saved < 0 {
		return fmt.Errorf("%w: saved amount must not be negative", common.ErrValidation)
	}
	return nil
}
