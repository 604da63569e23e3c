// Package money holds currency amounts as fixed-point cents.
//
// Amounts coming from the remote store arrive as JSON numbers, numeric
// strings or nothing at all. Every path goes through Parse, which rounds
// half-up to two fractional digits on the decimal text of the value, so
// 50.005 becomes 50.01 no matter how the float was stored.
package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Amount is a signed number of cents.
type Amount int64

var ErrInvalidAmount = errors.New("invalid amount")

var (
	decimalCtx = func() *apd.Context {
		c := apd.BaseContext.WithPrecision(34)
		c.Rounding = apd.RoundHalfUp
		return c
	}()
	hundred = apd.New(100, 0)
)

// Parse reads a decimal string ("12", "-3.5", "50.005") and rounds it to cents.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Form != apd.Finite {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	var scaled, cents apd.Decimal
	if _, err := decimalCtx.Mul(&scaled, d, hundred); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if _, err := decimalCtx.Quantize(&cents, &scaled, 0); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	v, err := cents.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return Amount(v), nil
}

// FromFloat rounds f to cents using its shortest decimal representation.
// NaN and infinities map to zero.
func FromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	a, err := Parse(strconv.FormatFloat(f, 'f', -1, 64))
	if err != nil {
		return 0
	}
	return a
}

// Coerce converts a loosely typed JSON-ish value to an Amount. It never
// fails: nil, booleans, unparsable strings and unknown types yield zero.
func Coerce(v any) Amount {
	switch x := v.(type) {
	case nil:
		return 0
	case Amount:
		return x
	case float64:
		return FromFloat(x)
	case float32:
		return FromFloat(float64(x))
	case int:
		return Amount(int64(x) * 100)
	case int32:
		return Amount(int64(x) * 100)
	case int64:
		return Amount(x * 100)
	case json.Number:
		a, _ := Parse(x.String())
		return a
	case string:
		a, _ := Parse(x)
		return a
	default:
		return 0
	}
}

// MulDiv returns a*num/den rounded half-up to the cent. A zero den yields
// zero.
func (a Amount) MulDiv(num, den int64) Amount {
	if den == 0 {
		return 0
	}
	var prod, quo, cents apd.Decimal
	if _, err := decimalCtx.Mul(&prod, apd.New(int64(a), 0), apd.New(num, 0)); err != nil {
		return 0
	}
	if _, err := decimalCtx.Quo(&quo, &prod, apd.New(den, 0)); err != nil {
		return 0
	}
	if _, err := decimalCtx.Quantize(&cents, &quo, 0); err != nil {
		return 0
	}
	v, err := cents.Int64()
	if err != nil {
		return 0
	}
	return Amount(v)
}

// Float returns the amount in currency units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	sign := ""
	c := int64(a)
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*a = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
