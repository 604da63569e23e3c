package money

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when a row carries no currency code.
const DefaultCurrency = "INR"

// Formatter renders amounts for people: grouped digits and the currency
// symbol of the configured locale.
type Formatter struct {
	printer *message.Printer
	tag     language.Tag
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), tag: tag}
}

// Format renders a with the narrow symbol of code, e.g. "₹ 12,543.50".
// Unknown codes fall back to the code itself.
func (f *Formatter) Format(a Amount, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return f.printer.Sprintf("%s %.2f", code, a.Float())
	}
	return f.printer.Sprintf("%v %.2f", currency.NarrowSymbol(unit), a.Float())
}
