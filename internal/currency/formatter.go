package currency

import (
	"math"
	"strings"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders an amount in minor units for display.
type Formatter interface {
	Format(amountCents int64, currencyCode string) string
}

// TextFormatter formats amounts with golang.org/x/text using a fixed tag.
type TextFormatter struct {
	tag language.Tag
}

// NewFormatter returns the default English formatter.
func NewFormatter() Formatter {
	return TextFormatter{tag: language.English}
}

// Format renders amountCents with the currency symbol and its standard
// minor-unit scale. Unknown codes fall back to the number followed by the code.
func (f TextFormatter) Format(amountCents int64, currencyCode string) string {
	printer := message.NewPrinter(f.tag)
	code := strings.ToUpper(strings.TrimSpace(currencyCode))

	unit, err := xcurrency.ParseISO(code)
	if err != nil {
		return strings.TrimSpace(printer.Sprintf("%.2f %s", float64(amountCents)/100, code))
	}

	scale, _ := xcurrency.Standard.Rounding(unit)
	sign := ""
	if amountCents < 0 {
		sign = "-"
		amountCents = -amountCents
	}
	value := float64(amountCents) / math.Pow10(scale)
	symbol := printer.Sprint(xcurrency.Symbol(unit))
	return sign + symbol + printer.Sprint(number.Decimal(value, number.Scale(scale)))
}
