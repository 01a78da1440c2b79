package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders prices for the storefront. It prefers locale-aware
// formatting for the configured locale and currency; when either fails to
// parse it falls back to "<symbol> <amount>" with two decimals.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	ok      bool
}

// NewFormatter builds a formatter for a BCP 47 locale (e.g. "es-PE") and
// an ISO 4217 currency code (e.g. "PEN").
func NewFormatter(locale, currencyCode string) *Formatter {
	tag, tagErr := language.Parse(locale)
	unit, unitErr := currency.ParseISO(currencyCode)
	if tagErr != nil || unitErr != nil {
		return &Formatter{}
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		ok:      true,
	}
}

// Format renders an amount. fallbackSymbol is the storefront's plain
// currency symbol from settings, used when locale-aware formatting is
// unavailable.
func (f *Formatter) Format(amount decimal.Decimal, fallbackSymbol string) string {
	if !f.ok {
		return fmt.Sprintf("%s %s", fallbackSymbol, amount.StringFixed(2))
	}
	value, _ := amount.Round(2).Float64()
	return f.printer.Sprintf("%v", currency.NarrowSymbol(f.unit.Amount(value)))
}
