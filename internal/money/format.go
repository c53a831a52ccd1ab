// Package money formats ladder amounts for display.
package money

import (
	"strconv"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders amount with the symbol of the ISO 4217 code, e.g.
// "$1,000". Unknown codes fall back to "<code> <amount>".
func FormatCurrency(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + strconv.FormatFloat(amount, 'f', -1, 64)
	}
	symbol := printer.Sprint(currency.NarrowSymbol(unit))
	return symbol + printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}
