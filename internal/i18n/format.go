package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency amounts are always rendered en-MY style regardless of the chat
// locale, matching how Malaysian lenders quote figures.
var currencyPrinter = message.NewPrinter(language.English)

// FormatMYR renders a monetary amount as RM with thousands grouping and two
// decimal places. NaN-safe: invalid amounts render as RM0.00.
func FormatMYR(v float64) string {
	if v != v { // NaN
		v = 0
	}
	return currencyPrinter.Sprintf("RM%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
