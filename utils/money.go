package utils

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatMoney renders a dollar amount for notification text, e.g. "$12.50".
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprintf("%v", currency.Symbol(currency.USD.Amount(amount)))
}
