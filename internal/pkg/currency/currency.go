// Package currency formats Moroccan dirham amounts and computes VAT.
package currency

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TVARate is the standard Moroccan VAT rate.
const TVARate = 0.20

// Symbol is appended to formatted amounts.
const Symbol = "MAD"

var locale = language.MustParse("fr-MA")

// FormatNumber renders amount with fr-MA digit grouping and at most three
// decimals, trailing zeros dropped: 12.5 gives "12,5".
func FormatNumber(amount float64) string {
	return format(amount, number.MaxFractionDigits(3))
}

// FormatMAD renders amount as a dirham price with exactly two decimals,
// e.g. "6 000,00 MAD".
func FormatMAD(amount float64) string {
	return format(amount, number.Scale(2)) + " " + Symbol
}

func format(amount float64, opt number.Option) string {
	return message.NewPrinter(locale).Sprint(number.Decimal(amount, opt))
}

// CalculateTVA returns the VAT due on a pre-tax amount, rounded to the centime.
func CalculateTVA(ht float64) float64 {
	return round2(ht * TVARate)
}

// CalculateTTC returns the tax-inclusive amount, rounded to the centime.
func CalculateTTC(ht float64) float64 {
	return round2(ht * (1 + TVARate))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
