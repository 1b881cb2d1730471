// Package currency formats ledger amounts, which are stored as integers in
// minor currency units.
package currency

import "fmt"

// zeroDecimalCurrencies have no minor unit; their amounts are stored as-is.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
	"CLP": true,
}

// MinorUnits returns the number of minor-unit digits for a currency code.
func MinorUnits(code string) int {
	if zeroDecimalCurrencies[code] {
		return 0
	}
	return 2
}

// Format renders a minor-unit amount as a decimal string, e.g. 150000 EUR
// as "1500.00". Negative amounts keep their sign.
func Format(amount int64, code string) string {
	digits := MinorUnits(code)
	if digits == 0 {
		return fmt.Sprintf("%d", amount)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	major := amount / 100
	minor := amount % 100
	return fmt.Sprintf("%s%d.%02d", sign, major, minor)
}

// FormatWithCode renders the amount followed by its currency code,
// e.g. "1500.00 EUR".
func FormatWithCode(amount int64, code string) string {
	return Format(amount, code) + " " + code
}
