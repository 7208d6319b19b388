package scanning

import (
	"strings"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromInt(100000)

// ExtractAmount returns the receipt total in euros
func ExtractAmount(text string) (float64, bool) {
	return firstMatch(amountRules, text)
}

// normalizeAmount converts an Italian formatted number ("12,50") and checks its bounds
func normalizeAmount(match []string) (float64, bool) {
	amount, err := decimal.NewFromString(strings.Replace(match[1], ",", ".", 1))
	if err != nil {
		return 0, false
	}
	if !amount.IsPositive() || !amount.LessThan(maxAmount) {
		return 0, false
	}
	return amount.InexactFloat64(), true
}

// Cents converts a euro amount to integer cents without float truncation
func Cents(amount float64) int {
	return int(decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart())
}
