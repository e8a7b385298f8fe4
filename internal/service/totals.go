package service

import (
	"github.com/shopspring/decimal"
)

var percentDivisor = decimal.NewFromInt(100)

// ComputeTotals derives a document's aggregates from its line amounts.
// Line amounts stay at full precision; rounding happens at the subtotal and
// tax amount so the stored aggregates always fit the 12,2 money columns.
// Zero lines yield all-zero totals.
func ComputeTotals(lineAmounts []decimal.Decimal, taxRate decimal.Decimal) (subtotal, taxAmount, total decimal.Decimal) {
	sum := decimal.Zero
	for _, amount := range lineAmounts {
		sum = sum.Add(amount)
	}
	subtotal = sum.Round(2)
	taxAmount = subtotal.Mul(taxRate).Div(percentDivisor).Round(2)
	total = subtotal.Add(taxAmount)
	return subtotal, taxAmount, total
}
