package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []string
		taxRate   string
		subtotal  string
		taxAmount string
		total     string
	}{
		{
			name:      "no lines",
			amounts:   nil,
			taxRate:   "8.25",
			subtotal:  "0.00",
			taxAmount: "0.00",
			total:     "0.00",
		},
		{
			name:      "zero tax",
			amounts:   []string{"100.00", "250.50"},
			taxRate:   "0",
			subtotal:  "350.50",
			taxAmount: "0.00",
			total:     "350.50",
		},
		{
			name:      "typical job",
			amounts:   []string{"301.50", "150.50"},
			taxRate:   "8.25",
			subtotal:  "452.00",
			taxAmount: "37.29",
			total:     "489.29",
		},
		{
			name:      "subtotal rounds before tax",
			amounts:   []string{"10.005", "0.001"},
			taxRate:   "10",
			subtotal:  "10.01",
			taxAmount: "1.00",
			total:     "11.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, 0, len(tt.amounts))
			for _, a := range tt.amounts {
				amounts = append(amounts, dec(a))
			}

			subtotal, taxAmount, total := ComputeTotals(amounts, dec(tt.taxRate))
			assert.Equal(t, tt.subtotal, subtotal.StringFixed(2))
			assert.Equal(t, tt.taxAmount, taxAmount.StringFixed(2))
			assert.Equal(t, tt.total, total.StringFixed(2))
		})
	}
}

func TestComputeTotalsTotalIsSumOfParts(t *testing.T) {
	subtotal, taxAmount, total := ComputeTotals([]decimal.Decimal{dec("123.45"), dec("67.89")}, dec("7.5"))
	assert.True(t, subtotal.Add(taxAmount).Equal(total), "total must equal subtotal + tax amount exactly")
}

func TestParseLineItems(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		items, err := parseLineItems([]LineItemPayload{{Description: "Demo work"}})
		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, "1", items[0].Quantity.String())
		assert.Equal(t, "each", items[0].Unit)
		assert.Equal(t, "0", items[0].UnitPrice.String())
		assert.True(t, items[0].Amount.IsZero())
	})

	t.Run("amount is quantity times price", func(t *testing.T) {
		items, err := parseLineItems([]LineItemPayload{{
			Description: "Drywall",
			Quantity:    "2.5",
			Unit:        "sheet",
			UnitPrice:   "14.40",
		}})
		assert.NoError(t, err)
		assert.Equal(t, "36", items[0].Amount.String())
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := parseLineItems([]LineItemPayload{{Quantity: "1"}})
		assert.Error(t, err)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := parseLineItems([]LineItemPayload{{Description: "x", Quantity: "-1"}})
		assert.Error(t, err)
	})

	t.Run("sort order falls back to position", func(t *testing.T) {
		items, err := parseLineItems([]LineItemPayload{
			{Description: "first"},
			{Description: "second"},
			{Description: "third", SortOrder: 9},
		})
		assert.NoError(t, err)
		assert.Equal(t, 0, items[0].SortOrder)
		assert.Equal(t, 1, items[1].SortOrder)
		assert.Equal(t, 9, items[2].SortOrder)
	})
}
