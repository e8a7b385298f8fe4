package service

import (
	"fmt"
	"time"

	"buildledger/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// LineItemPayload is the request shape of one billable row. Quantity and
// unit price come in as strings so clients keep full decimal control;
// quantity defaults to 1 and unit to "each".
type LineItemPayload struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	SortOrder   int    `json:"sort_order"`
}

// LineItemResponse is the response shape of one billable row.
type LineItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    string    `json:"quantity"`
	Unit        string    `json:"unit"`
	UnitPrice   string    `json:"unit_price"`
	Amount      string    `json:"amount"`
	SortOrder   int       `json:"sort_order"`
}

// parsedItem carries one validated row; amount is always quantity × price.
type parsedItem struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	SortOrder   int
}

// parseLineItems validates the full replacement set for a document save.
// Sort order falls back to payload position when the client sends none.
func parseLineItems(payloads []LineItemPayload) ([]parsedItem, error) {
	items := make([]parsedItem, 0, len(payloads))
	for i, p := range payloads {
		if p.Description == "" {
			return nil, fmt.Errorf("items[%d]: description is required: %w", i, apperr.ErrValidation)
		}

		quantity := decimal.NewFromInt(1)
		if p.Quantity != "" {
			parsed, err := decimal.NewFromString(p.Quantity)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: invalid quantity: %w", i, apperr.ErrValidation)
			}
			quantity = parsed
		}
		if quantity.IsNegative() {
			return nil, fmt.Errorf("items[%d]: quantity must not be negative: %w", i, apperr.ErrValidation)
		}

		unitPrice := decimal.Zero
		if p.UnitPrice != "" {
			parsed, err := decimal.NewFromString(p.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: invalid unit_price: %w", i, apperr.ErrValidation)
			}
			unitPrice = parsed
		}
		if unitPrice.IsNegative() {
			return nil, fmt.Errorf("items[%d]: unit_price must not be negative: %w", i, apperr.ErrValidation)
		}

		unit := p.Unit
		if unit == "" {
			unit = "each"
		}

		sortOrder := p.SortOrder
		if sortOrder == 0 {
			sortOrder = i
		}

		items = append(items, parsedItem{
			Description: p.Description,
			Quantity:    quantity,
			Unit:        unit,
			UnitPrice:   unitPrice,
			Amount:      quantity.Mul(unitPrice),
			SortOrder:   sortOrder,
		})
	}
	return items, nil
}

// parseDate accepts YYYY-MM-DD.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, apperr.ErrValidation)
	}
	return t, nil
}

// today truncates the clock to a date, matching the date columns.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
