package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"buildledger/internal/apperr"
	"buildledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) createTestInvoice(t *testing.T, req CreateInvoiceRequest) InvoiceResponse {
	t.Helper()
	inv, err := env.invoices.CreateInvoice(context.Background(), env.tenant, req)
	require.NoError(t, err)
	return inv
}

func TestCreateInvoiceDefaultsDueDate(t *testing.T) {
	env := setupTest(t)

	inv := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:   "Siding job",
		TaxRate: "5",
		Items:   []LineItemPayload{{Description: "Siding", Quantity: "20", UnitPrice: "30.00"}},
	})

	assert.Equal(t, model.InvoiceStatusUnpaid, inv.Status)
	assert.Equal(t, "600.00", inv.Subtotal)
	assert.Equal(t, "30.00", inv.TaxAmount)
	assert.Equal(t, "630.00", inv.Total)
	assert.Nil(t, inv.PaidDate)

	require.NotNil(t, inv.DueDate)
	issue, _ := time.Parse(dateLayout, inv.IssueDate)
	due, _ := time.Parse(dateLayout, *inv.DueDate)
	assert.Equal(t, issue.AddDate(0, 0, 30), due)
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	env := setupTest(t)

	inv := env.createTestInvoice(t, CreateInvoiceRequest{Title: "Paint job"})

	paid, err := env.invoices.MarkPaid(context.Background(), env.tenant, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.Equal(t, today().Format(dateLayout), *paid.PaidDate)
	assert.False(t, paid.Overdue)

	// Marking paid twice keeps the original date.
	again, err := env.invoices.MarkPaid(context.Background(), env.tenant, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, *paid.PaidDate, *again.PaidDate)

	unpaid, err := env.invoices.MarkUnpaid(context.Background(), env.tenant, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusUnpaid, unpaid.Status)
	assert.Nil(t, unpaid.PaidDate)
}

func TestOverdueIsDerivedFromDueDate(t *testing.T) {
	env := setupTest(t)

	yesterday := today().AddDate(0, 0, -1).Format(dateLayout)
	tomorrow := today().AddDate(0, 0, 1).Format(dateLayout)

	late := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Late invoice",
		InvoiceNumber: "INV-000401",
		IssueDate:     today().AddDate(0, 0, -40).Format(dateLayout),
		DueDate:       yesterday,
	})
	assert.True(t, late.Overdue)

	current, err := env.invoices.UpdateInvoice(context.Background(), env.tenant, late.ID.String(), UpdateInvoiceRequest{
		DueDate: strPtr(tomorrow),
	})
	require.NoError(t, err)
	assert.False(t, current.Overdue)

	// A paid invoice is never overdue, regardless of due date.
	_, err = env.invoices.UpdateInvoice(context.Background(), env.tenant, late.ID.String(), UpdateInvoiceRequest{
		DueDate: strPtr(yesterday),
	})
	require.NoError(t, err)
	paid, err := env.invoices.MarkPaid(context.Background(), env.tenant, late.ID.String())
	require.NoError(t, err)
	assert.False(t, paid.Overdue)

	// An invoice with no due date is never overdue.
	open := env.createTestInvoice(t, CreateInvoiceRequest{Title: "Open ended", InvoiceNumber: "INV-000402"})
	cleared, err := env.invoices.UpdateInvoice(context.Background(), env.tenant, open.ID.String(), UpdateInvoiceRequest{
		DueDate: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.False(t, cleared.Overdue)
}

func TestUpdateInvoiceStatusKeepsPaidDateConsistent(t *testing.T) {
	env := setupTest(t)

	inv := env.createTestInvoice(t, CreateInvoiceRequest{Title: "Manual status"})

	paid, err := env.invoices.UpdateInvoice(context.Background(), env.tenant, inv.ID.String(), UpdateInvoiceRequest{
		Status: strPtr(model.InvoiceStatusPaid),
	})
	require.NoError(t, err)
	require.NotNil(t, paid.PaidDate)

	unpaid, err := env.invoices.UpdateInvoice(context.Background(), env.tenant, inv.ID.String(), UpdateInvoiceRequest{
		Status: strPtr(model.InvoiceStatusUnpaid),
	})
	require.NoError(t, err)
	assert.Nil(t, unpaid.PaidDate)

	_, err = env.invoices.UpdateInvoice(context.Background(), env.tenant, inv.ID.String(), UpdateInvoiceRequest{
		Status: strPtr("void"),
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestInvoiceDuplicateNumber(t *testing.T) {
	env := setupTest(t)

	env.createTestInvoice(t, CreateInvoiceRequest{Title: "First", InvoiceNumber: "INV-000500"})

	_, err := env.invoices.CreateInvoice(context.Background(), env.tenant, CreateInvoiceRequest{
		Title:         "Second",
		InvoiceNumber: "INV-000500",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUpdateInvoiceReplacesItemsAndRecalcs(t *testing.T) {
	env := setupTest(t)

	inv := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:   "Flooring",
		TaxRate: "0",
		Items:   []LineItemPayload{{Description: "Hardwood", Quantity: "100", UnitPrice: "8.00"}},
	})
	assert.Equal(t, "800.00", inv.Total)

	items := []LineItemPayload{
		{Description: "Laminate", Quantity: "100", UnitPrice: "4.50"},
		{Description: "Underlayment", Quantity: "100", UnitPrice: "0.75"},
	}
	updated, err := env.invoices.UpdateInvoice(context.Background(), env.tenant, inv.ID.String(), UpdateInvoiceRequest{
		Items: &items,
	})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 2)
	assert.Equal(t, "525.00", updated.Total)
}
