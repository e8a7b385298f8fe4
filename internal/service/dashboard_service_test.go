package service

import (
	"context"
	"testing"

	"buildledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardAggregates(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	env.createTestClient(t, "c@example.com")

	env.createTestEstimate(t, CreateEstimateRequest{Title: "Draft one", EstimateNumber: "EST-000701"})
	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Approved one", EstimateNumber: "EST-000702"})
	_, err := env.estimates.UpdateEstimate(ctx, env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr(model.EstimateStatusApproved),
	})
	require.NoError(t, err)

	yesterday := today().AddDate(0, 0, -1).Format(dateLayout)
	env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Overdue",
		InvoiceNumber: "INV-000701",
		DueDate:       yesterday,
		Items:         []LineItemPayload{{Description: "Work", Quantity: "1", UnitPrice: "1000.00"}},
	})
	env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Current",
		InvoiceNumber: "INV-000702",
		Items:         []LineItemPayload{{Description: "Work", Quantity: "1", UnitPrice: "500.00"}},
	})
	paid := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Settled",
		InvoiceNumber: "INV-000703",
		Items:         []LineItemPayload{{Description: "Work", Quantity: "1", UnitPrice: "250.00"}},
	})
	_, err = env.invoices.MarkPaid(ctx, env.tenant, paid.ID.String())
	require.NoError(t, err)

	dash, err := env.dashboard.GetDashboard(ctx, env.tenant)
	require.NoError(t, err)

	assert.EqualValues(t, 1, dash.DraftEstimates)
	assert.EqualValues(t, 1, dash.ApprovedEstimates)
	assert.EqualValues(t, 0, dash.SentEstimates)
	assert.EqualValues(t, 2, dash.UnpaidInvoices)
	assert.EqualValues(t, 1, dash.OverdueInvoices)
	assert.Equal(t, "1500.00", dash.OutstandingTotal)
	assert.Equal(t, "1000.00", dash.OverdueTotal)
	assert.Equal(t, "250.00", dash.PaidThisMonth)
	assert.EqualValues(t, 1, dash.TotalClients)
}

func TestDashboardExcludesArchived(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Archived draft", EstimateNumber: "EST-000801"})
	_, err := env.estimates.SetArchived(ctx, env.tenant, est.ID.String(), true)
	require.NoError(t, err)

	inv := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Archived unpaid",
		InvoiceNumber: "INV-000801",
		Items:         []LineItemPayload{{Description: "Work", Quantity: "1", UnitPrice: "99.00"}},
	})
	_, err = env.invoices.SetArchived(ctx, env.tenant, inv.ID.String(), true)
	require.NoError(t, err)

	dash, err := env.dashboard.GetDashboard(ctx, env.tenant)
	require.NoError(t, err)

	assert.EqualValues(t, 0, dash.DraftEstimates)
	assert.EqualValues(t, 0, dash.UnpaidInvoices)
	assert.Equal(t, "0.00", dash.OutstandingTotal)
}

func TestActivityFeedRecordsDocumentEvents(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Tracked", EstimateNumber: "EST-000901"})
	require.NoError(t, env.estimates.DeleteEstimate(ctx, env.tenant, est.ID.String()))

	entries, total, err := env.activity.ListActivity(ctx, env.tenant, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// Newest first.
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionDeleteEstimate, entries[0].Action)
	assert.Equal(t, model.ActionCreateEstimate, entries[1].Action)
	assert.Equal(t, "EST-000901", entries[0].EntityName)
}
