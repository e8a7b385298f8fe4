package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"buildledger/internal/apperr"
	"buildledger/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) createTestClient(t *testing.T, email string) ClientResponse {
	t.Helper()
	client, err := env.clients.CreateClient(context.Background(), env.tenant, CreateClientRequest{
		Name:  "Hargrove Residence",
		Email: email,
		Phone: "555-0142",
	})
	require.NoError(t, err)
	return client
}

func (env *testEnv) createTestEstimate(t *testing.T, req CreateEstimateRequest) EstimateResponse {
	t.Helper()
	est, err := env.estimates.CreateEstimate(context.Background(), env.tenant, req)
	require.NoError(t, err)
	return est
}

func strPtr(s string) *string { return &s }

func TestCreateEstimateComputesTotals(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:   "Kitchen remodel",
		TaxRate: "8.25",
		Items: []LineItemPayload{
			{Description: "Cabinet install", Quantity: "3", Unit: "hour", UnitPrice: "100.50"},
			{Description: "Countertop", Quantity: "2", Unit: "sqft", UnitPrice: "75.25"},
		},
	})

	assert.Equal(t, "452.00", est.Subtotal)
	assert.Equal(t, "37.29", est.TaxAmount)
	assert.Equal(t, "489.29", est.Total)
	assert.Equal(t, model.EstimateStatusDraft, est.Status)
	assert.Len(t, est.Items, 2)
	assert.Regexp(t, `^EST-\d{6}$`, est.EstimateNumber)
}

func TestCreateEstimateRejectsInvalidItems(t *testing.T) {
	env := setupTest(t)

	_, err := env.estimates.CreateEstimate(context.Background(), env.tenant, CreateEstimateRequest{
		Title: "Bad items",
		Items: []LineItemPayload{{Description: "x", Quantity: "-2"}},
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = env.estimates.CreateEstimate(context.Background(), env.tenant, CreateEstimateRequest{
		Title:   "Bad tax",
		TaxRate: "-5",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateEstimateDuplicateNumber(t *testing.T) {
	env := setupTest(t)

	env.createTestEstimate(t, CreateEstimateRequest{Title: "First", EstimateNumber: "EST-000100"})

	_, err := env.estimates.CreateEstimate(context.Background(), env.tenant, CreateEstimateRequest{
		Title:          "Second",
		EstimateNumber: "EST-000100",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestSameNumberAllowedAcrossTenants(t *testing.T) {
	env := setupTest(t)

	env.createTestEstimate(t, CreateEstimateRequest{Title: "Mine", EstimateNumber: "EST-000200"})

	otherTenant := uuid.New()
	_, err := env.estimates.CreateEstimate(context.Background(), otherTenant, CreateEstimateRequest{
		Title:          "Theirs",
		EstimateNumber: "EST-000200",
	})
	assert.NoError(t, err)
}

func TestUpdateEstimateReplacesItems(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:   "Deck build",
		TaxRate: "0",
		Items: []LineItemPayload{
			{Description: "Lumber", Quantity: "10", UnitPrice: "42.00"},
			{Description: "Labor", Quantity: "8", Unit: "hour", UnitPrice: "65.00"},
		},
	})
	assert.Equal(t, "940.00", est.Total)

	items := []LineItemPayload{
		{Description: "Composite decking", Quantity: "12", UnitPrice: "55.00"},
	}
	updated, err := env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Items: &items,
	})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "Composite decking", updated.Items[0].Description)
	assert.Equal(t, "660.00", updated.Subtotal)
	assert.Equal(t, "660.00", updated.Total)
}

func TestUpdateEstimateWithoutItemsKeepsThemButRecalcs(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:   "Garage",
		TaxRate: "0",
		Items:   []LineItemPayload{{Description: "Framing", Quantity: "1", UnitPrice: "500.00"}},
	})

	updated, err := env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		TaxRate: strPtr("10"),
	})
	require.NoError(t, err)

	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "500.00", updated.Subtotal)
	assert.Equal(t, "50.00", updated.TaxAmount)
	assert.Equal(t, "550.00", updated.Total)
}

func TestUpdateEstimateStatus(t *testing.T) {
	env := setupTest(t)
	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Fence"})

	updated, err := env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr(model.EstimateStatusApproved),
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusApproved, updated.Status)

	// A declined estimate can be manually pulled back to draft.
	_, err = env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr(model.EstimateStatusDeclined),
	})
	require.NoError(t, err)
	updated, err = env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr(model.EstimateStatusDraft),
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusDraft, updated.Status)

	_, err = env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr("cancelled"),
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestSendEstimateRequiresClientEmail(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "No client", EstimateNumber: "EST-000301"})
	_, err := env.estimates.SendEstimate(context.Background(), env.tenant, est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	client := env.createTestClient(t, "")
	est = env.createTestEstimate(t, CreateEstimateRequest{Title: "Client without email", EstimateNumber: "EST-000302", ClientID: client.ID.String()})
	_, err = env.estimates.SendEstimate(context.Background(), env.tenant, est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestSendEstimateMarksSent(t *testing.T) {
	env := setupTest(t)

	client := env.createTestClient(t, "owner@example.com")
	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:    "Bathroom remodel",
		ClientID: client.ID.String(),
		Items:    []LineItemPayload{{Description: "Tile", Quantity: "40", UnitPrice: "6.25"}},
	})

	sent, err := env.estimates.SendEstimate(context.Background(), env.tenant, est.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.EstimateStatusSent, sent.Status)
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "owner@example.com", env.mailer.sent[0].To)
	assert.Contains(t, env.mailer.sent[0].Subject, est.EstimateNumber)
	assert.Contains(t, env.mailer.sent[0].Body, "Tile")
}

func TestSendEstimateFailureLeavesStateUntouched(t *testing.T) {
	env := setupTest(t)
	env.mailer.failErr = errors.New("smtp connection refused")

	client := env.createTestClient(t, "owner@example.com")
	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Roof repair", ClientID: client.ID.String()})

	_, err := env.estimates.SendEstimate(context.Background(), env.tenant, est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrDispatch))

	reloaded, err := env.estimates.GetEstimate(context.Background(), env.tenant, est.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusDraft, reloaded.Status)
}

func TestConvertRequiresApproved(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Not ready"})
	_, err := env.estimates.ConvertToInvoice(context.Background(), env.tenant, est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestConvertCopiesEstimateIntoInvoice(t *testing.T) {
	env := setupTest(t)

	client := env.createTestClient(t, "owner@example.com")
	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:          "Garage conversion",
		ClientID:       client.ID.String(),
		TaxRate:        "0",
		Notes:          "Net 30",
		JobSiteAddress: "12 Alder Ln",
		Items: []LineItemPayload{
			{Description: "Framing labor", Quantity: "4", Unit: "day", UnitPrice: "175.00"},
			{Description: "Electrical rough-in", Quantity: "1", UnitPrice: "56.00"},
		},
	})
	assert.Equal(t, "756.00", est.Total)

	_, err := env.estimates.UpdateEstimate(context.Background(), env.tenant, est.ID.String(), UpdateEstimateRequest{
		Status: strPtr(model.EstimateStatusApproved),
	})
	require.NoError(t, err)

	invoice, err := env.estimates.ConvertToInvoice(context.Background(), env.tenant, est.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.InvoiceStatusUnpaid, invoice.Status)
	assert.Regexp(t, `^INV-\d{6}$`, invoice.InvoiceNumber)
	assert.Equal(t, est.Title, invoice.Title)
	assert.Equal(t, est.Notes, invoice.Notes)
	assert.Equal(t, est.JobSiteAddress, invoice.JobSiteAddress)
	require.NotNil(t, invoice.SourceEstimateID)
	assert.Equal(t, est.ID, *invoice.SourceEstimateID)
	require.NotNil(t, invoice.ClientID)
	assert.Equal(t, client.ID, *invoice.ClientID)

	// Totals are recomputed from the copied items and match the source.
	assert.Equal(t, "756.00", invoice.Total)
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "Framing labor", invoice.Items[0].Description)
	assert.Equal(t, "day", invoice.Items[0].Unit)

	// Due date defaults to 30 days after issue.
	require.NotNil(t, invoice.DueDate)
	issue, _ := time.Parse(dateLayout, invoice.IssueDate)
	due, _ := time.Parse(dateLayout, *invoice.DueDate)
	assert.Equal(t, issue.AddDate(0, 0, 30), due)

	// The source estimate keeps its status.
	source, err := env.estimates.GetEstimate(context.Background(), env.tenant, est.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.EstimateStatusApproved, source.Status)
}

func TestArchiveHidesFromActiveList(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Old quote"})
	_, err := env.estimates.SetArchived(context.Background(), env.tenant, est.ID.String(), true)
	require.NoError(t, err)

	active, total, err := env.estimates.ListEstimates(context.Background(), env.tenant, EstimateFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	archived, total, err := env.estimates.ListEstimates(context.Background(), env.tenant, EstimateFilter{Archived: true})
	require.NoError(t, err)
	assert.Len(t, archived, 1)
	assert.EqualValues(t, 1, total)

	_, err = env.estimates.SetArchived(context.Background(), env.tenant, est.ID.String(), false)
	require.NoError(t, err)
	active, _, err = env.estimates.ListEstimates(context.Background(), env.tenant, EstimateFilter{})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestEstimateTenantIsolation(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{Title: "Private"})

	_, err := env.estimates.GetEstimate(context.Background(), uuid.New(), est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = env.estimates.DeleteEstimate(context.Background(), uuid.New(), est.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteEstimateRemovesItems(t *testing.T) {
	env := setupTest(t)

	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title: "Doomed",
		Items: []LineItemPayload{{Description: "Row", Quantity: "1", UnitPrice: "10.00"}},
	})

	require.NoError(t, env.estimates.DeleteEstimate(context.Background(), env.tenant, est.ID.String()))

	var count int64
	env.db.Model(&model.EstimateItem{}).Where("estimate_id = ?", est.ID).Count(&count)
	assert.Zero(t, count)
}
