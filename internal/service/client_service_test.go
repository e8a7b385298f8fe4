package service

import (
	"context"
	"errors"
	"testing"

	"buildledger/internal/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCRUD(t *testing.T) {
	env := setupTest(t)

	client, err := env.clients.CreateClient(context.Background(), env.tenant, CreateClientRequest{
		Name:    "Morrison Build Co",
		Email:   "office@morrison.example",
		Address: "400 Main St",
	})
	require.NoError(t, err)

	updated, err := env.clients.UpdateClient(context.Background(), env.tenant, client.ID.String(), UpdateClientRequest{
		Phone: strPtr("555-0101"),
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "Morrison Build Co", updated.Name)

	list, total, err := env.clients.ListClients(context.Background(), env.tenant, "morrison", 1, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, total)

	_, err = env.clients.CreateClient(context.Background(), env.tenant, CreateClientRequest{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestClientTenantIsolation(t *testing.T) {
	env := setupTest(t)

	client := env.createTestClient(t, "a@example.com")

	_, err := env.clients.GetClient(context.Background(), uuid.New(), client.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	list, _, err := env.clients.ListClients(context.Background(), uuid.New(), "", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteClientDetachesDocuments(t *testing.T) {
	env := setupTest(t)

	client := env.createTestClient(t, "owner@example.com")
	est := env.createTestEstimate(t, CreateEstimateRequest{
		Title:          "Attached estimate",
		EstimateNumber: "EST-000601",
		ClientID:       client.ID.String(),
	})
	inv := env.createTestInvoice(t, CreateInvoiceRequest{
		Title:         "Attached invoice",
		InvoiceNumber: "INV-000601",
		ClientID:      client.ID.String(),
	})

	require.NoError(t, env.clients.DeleteClient(context.Background(), env.tenant, client.ID.String()))

	// Documents survive with the client reference cleared.
	gotEst, err := env.estimates.GetEstimate(context.Background(), env.tenant, est.ID.String())
	require.NoError(t, err)
	assert.Nil(t, gotEst.ClientID)
	assert.Empty(t, gotEst.ClientName)

	gotInv, err := env.invoices.GetInvoice(context.Background(), env.tenant, inv.ID.String())
	require.NoError(t, err)
	assert.Nil(t, gotInv.ClientID)

	_, err = env.clients.GetClient(context.Background(), env.tenant, client.ID.String())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
