package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"buildledger/internal/apperr"
	"buildledger/internal/model"
	"buildledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt string    `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, tenantID uuid.UUID, id string) (ClientResponse, error)
	ListClients(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ClientResponse, int64, error)
	UpdateClient(ctx context.Context, tenantID uuid.UUID, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, tenantID uuid.UUID, id string) error
}

type clientService struct {
	clientRepo   repository.ClientRepository
	activityRepo repository.ActivityRepository
	txManager    repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, activityRepo repository.ActivityRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, activityRepo: activityRepo, txManager: txManager}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, tenantID uuid.UUID, req CreateClientRequest) (ClientResponse, error) {
	if req.Name == "" {
		return ClientResponse{}, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}

	client := &model.Client{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Notes:    req.Notes,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	s.logActivity(ctx, tenantID, model.ActionCreateClient, client.ID.String(), client.Name, "")

	return toClientResponse(*client), nil
}

func (s *clientService) GetClient(ctx context.Context, tenantID uuid.UUID, id string) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", apperr.ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, fmt.Errorf("client not found: %w", apperr.ErrNotFound)
		}
		return ClientResponse{}, fmt.Errorf("failed to load client: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]ClientResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	clients, total, err := s.clientRepo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		result = append(result, toClientResponse(client))
	}
	return result, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, tenantID uuid.UUID, id string, req UpdateClientRequest) (ClientResponse, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", apperr.ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, fmt.Errorf("client not found: %w", apperr.ErrNotFound)
		}
		return ClientResponse{}, fmt.Errorf("failed to load client: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return ClientResponse{}, fmt.Errorf("name cannot be empty: %w", apperr.ErrValidation)
		}
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}
	return toClientResponse(*client), nil
}

// DeleteClient removes the client and detaches it from any estimates and
// invoices in the same transaction; the documents keep their history with a
// null client reference.
func (s *clientService) DeleteClient(ctx context.Context, tenantID uuid.UUID, id string) error {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", apperr.ErrValidation)
	}

	client, err := s.clientRepo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("client not found: %w", apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to load client: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.DetachFromDocuments(txCtx, tenantID, clientID); err != nil {
			return fmt.Errorf("failed to detach client from documents: %w", err)
		}
		return s.clientRepo.Delete(txCtx, tenantID, clientID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.logActivity(ctx, tenantID, model.ActionDeleteClient, clientID.String(), client.Name, "")
	return nil
}

func (s *clientService) logActivity(ctx context.Context, tenantID uuid.UUID, action, entityID, entityName, details string) {
	entry := &model.ActivityLog{
		TenantID:   tenantID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.activityRepo.Log(ctx, entry); err != nil {
		log.Printf("activity log write failed: %v", err)
	}
}

func toClientResponse(client model.Client) ClientResponse {
	return ClientResponse{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		Notes:     client.Notes,
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
	}
}
