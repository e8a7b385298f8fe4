package repository

import (
	"context"

	"buildledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Client, int64, error)
	DetachFromDocuments(ctx context.Context, tenantID, clientID uuid.UUID) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, tenantID uuid.UUID, search string, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Client{}).Where("tenant_id = ?", tenantID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// DetachFromDocuments nulls the client reference on the tenant's estimates
// and invoices so the documents survive client deletion.
func (r *clientRepository) DetachFromDocuments(ctx context.Context, tenantID, clientID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Estimate{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Update("client_id", nil).Error; err != nil {
		return err
	}
	return db.Model(&model.Invoice{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Update("client_id", nil).Error
}
