package repository

import (
	"context"

	"buildledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EstimateListFilter narrows estimate listings. Archived defaults to hiding
// archived rows; set it true to list only archived ones.
type EstimateListFilter struct {
	Status   string
	Search   string // matches estimate_number or title
	Archived bool
	Page     int
	Limit    int
}

type EstimateRepository interface {
	Create(ctx context.Context, estimate *model.Estimate) error
	Update(ctx context.Context, estimate *model.Estimate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Estimate, error)
	FindByIDWithItems(ctx context.Context, tenantID, id uuid.UUID) (*model.Estimate, error)
	List(ctx context.Context, tenantID uuid.UUID, filter EstimateListFilter) ([]model.Estimate, int64, error)
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string, excludeID uuid.UUID) (bool, error)
	DeleteItems(ctx context.Context, estimateID uuid.UUID) error
	CreateItems(ctx context.Context, items []model.EstimateItem) error
	FindItems(ctx context.Context, estimateID uuid.UUID) ([]model.EstimateItem, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, taxAmount, total decimal.Decimal) error
}

type estimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) EstimateRepository {
	return &estimateRepository{db: db}
}

func (r *estimateRepository) Create(ctx context.Context, estimate *model.Estimate) error {
	return GetDB(ctx, r.db).Create(estimate).Error
}

func (r *estimateRepository) Update(ctx context.Context, estimate *model.Estimate) error {
	return GetDB(ctx, r.db).Omit("Items", "Client").Save(estimate).Error
}

func (r *estimateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("estimate_id = ?", id).Delete(&model.EstimateItem{}).Error; err != nil {
		return err
	}
	return db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Estimate{}).Error
}

func (r *estimateRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	if err := GetDB(ctx, r.db).First(&estimate, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *estimateRepository) FindByIDWithItems(ctx context.Context, tenantID, id uuid.UUID) (*model.Estimate, error) {
	var estimate model.Estimate
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Client").
		First(&estimate, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *estimateRepository) List(ctx context.Context, tenantID uuid.UUID, filter EstimateListFilter) ([]model.Estimate, int64, error) {
	var estimates []model.Estimate
	var total int64

	db := GetDB(ctx, r.db)
	base := func() *gorm.DB {
		query := db.Model(&model.Estimate{}).Where("tenant_id = ?", tenantID)
		if filter.Archived {
			query = query.Where("archived_at IS NOT NULL")
		} else {
			query = query.Where("archived_at IS NULL")
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.Where("estimate_number LIKE ? OR title LIKE ?", like, like)
		}
		return query
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := base().
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Client").
		Order("issue_date desc, created_at desc").
		Offset(offset).Limit(filter.Limit).
		Find(&estimates).Error; err != nil {
		return nil, 0, err
	}

	return estimates, total, nil
}

func (r *estimateRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Estimate{}).
		Where("tenant_id = ? AND estimate_number = ?", tenantID, number)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *estimateRepository) DeleteItems(ctx context.Context, estimateID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("estimate_id = ?", estimateID).Delete(&model.EstimateItem{}).Error
}

func (r *estimateRepository) CreateItems(ctx context.Context, items []model.EstimateItem) error {
	if len(items) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *estimateRepository) FindItems(ctx context.Context, estimateID uuid.UUID) ([]model.EstimateItem, error) {
	var items []model.EstimateItem
	if err := GetDB(ctx, r.db).
		Where("estimate_id = ?", estimateID).
		Order("sort_order asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *estimateRepository) UpdateTotals(ctx context.Context, id uuid.UUID, subtotal, taxAmount, total decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Estimate{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"subtotal":   subtotal,
			"tax_amount": taxAmount,
			"total":      total,
		}).Error
}
