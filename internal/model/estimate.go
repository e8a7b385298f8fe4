package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EstimateStatus enum constants
const (
	EstimateStatusDraft    = "draft"
	EstimateStatusSent     = "sent"
	EstimateStatusApproved = "approved"
	EstimateStatusDeclined = "declined"
)

// Estimate is a priced proposal for a job. Subtotal, tax amount, and total are
// derived from the line items and recomputed inside the same transaction as
// any item change; they are never written by callers directly.
type Estimate struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_estimates_tenant_number" json:"tenant_id"`
	ClientID       *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client         *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`
	EstimateNumber string          `gorm:"type:varchar(30);not null;uniqueIndex:ux_estimates_tenant_number" json:"estimate_number"`
	Title          string          `gorm:"type:varchar(255);not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	Status         string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"` // draft, sent, approved, declined
	IssueDate      time.Time       `gorm:"type:date;not null" json:"issue_date"`
	ValidUntil     *time.Time      `gorm:"type:date" json:"valid_until"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"` // percent, e.g. 8.25
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Notes          string          `gorm:"type:text" json:"notes"`
	JobSiteAddress string          `gorm:"type:text" json:"job_site_address"`
	ArchivedAt     *time.Time      `gorm:"index" json:"archived_at"` // null = active
	Items          []EstimateItem  `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// EstimateItem is one billable row of an estimate. Amount always equals
// quantity × unit price at full precision; only the parent aggregates are
// rounded to two places.
type EstimateItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EstimateID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:1" json:"quantity"`
	Unit        string          `gorm:"type:varchar(30);not null;default:'each'" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	SortOrder   int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *EstimateItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
