package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusUnpaid = "unpaid"
	InvoiceStatusPaid   = "paid"
)

// Invoice mirrors the estimate shape with payment bookkeeping instead of a
// validity window. PaidDate is non-null exactly when status is paid. Overdue
// is derived at read time, never stored.
type Invoice struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_invoices_tenant_number" json:"tenant_id"`
	ClientID         *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client           *Client         `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"client,omitempty"`
	SourceEstimateID *uuid.UUID      `gorm:"type:uuid;index" json:"source_estimate_id"` // set only by conversion
	InvoiceNumber    string          `gorm:"type:varchar(30);not null;uniqueIndex:ux_invoices_tenant_number" json:"invoice_number"`
	Title            string          `gorm:"type:varchar(255);not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	Status           string          `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"status"` // unpaid, paid
	IssueDate        time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate          *time.Time      `gorm:"type:date" json:"due_date"`
	PaidDate         *time.Time      `gorm:"type:date" json:"paid_date"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subtotal"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Notes            string          `gorm:"type:text" json:"notes"`
	JobSiteAddress   string          `gorm:"type:text" json:"job_site_address"`
	ArchivedAt       *time.Time      `gorm:"index" json:"archived_at"`
	Items            []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

// InvoiceItem is one billable row of an invoice, same shape as EstimateItem.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null;default:1" json:"quantity"`
	Unit        string          `gorm:"type:varchar(30);not null;default:'each'" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_price"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	SortOrder   int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
