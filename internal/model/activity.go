package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateEstimate  = "CREATE_ESTIMATE"
	ActionUpdateEstimate  = "UPDATE_ESTIMATE"
	ActionDeleteEstimate  = "DELETE_ESTIMATE"
	ActionSendEstimate    = "SEND_ESTIMATE"
	ActionEstimateStatus  = "ESTIMATE_STATUS_CHANGE"
	ActionConvertEstimate = "CONVERT_ESTIMATE"

	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionUpdateInvoice     = "UPDATE_INVOICE"
	ActionDeleteInvoice     = "DELETE_INVOICE"
	ActionMarkInvoicePaid   = "MARK_INVOICE_PAID"
	ActionMarkInvoiceUnpaid = "MARK_INVOICE_UNPAID"

	ActionCreateClient = "CREATE_CLIENT"
	ActionDeleteClient = "DELETE_CLIENT"
)

// ActivityLog tracks what happened to which document and when, per tenant.
// Entries are write-once; a failed log write never fails the parent action.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // document uuid
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // document number or title
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
