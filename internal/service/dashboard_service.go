package service

import (
	"context"
	"time"

	"buildledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, tenantID uuid.UUID) (model.DashboardResponse, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

// GetDashboard aggregates the tenant's document counts and money totals.
// Archived documents are excluded everywhere.
func (s *dashboardService) GetDashboard(ctx context.Context, tenantID uuid.UUID) (model.DashboardResponse, error) {
	var response model.DashboardResponse
	now := today()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	statusCounts := []struct {
		status string
		target *int64
	}{
		{model.EstimateStatusDraft, &response.DraftEstimates},
		{model.EstimateStatusSent, &response.SentEstimates},
		{model.EstimateStatusApproved, &response.ApprovedEstimates},
		{model.EstimateStatusDeclined, &response.DeclinedEstimates},
	}
	for _, sc := range statusCounts {
		if err := s.db.WithContext(ctx).Model(&model.Estimate{}).
			Where("tenant_id = ? AND status = ? AND archived_at IS NULL", tenantID, sc.status).
			Count(sc.target).Error; err != nil {
			return response, err
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("tenant_id = ? AND status = ? AND archived_at IS NULL", tenantID, model.InvoiceStatusUnpaid).
		Count(&response.UnpaidInvoices).Error; err != nil {
		return response, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("tenant_id = ? AND status = ? AND archived_at IS NULL AND due_date IS NOT NULL AND due_date < ?",
			tenantID, model.InvoiceStatusUnpaid, now).
		Count(&response.OverdueInvoices).Error; err != nil {
		return response, err
	}

	outstanding, err := s.sumInvoiceTotals(ctx,
		"tenant_id = ? AND status = ? AND archived_at IS NULL",
		tenantID, model.InvoiceStatusUnpaid)
	if err != nil {
		return response, err
	}
	response.OutstandingTotal = outstanding.StringFixed(2)

	overdue, err := s.sumInvoiceTotals(ctx,
		"tenant_id = ? AND status = ? AND archived_at IS NULL AND due_date IS NOT NULL AND due_date < ?",
		tenantID, model.InvoiceStatusUnpaid, now)
	if err != nil {
		return response, err
	}
	response.OverdueTotal = overdue.StringFixed(2)

	paid, err := s.sumInvoiceTotals(ctx,
		"tenant_id = ? AND status = ? AND paid_date >= ?",
		tenantID, model.InvoiceStatusPaid, monthStart)
	if err != nil {
		return response, err
	}
	response.PaidThisMonth = paid.StringFixed(2)

	if err := s.db.WithContext(ctx).Model(&model.Client{}).
		Where("tenant_id = ?", tenantID).
		Count(&response.TotalClients).Error; err != nil {
		return response, err
	}

	return response, nil
}

func (s *dashboardService) sumInvoiceTotals(ctx context.Context, where string, args ...interface{}) (decimal.Decimal, error) {
	var row struct {
		Value decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(total), 0) as value").
		Where(where, args...).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Value, nil
}
