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
	"buildledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	ClientID       string            `json:"client_id"`
	InvoiceNumber  string            `json:"invoice_number"` // blank = suggest one
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	IssueDate      string            `json:"issue_date"` // YYYY-MM-DD, blank = today
	DueDate        string            `json:"due_date"`   // blank = issue date + 30 days
	TaxRate        string            `json:"tax_rate"`
	Notes          string            `json:"notes"`
	JobSiteAddress string            `json:"job_site_address"`
	Items          []LineItemPayload `json:"items"`
}

type UpdateInvoiceRequest struct {
	ClientID       *string            `json:"client_id"`
	InvoiceNumber  *string            `json:"invoice_number"`
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Status         *string            `json:"status"`
	IssueDate      *string            `json:"issue_date"`
	DueDate        *string            `json:"due_date"` // empty string clears
	TaxRate        *string            `json:"tax_rate"`
	Notes          *string            `json:"notes"`
	JobSiteAddress *string            `json:"job_site_address"`
	Items          *[]LineItemPayload `json:"items"`
}

type InvoiceFilter struct {
	Status   string
	Search   string
	Archived bool
	Page     int
	Limit    int
}

type InvoiceResponse struct {
	ID               uuid.UUID          `json:"id"`
	InvoiceNumber    string             `json:"invoice_number"`
	ClientID         *uuid.UUID         `json:"client_id"`
	ClientName       string             `json:"client_name,omitempty"`
	SourceEstimateID *uuid.UUID         `json:"source_estimate_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Status           string             `json:"status"`
	Overdue          bool               `json:"overdue"`
	IssueDate        string             `json:"issue_date"`
	DueDate          *string            `json:"due_date"`
	PaidDate         *string            `json:"paid_date"`
	Subtotal         string             `json:"subtotal"`
	TaxRate          string             `json:"tax_rate"`
	TaxAmount        string             `json:"tax_amount"`
	Total            string             `json:"total"`
	Notes            string             `json:"notes"`
	JobSiteAddress   string             `json:"job_site_address"`
	ArchivedAt       *string            `json:"archived_at"`
	Items            []LineItemResponse `json:"items"`
	CreatedAt        string             `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, tenantID uuid.UUID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, tenantID uuid.UUID, id string) error
	MarkPaid(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	MarkUnpaid(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	SetArchived(ctx context.Context, tenantID uuid.UUID, id string, archived bool) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	activityRepo repository.ActivityRepository
	txManager    repository.TransactionManager
	hub          *websocket.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	activityRepo repository.ActivityRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		activityRepo: activityRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

var validInvoiceStatuses = map[string]bool{
	model.InvoiceStatusUnpaid: true,
	model.InvoiceStatusPaid:   true,
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error) {
	if req.Title == "" {
		return InvoiceResponse{}, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		return InvoiceResponse{}, err
	}

	taxRate := decimal.Zero
	if req.TaxRate != "" {
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return InvoiceResponse{}, fmt.Errorf("invalid tax_rate: %w", apperr.ErrValidation)
		}
	}

	issueDate := today()
	if req.IssueDate != "" {
		if issueDate, err = parseDate(req.IssueDate); err != nil {
			return InvoiceResponse{}, err
		}
	}

	dueDate := issueDate.AddDate(0, 0, 30)
	if req.DueDate != "" {
		if dueDate, err = parseDate(req.DueDate); err != nil {
			return InvoiceResponse{}, err
		}
	}

	var clientID *uuid.UUID
	if req.ClientID != "" {
		parsed, err := uuid.Parse(req.ClientID)
		if err != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", apperr.ErrValidation)
		}
		if _, err := s.clientRepo.FindByID(ctx, tenantID, parsed); err != nil {
			return InvoiceResponse{}, fmt.Errorf("client not found: %w", apperr.ErrValidation)
		}
		clientID = &parsed
	}

	number := req.InvoiceNumber
	if number == "" {
		number = NextDocumentNumber(InvoiceNumberPrefix)
	}

	invoice := &model.Invoice{
		TenantID:       tenantID,
		ClientID:       clientID,
		InvoiceNumber:  number,
		Title:          req.Title,
		Description:    req.Description,
		Status:         model.InvoiceStatusUnpaid,
		IssueDate:      issueDate,
		DueDate:        &dueDate,
		TaxRate:        taxRate,
		Notes:          req.Notes,
		JobSiteAddress: req.JobSiteAddress,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.invoiceRepo.ExistsByNumber(txCtx, tenantID, number, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return fmt.Errorf("invoice number %s is already in use: %w", number, apperr.ErrConflict)
		}

		if err := s.invoiceRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		if err := s.invoiceRepo.CreateItems(txCtx, toInvoiceItems(invoice.ID, items)); err != nil {
			return fmt.Errorf("failed to create invoice items: %w", err)
		}
		return recalcInvoiceTotals(txCtx, s.invoiceRepo, invoice.ID, taxRate)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.logActivity(ctx, tenantID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, invoice.Title)

	return s.respond(ctx, tenantID, invoice.ID)
}

func (s *invoiceService) GetInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}
	return s.respond(ctx, tenantID, invoiceID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !validInvoiceStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("invalid status filter: %w", apperr.ErrValidation)
	}

	invoices, total, err := s.invoiceRepo.List(ctx, tenantID, repository.InvoiceListFilter{
		Status:   filter.Status,
		Search:   filter.Search,
		Archived: filter.Archived,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, tenantID uuid.UUID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load invoice: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return InvoiceResponse{}, fmt.Errorf("title cannot be empty: %w", apperr.ErrValidation)
		}
		invoice.Title = *req.Title
	}
	if req.Description != nil {
		invoice.Description = *req.Description
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.JobSiteAddress != nil {
		invoice.JobSiteAddress = *req.JobSiteAddress
	}
	if req.Status != nil {
		if !validInvoiceStatuses[*req.Status] {
			return InvoiceResponse{}, fmt.Errorf("invalid status %q: %w", *req.Status, apperr.ErrValidation)
		}
		// Keep paid_date consistent with status on manual edits too.
		if *req.Status == model.InvoiceStatusPaid && invoice.Status != model.InvoiceStatusPaid {
			paid := today()
			invoice.PaidDate = &paid
		}
		if *req.Status == model.InvoiceStatusUnpaid {
			invoice.PaidDate = nil
		}
		invoice.Status = *req.Status
	}
	if req.IssueDate != nil {
		issueDate, err := parseDate(*req.IssueDate)
		if err != nil {
			return InvoiceResponse{}, err
		}
		invoice.IssueDate = issueDate
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			invoice.DueDate = nil
		} else {
			parsed, err := parseDate(*req.DueDate)
			if err != nil {
				return InvoiceResponse{}, err
			}
			invoice.DueDate = &parsed
		}
	}
	if req.TaxRate != nil {
		taxRate, err := decimal.NewFromString(*req.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return InvoiceResponse{}, fmt.Errorf("invalid tax_rate: %w", apperr.ErrValidation)
		}
		invoice.TaxRate = taxRate
	}
	if req.ClientID != nil {
		if *req.ClientID == "" {
			invoice.ClientID = nil
		} else {
			parsed, err := uuid.Parse(*req.ClientID)
			if err != nil {
				return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", apperr.ErrValidation)
			}
			if _, err := s.clientRepo.FindByID(ctx, tenantID, parsed); err != nil {
				return InvoiceResponse{}, fmt.Errorf("client not found: %w", apperr.ErrValidation)
			}
			invoice.ClientID = &parsed
		}
	}
	if req.InvoiceNumber != nil {
		if *req.InvoiceNumber == "" {
			return InvoiceResponse{}, fmt.Errorf("invoice_number cannot be empty: %w", apperr.ErrValidation)
		}
		invoice.InvoiceNumber = *req.InvoiceNumber
	}

	var items []parsedItem
	if req.Items != nil {
		if items, err = parseLineItems(*req.Items); err != nil {
			return InvoiceResponse{}, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.invoiceRepo.ExistsByNumber(txCtx, tenantID, invoice.InvoiceNumber, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return fmt.Errorf("invoice number %s is already in use: %w", invoice.InvoiceNumber, apperr.ErrConflict)
		}

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		if req.Items != nil {
			if err := s.invoiceRepo.DeleteItems(txCtx, invoice.ID); err != nil {
				return fmt.Errorf("failed to delete old items: %w", err)
			}
			if err := s.invoiceRepo.CreateItems(txCtx, toInvoiceItems(invoice.ID, items)); err != nil {
				return fmt.Errorf("failed to create items: %w", err)
			}
		}
		return recalcInvoiceTotals(txCtx, s.invoiceRepo, invoice.ID, invoice.TaxRate)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.logActivity(ctx, tenantID, model.ActionUpdateInvoice, invoice.ID.String(), invoice.InvoiceNumber, invoice.Title)
	s.hub.Publish(tenantID, websocket.Event{Type: "invoice.updated", EntityID: invoice.ID.String(), Number: invoice.InvoiceNumber, Status: invoice.Status})

	return s.respond(ctx, tenantID, invoice.ID)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, tenantID uuid.UUID, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to load invoice: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Delete(txCtx, tenantID, invoiceID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.logActivity(ctx, tenantID, model.ActionDeleteInvoice, invoiceID.String(), invoice.InvoiceNumber, invoice.Title)
	return nil
}

// MarkPaid records today as the payment date. Marking an already paid invoice
// paid again refreshes nothing; the original paid date is kept.
func (s *invoiceService) MarkPaid(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load invoice: %w", err)
	}

	if invoice.Status != model.InvoiceStatusPaid {
		paid := today()
		invoice.Status = model.InvoiceStatusPaid
		invoice.PaidDate = &paid
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return InvoiceResponse{}, fmt.Errorf("failed to mark invoice paid: %w", err)
		}
		s.logActivity(ctx, tenantID, model.ActionMarkInvoicePaid, invoice.ID.String(), invoice.InvoiceNumber, invoice.Title)
		s.hub.Publish(tenantID, websocket.Event{Type: "invoice.paid", EntityID: invoice.ID.String(), Number: invoice.InvoiceNumber, Status: invoice.Status})
	}

	return s.respond(ctx, tenantID, invoice.ID)
}

func (s *invoiceService) MarkUnpaid(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load invoice: %w", err)
	}

	if invoice.Status != model.InvoiceStatusUnpaid {
		invoice.Status = model.InvoiceStatusUnpaid
		invoice.PaidDate = nil
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return InvoiceResponse{}, fmt.Errorf("failed to mark invoice unpaid: %w", err)
		}
		s.logActivity(ctx, tenantID, model.ActionMarkInvoiceUnpaid, invoice.ID.String(), invoice.InvoiceNumber, invoice.Title)
		s.hub.Publish(tenantID, websocket.Event{Type: "invoice.unpaid", EntityID: invoice.ID.String(), Number: invoice.InvoiceNumber, Status: invoice.Status})
	}

	return s.respond(ctx, tenantID, invoice.ID)
}

func (s *invoiceService) SetArchived(ctx context.Context, tenantID uuid.UUID, id string, archived bool) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", apperr.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load invoice: %w", err)
	}

	if archived {
		now := time.Now()
		invoice.ArchivedAt = &now
	} else {
		invoice.ArchivedAt = nil
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	return s.respond(ctx, tenantID, invoice.ID)
}

// --- Helpers ---

func recalcInvoiceTotals(ctx context.Context, repo repository.InvoiceRepository, invoiceID uuid.UUID, taxRate decimal.Decimal) error {
	items, err := repo.FindItems(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to load items for totals: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, item.Amount)
	}
	subtotal, taxAmount, total := ComputeTotals(amounts, taxRate)
	return repo.UpdateTotals(ctx, invoiceID, subtotal, taxAmount, total)
}

func (s *invoiceService) respond(ctx context.Context, tenantID, invoiceID uuid.UUID) (InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDWithItems(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load invoice: %w", err)
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) logActivity(ctx context.Context, tenantID uuid.UUID, action, entityID, entityName, details string) {
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

func toInvoiceItems(invoiceID uuid.UUID, items []parsedItem) []model.InvoiceItem {
	rows := make([]model.InvoiceItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, model.InvoiceItem{
			InvoiceID:   invoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			SortOrder:   item.SortOrder,
		})
	}
	return rows
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		ClientID:         inv.ClientID,
		SourceEstimateID: inv.SourceEstimateID,
		Title:            inv.Title,
		Description:      inv.Description,
		Status:           inv.Status,
		Overdue:          isOverdue(inv),
		IssueDate:        inv.IssueDate.Format(dateLayout),
		Subtotal:         inv.Subtotal.StringFixed(2),
		TaxRate:          inv.TaxRate.String(),
		TaxAmount:        inv.TaxAmount.StringFixed(2),
		Total:            inv.Total.StringFixed(2),
		Notes:            inv.Notes,
		JobSiteAddress:   inv.JobSiteAddress,
		Items:            make([]LineItemResponse, 0, len(inv.Items)),
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Client != nil {
		resp.ClientName = inv.Client.Name
	}
	if inv.DueDate != nil {
		v := inv.DueDate.Format(dateLayout)
		resp.DueDate = &v
	}
	if inv.PaidDate != nil {
		v := inv.PaidDate.Format(dateLayout)
		resp.PaidDate = &v
	}
	if inv.ArchivedAt != nil {
		v := inv.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &v
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice.String(),
			Amount:      item.Amount.String(),
			SortOrder:   item.SortOrder,
		})
	}
	return resp
}

// isOverdue holds exactly when the invoice is unpaid, has a due date, and that
// date is strictly before today.
func isOverdue(inv model.Invoice) bool {
	if inv.Status != model.InvoiceStatusUnpaid || inv.DueDate == nil {
		return false
	}
	return inv.DueDate.Before(today())
}
