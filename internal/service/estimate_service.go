package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"buildledger/internal/apperr"
	"buildledger/internal/mailer"
	"buildledger/internal/model"
	"buildledger/internal/repository"
	"buildledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateEstimateRequest struct {
	ClientID       string            `json:"client_id"`
	EstimateNumber string            `json:"estimate_number"` // blank = suggest one
	Title          string            `json:"title" binding:"required"`
	Description    string            `json:"description"`
	IssueDate      string            `json:"issue_date"` // YYYY-MM-DD, blank = today
	ValidUntil     string            `json:"valid_until"`
	TaxRate        string            `json:"tax_rate"`
	Notes          string            `json:"notes"`
	JobSiteAddress string            `json:"job_site_address"`
	Items          []LineItemPayload `json:"items"`
}

// UpdateEstimateRequest replaces the full line-item set whenever Items is
// non-nil; individual items are never patched in place.
type UpdateEstimateRequest struct {
	ClientID       *string            `json:"client_id"` // empty string detaches the client
	EstimateNumber *string            `json:"estimate_number"`
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Status         *string            `json:"status"`
	IssueDate      *string            `json:"issue_date"`
	ValidUntil     *string            `json:"valid_until"` // empty string clears
	TaxRate        *string            `json:"tax_rate"`
	Notes          *string            `json:"notes"`
	JobSiteAddress *string            `json:"job_site_address"`
	Items          *[]LineItemPayload `json:"items"`
}

type EstimateFilter struct {
	Status   string
	Search   string
	Archived bool
	Page     int
	Limit    int
}

type EstimateResponse struct {
	ID             uuid.UUID          `json:"id"`
	EstimateNumber string             `json:"estimate_number"`
	ClientID       *uuid.UUID         `json:"client_id"`
	ClientName     string             `json:"client_name,omitempty"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Status         string             `json:"status"`
	IssueDate      string             `json:"issue_date"`
	ValidUntil     *string            `json:"valid_until"`
	Subtotal       string             `json:"subtotal"`
	TaxRate        string             `json:"tax_rate"`
	TaxAmount      string             `json:"tax_amount"`
	Total          string             `json:"total"`
	Notes          string             `json:"notes"`
	JobSiteAddress string             `json:"job_site_address"`
	ArchivedAt     *string            `json:"archived_at"`
	Items          []LineItemResponse `json:"items"`
	CreatedAt      string             `json:"created_at"`
}

// --- Interface ---

type EstimateService interface {
	CreateEstimate(ctx context.Context, tenantID uuid.UUID, req CreateEstimateRequest) (EstimateResponse, error)
	GetEstimate(ctx context.Context, tenantID uuid.UUID, id string) (EstimateResponse, error)
	ListEstimates(ctx context.Context, tenantID uuid.UUID, filter EstimateFilter) ([]EstimateResponse, int64, error)
	UpdateEstimate(ctx context.Context, tenantID uuid.UUID, id string, req UpdateEstimateRequest) (EstimateResponse, error)
	DeleteEstimate(ctx context.Context, tenantID uuid.UUID, id string) error
	SendEstimate(ctx context.Context, tenantID uuid.UUID, id string) (EstimateResponse, error)
	ConvertToInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error)
	SetArchived(ctx context.Context, tenantID uuid.UUID, id string, archived bool) (EstimateResponse, error)
}

type estimateService struct {
	estimateRepo repository.EstimateRepository
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	activityRepo repository.ActivityRepository
	txManager    repository.TransactionManager
	mailer       mailer.Mailer
	hub          *websocket.Hub
}

func NewEstimateService(
	estimateRepo repository.EstimateRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	activityRepo repository.ActivityRepository,
	txManager repository.TransactionManager,
	m mailer.Mailer,
	hub *websocket.Hub,
) EstimateService {
	return &estimateService{
		estimateRepo: estimateRepo,
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		activityRepo: activityRepo,
		txManager:    txManager,
		mailer:       m,
		hub:          hub,
	}
}

var validEstimateStatuses = map[string]bool{
	model.EstimateStatusDraft:    true,
	model.EstimateStatusSent:     true,
	model.EstimateStatusApproved: true,
	model.EstimateStatusDeclined: true,
}

// --- Implementation ---

func (s *estimateService) CreateEstimate(ctx context.Context, tenantID uuid.UUID, req CreateEstimateRequest) (EstimateResponse, error) {
	if req.Title == "" {
		return EstimateResponse{}, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}

	items, err := parseLineItems(req.Items)
	if err != nil {
		return EstimateResponse{}, err
	}

	taxRate := decimal.Zero
	if req.TaxRate != "" {
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return EstimateResponse{}, fmt.Errorf("invalid tax_rate: %w", apperr.ErrValidation)
		}
	}

	issueDate := today()
	if req.IssueDate != "" {
		if issueDate, err = parseDate(req.IssueDate); err != nil {
			return EstimateResponse{}, err
		}
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, err := parseDate(req.ValidUntil)
		if err != nil {
			return EstimateResponse{}, err
		}
		validUntil = &parsed
	}

	var clientID *uuid.UUID
	if req.ClientID != "" {
		parsed, err := uuid.Parse(req.ClientID)
		if err != nil {
			return EstimateResponse{}, fmt.Errorf("invalid client_id: %w", apperr.ErrValidation)
		}
		if _, err := s.clientRepo.FindByID(ctx, tenantID, parsed); err != nil {
			return EstimateResponse{}, fmt.Errorf("client not found: %w", apperr.ErrValidation)
		}
		clientID = &parsed
	}

	number := req.EstimateNumber
	if number == "" {
		number = NextDocumentNumber(EstimateNumberPrefix)
	}

	estimate := &model.Estimate{
		TenantID:       tenantID,
		ClientID:       clientID,
		EstimateNumber: number,
		Title:          req.Title,
		Description:    req.Description,
		Status:         model.EstimateStatusDraft,
		IssueDate:      issueDate,
		ValidUntil:     validUntil,
		TaxRate:        taxRate,
		Notes:          req.Notes,
		JobSiteAddress: req.JobSiteAddress,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.estimateRepo.ExistsByNumber(txCtx, tenantID, number, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check estimate number: %w", err)
		}
		if taken {
			return fmt.Errorf("estimate number %s is already in use: %w", number, apperr.ErrConflict)
		}

		if err := s.estimateRepo.Create(txCtx, estimate); err != nil {
			return fmt.Errorf("failed to create estimate: %w", err)
		}
		if err := s.estimateRepo.CreateItems(txCtx, toEstimateItems(estimate.ID, items)); err != nil {
			return fmt.Errorf("failed to create estimate items: %w", err)
		}
		return s.recalcEstimateTotals(txCtx, estimate.ID, taxRate)
	})
	if err != nil {
		return EstimateResponse{}, err
	}

	s.logActivity(ctx, tenantID, model.ActionCreateEstimate, estimate.ID.String(), estimate.EstimateNumber, estimate.Title)

	return s.respond(ctx, tenantID, estimate.ID)
}

func (s *estimateService) GetEstimate(ctx context.Context, tenantID uuid.UUID, id string) (EstimateResponse, error) {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return EstimateResponse{}, fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}
	return s.respond(ctx, tenantID, estimateID)
}

func (s *estimateService) ListEstimates(ctx context.Context, tenantID uuid.UUID, filter EstimateFilter) ([]EstimateResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !validEstimateStatuses[filter.Status] {
		return nil, 0, fmt.Errorf("invalid status filter: %w", apperr.ErrValidation)
	}

	estimates, total, err := s.estimateRepo.List(ctx, tenantID, repository.EstimateListFilter{
		Status:   filter.Status,
		Search:   filter.Search,
		Archived: filter.Archived,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch estimates: %w", err)
	}

	result := make([]EstimateResponse, 0, len(estimates))
	for _, est := range estimates {
		result = append(result, toEstimateResponse(est))
	}
	return result, total, nil
}

func (s *estimateService) UpdateEstimate(ctx context.Context, tenantID uuid.UUID, id string, req UpdateEstimateRequest) (EstimateResponse, error) {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return EstimateResponse{}, fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}

	estimate, err := s.estimateRepo.FindByID(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EstimateResponse{}, fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return EstimateResponse{}, fmt.Errorf("failed to load estimate: %w", err)
	}

	if req.Title != nil {
		if *req.Title == "" {
			return EstimateResponse{}, fmt.Errorf("title cannot be empty: %w", apperr.ErrValidation)
		}
		estimate.Title = *req.Title
	}
	if req.Description != nil {
		estimate.Description = *req.Description
	}
	if req.Notes != nil {
		estimate.Notes = *req.Notes
	}
	if req.JobSiteAddress != nil {
		estimate.JobSiteAddress = *req.JobSiteAddress
	}
	statusChanged := false
	if req.Status != nil {
		// The detail view allows arbitrary manual status overrides,
		// including moving a declined estimate back to draft.
		if !validEstimateStatuses[*req.Status] {
			return EstimateResponse{}, fmt.Errorf("invalid status %q: %w", *req.Status, apperr.ErrValidation)
		}
		statusChanged = estimate.Status != *req.Status
		estimate.Status = *req.Status
	}
	if req.IssueDate != nil {
		issueDate, err := parseDate(*req.IssueDate)
		if err != nil {
			return EstimateResponse{}, err
		}
		estimate.IssueDate = issueDate
	}
	if req.ValidUntil != nil {
		if *req.ValidUntil == "" {
			estimate.ValidUntil = nil
		} else {
			parsed, err := parseDate(*req.ValidUntil)
			if err != nil {
				return EstimateResponse{}, err
			}
			estimate.ValidUntil = &parsed
		}
	}
	if req.TaxRate != nil {
		taxRate, err := decimal.NewFromString(*req.TaxRate)
		if err != nil || taxRate.IsNegative() {
			return EstimateResponse{}, fmt.Errorf("invalid tax_rate: %w", apperr.ErrValidation)
		}
		estimate.TaxRate = taxRate
	}
	if req.ClientID != nil {
		if *req.ClientID == "" {
			estimate.ClientID = nil
		} else {
			parsed, err := uuid.Parse(*req.ClientID)
			if err != nil {
				return EstimateResponse{}, fmt.Errorf("invalid client_id: %w", apperr.ErrValidation)
			}
			if _, err := s.clientRepo.FindByID(ctx, tenantID, parsed); err != nil {
				return EstimateResponse{}, fmt.Errorf("client not found: %w", apperr.ErrValidation)
			}
			estimate.ClientID = &parsed
		}
	}
	if req.EstimateNumber != nil {
		if *req.EstimateNumber == "" {
			return EstimateResponse{}, fmt.Errorf("estimate_number cannot be empty: %w", apperr.ErrValidation)
		}
		estimate.EstimateNumber = *req.EstimateNumber
	}

	var items []parsedItem
	if req.Items != nil {
		if items, err = parseLineItems(*req.Items); err != nil {
			return EstimateResponse{}, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.estimateRepo.ExistsByNumber(txCtx, tenantID, estimate.EstimateNumber, estimate.ID)
		if err != nil {
			return fmt.Errorf("failed to check estimate number: %w", err)
		}
		if taken {
			return fmt.Errorf("estimate number %s is already in use: %w", estimate.EstimateNumber, apperr.ErrConflict)
		}

		if err := s.estimateRepo.Update(txCtx, estimate); err != nil {
			return fmt.Errorf("failed to update estimate: %w", err)
		}

		// Replace the whole item set; the edit form always submits every row.
		if req.Items != nil {
			if err := s.estimateRepo.DeleteItems(txCtx, estimate.ID); err != nil {
				return fmt.Errorf("failed to delete old items: %w", err)
			}
			if err := s.estimateRepo.CreateItems(txCtx, toEstimateItems(estimate.ID, items)); err != nil {
				return fmt.Errorf("failed to create items: %w", err)
			}
		}
		return s.recalcEstimateTotals(txCtx, estimate.ID, estimate.TaxRate)
	})
	if err != nil {
		return EstimateResponse{}, err
	}

	if statusChanged {
		s.logActivity(ctx, tenantID, model.ActionEstimateStatus, estimate.ID.String(), estimate.EstimateNumber, "status set to "+estimate.Status)
	} else {
		s.logActivity(ctx, tenantID, model.ActionUpdateEstimate, estimate.ID.String(), estimate.EstimateNumber, estimate.Title)
	}
	s.hub.Publish(tenantID, websocket.Event{Type: "estimate.updated", EntityID: estimate.ID.String(), Number: estimate.EstimateNumber, Status: estimate.Status})

	return s.respond(ctx, tenantID, estimate.ID)
}

func (s *estimateService) DeleteEstimate(ctx context.Context, tenantID uuid.UUID, id string) error {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}

	estimate, err := s.estimateRepo.FindByID(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return fmt.Errorf("failed to load estimate: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.estimateRepo.Delete(txCtx, tenantID, estimateID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete estimate: %w", err)
	}

	s.logActivity(ctx, tenantID, model.ActionDeleteEstimate, estimateID.String(), estimate.EstimateNumber, estimate.Title)
	return nil
}

// SendEstimate emails the estimate to its client and marks it sent. The
// document state is already persisted before dispatch; a failed send leaves
// everything as it was and surfaces as a recoverable dispatch error.
func (s *estimateService) SendEstimate(ctx context.Context, tenantID uuid.UUID, id string) (EstimateResponse, error) {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return EstimateResponse{}, fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}

	estimate, err := s.estimateRepo.FindByIDWithItems(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EstimateResponse{}, fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return EstimateResponse{}, fmt.Errorf("failed to load estimate: %w", err)
	}

	if estimate.Client == nil || estimate.Client.Email == "" {
		return EstimateResponse{}, fmt.Errorf("estimate has no client email to send to: %w", apperr.ErrValidation)
	}

	subject := fmt.Sprintf("Estimate %s - %s", estimate.EstimateNumber, estimate.Title)
	if err := s.mailer.Send(estimate.Client.Email, subject, estimateEmailBody(estimate)); err != nil {
		return EstimateResponse{}, fmt.Errorf("could not email estimate %s: %v: %w", estimate.EstimateNumber, err, apperr.ErrDispatch)
	}

	estimate.Status = model.EstimateStatusSent
	if err := s.estimateRepo.Update(ctx, estimate); err != nil {
		return EstimateResponse{}, fmt.Errorf("failed to mark estimate sent: %w", err)
	}

	s.logActivity(ctx, tenantID, model.ActionSendEstimate, estimate.ID.String(), estimate.EstimateNumber, "sent to "+estimate.Client.Email)
	s.hub.Publish(tenantID, websocket.Event{Type: "estimate.sent", EntityID: estimate.ID.String(), Number: estimate.EstimateNumber, Status: estimate.Status})

	return s.respond(ctx, tenantID, estimate.ID)
}

// ConvertToInvoice materializes a new invoice from an approved estimate. The
// invoice totals are recomputed from the copied items, not copied from the
// estimate, so they always reflect the item set at conversion time. The
// source estimate is left untouched and may be converted again.
func (s *estimateService) ConvertToInvoice(ctx context.Context, tenantID uuid.UUID, id string) (InvoiceResponse, error) {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}

	estimate, err := s.estimateRepo.FindByIDWithItems(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InvoiceResponse{}, fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return InvoiceResponse{}, fmt.Errorf("failed to load estimate: %w", err)
	}

	if estimate.Status != model.EstimateStatusApproved {
		return InvoiceResponse{}, fmt.Errorf("only approved estimates can be converted, status is %s: %w", estimate.Status, apperr.ErrValidation)
	}

	issueDate := today()
	dueDate := issueDate.AddDate(0, 0, 30)
	number := NextDocumentNumber(InvoiceNumberPrefix)

	invoice := &model.Invoice{
		TenantID:         tenantID,
		ClientID:         estimate.ClientID,
		SourceEstimateID: &estimate.ID,
		InvoiceNumber:    number,
		Title:            estimate.Title,
		Description:      estimate.Description,
		Status:           model.InvoiceStatusUnpaid,
		IssueDate:        issueDate,
		DueDate:          &dueDate,
		TaxRate:          estimate.TaxRate,
		Notes:            estimate.Notes,
		JobSiteAddress:   estimate.JobSiteAddress,
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

		copied := make([]model.InvoiceItem, 0, len(estimate.Items))
		for _, item := range estimate.Items {
			copied = append(copied, model.InvoiceItem{
				InvoiceID:   invoice.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
				UnitPrice:   item.UnitPrice,
				Amount:      item.Quantity.Mul(item.UnitPrice),
				SortOrder:   item.SortOrder,
			})
		}
		if err := s.invoiceRepo.CreateItems(txCtx, copied); err != nil {
			return fmt.Errorf("failed to copy items: %w", err)
		}

		return recalcInvoiceTotals(txCtx, s.invoiceRepo, invoice.ID, invoice.TaxRate)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.logActivity(ctx, tenantID, model.ActionConvertEstimate, estimate.ID.String(), estimate.EstimateNumber, "converted to "+invoice.InvoiceNumber)
	s.hub.Publish(tenantID, websocket.Event{Type: "estimate.converted", EntityID: invoice.ID.String(), Number: invoice.InvoiceNumber, Status: invoice.Status})

	created, err := s.invoiceRepo.FindByIDWithItems(ctx, tenantID, invoice.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toInvoiceResponse(*created), nil
}

// SetArchived toggles the archive flag. Archiving hides the estimate from
// default list views without touching status or totals.
func (s *estimateService) SetArchived(ctx context.Context, tenantID uuid.UUID, id string, archived bool) (EstimateResponse, error) {
	estimateID, err := uuid.Parse(id)
	if err != nil {
		return EstimateResponse{}, fmt.Errorf("invalid estimate id: %w", apperr.ErrValidation)
	}

	estimate, err := s.estimateRepo.FindByID(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EstimateResponse{}, fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return EstimateResponse{}, fmt.Errorf("failed to load estimate: %w", err)
	}

	if archived {
		now := time.Now()
		estimate.ArchivedAt = &now
	} else {
		estimate.ArchivedAt = nil
	}

	if err := s.estimateRepo.Update(ctx, estimate); err != nil {
		return EstimateResponse{}, fmt.Errorf("failed to update estimate: %w", err)
	}

	return s.respond(ctx, tenantID, estimate.ID)
}

// --- Helpers ---

// recalcEstimateTotals is the mandatory post-write step after any line-item
// mutation; it must run in the same transaction as the mutation. When the
// parent row is already gone the update matches nothing, which is the
// intended no-op.
func (s *estimateService) recalcEstimateTotals(ctx context.Context, estimateID uuid.UUID, taxRate decimal.Decimal) error {
	items, err := s.estimateRepo.FindItems(ctx, estimateID)
	if err != nil {
		return fmt.Errorf("failed to load items for totals: %w", err)
	}
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		amounts = append(amounts, item.Amount)
	}
	subtotal, taxAmount, total := ComputeTotals(amounts, taxRate)
	return s.estimateRepo.UpdateTotals(ctx, estimateID, subtotal, taxAmount, total)
}

func (s *estimateService) respond(ctx context.Context, tenantID, estimateID uuid.UUID) (EstimateResponse, error) {
	estimate, err := s.estimateRepo.FindByIDWithItems(ctx, tenantID, estimateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EstimateResponse{}, fmt.Errorf("estimate not found: %w", apperr.ErrNotFound)
		}
		return EstimateResponse{}, fmt.Errorf("failed to load estimate: %w", err)
	}
	return toEstimateResponse(*estimate), nil
}

func (s *estimateService) logActivity(ctx context.Context, tenantID uuid.UUID, action, entityID, entityName, details string) {
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

func toEstimateItems(estimateID uuid.UUID, items []parsedItem) []model.EstimateItem {
	rows := make([]model.EstimateItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, model.EstimateItem{
			EstimateID:  estimateID,
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

func estimateEmailBody(est *model.Estimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimate %s\n%s\n\n", est.EstimateNumber, est.Title)
	if est.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", est.Description)
	}
	for _, item := range est.Items {
		fmt.Fprintf(&b, "%s - %s %s @ %s = %s\n",
			item.Description, item.Quantity.String(), item.Unit,
			item.UnitPrice.StringFixed(2), item.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\nTax (%s%%): %s\nTotal: %s\n",
		est.Subtotal.StringFixed(2), est.TaxRate.String(),
		est.TaxAmount.StringFixed(2), est.Total.StringFixed(2))
	if est.ValidUntil != nil {
		fmt.Fprintf(&b, "\nValid until %s\n", est.ValidUntil.Format(dateLayout))
	}
	return b.String()
}

// --- Mapping ---

func toEstimateResponse(est model.Estimate) EstimateResponse {
	resp := EstimateResponse{
		ID:             est.ID,
		EstimateNumber: est.EstimateNumber,
		ClientID:       est.ClientID,
		Title:          est.Title,
		Description:    est.Description,
		Status:         est.Status,
		IssueDate:      est.IssueDate.Format(dateLayout),
		Subtotal:       est.Subtotal.StringFixed(2),
		TaxRate:        est.TaxRate.String(),
		TaxAmount:      est.TaxAmount.StringFixed(2),
		Total:          est.Total.StringFixed(2),
		Notes:          est.Notes,
		JobSiteAddress: est.JobSiteAddress,
		Items:          make([]LineItemResponse, 0, len(est.Items)),
		CreatedAt:      est.CreatedAt.Format(time.RFC3339),
	}
	if est.Client != nil {
		resp.ClientName = est.Client.Name
	}
	if est.ValidUntil != nil {
		v := est.ValidUntil.Format(dateLayout)
		resp.ValidUntil = &v
	}
	if est.ArchivedAt != nil {
		v := est.ArchivedAt.Format(time.RFC3339)
		resp.ArchivedAt = &v
	}
	for _, item := range est.Items {
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
