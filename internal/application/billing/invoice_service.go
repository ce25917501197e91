package billing

import (
	"context"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService provides application-level invoice operations. Reads of
// sent invoices lazily derive overdue status; there is no background job.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	clients     billing.ClientDirectory
	projects    billing.ProjectDirectory
	clock       shared.Clock
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	clients billing.ClientDirectory,
	projects billing.ProjectDirectory,
	clock shared.Clock,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clients:     clients,
		projects:    projects,
		clock:       clock,
	}
}

// InvoiceItemResponse represents an invoice line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// InvoiceTermResponse represents an installment term in API responses
type InvoiceTermResponse struct {
	ID         uuid.UUID       `json:"id"`
	Sequence   int             `json:"sequence"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Status     string          `json:"status"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID             `json:"id"`
	InvoiceNumber    string                `json:"invoice_number"`
	ClientID         uuid.UUID             `json:"client_id"`
	ProjectID        *uuid.UUID            `json:"project_id,omitempty"`
	IssueDate        time.Time             `json:"issue_date"`
	DueDate          time.Time             `json:"due_date"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	TaxRate          decimal.Decimal       `json:"tax_rate"`
	TaxAmount        decimal.Decimal       `json:"tax_amount"`
	Total            decimal.Decimal       `json:"total"`
	PaidAmount       decimal.Decimal       `json:"paid_amount"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	Status           string                `json:"status"`
	Notes            string                `json:"notes,omitempty"`
	Items            []InvoiceItemResponse `json:"items"`
	Terms            []InvoiceTermResponse `json:"terms"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Version          int                   `json:"version"`
}

// InvoiceItemRequest is one line item in a create/update request
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID            `json:"client_id" binding:"required"`
	ProjectID *uuid.UUID           `json:"project_id"`
	IssueDate time.Time            `json:"issue_date" binding:"required"`
	DueDate   time.Time            `json:"due_date" binding:"required"`
	TaxRate   decimal.Decimal      `json:"tax_rate"`
	Notes     string               `json:"notes"`
	Items     []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest represents a request to update invoice header fields
type UpdateInvoiceRequest struct {
	DueDate *time.Time `json:"due_date"`
	Notes   *string    `json:"notes"`
}

// AddTermsRequest represents a request to attach installment terms
type AddTermsRequest struct {
	Terms []TermRequest `json:"terms" binding:"required"`
}

// TermRequest is one installment in an AddTermsRequest
type TermRequest struct {
	Percentage decimal.Decimal `json:"percentage" binding:"required"`
	DueDate    time.Time       `json:"due_date" binding:"required"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status"`
	ClientID  *uuid.UUID `form:"client_id"`
	ProjectID *uuid.UUID `form:"project_id"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreateInvoice creates a new draft invoice with its line items
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	exists, err := s.clients.ClientExists(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Client not found")
	}
	if req.ProjectID != nil {
		project, err := s.projects.FindProject(ctx, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, shared.NewDomainError(shared.CodeNotFound, "Project not found")
		}
		if project.ClientID != req.ClientID {
			return nil, shared.NewDomainError(shared.CodeInvalidReference,
				"Project does not belong to the client")
		}
	}

	number, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, req.IssueDate)
	if err != nil {
		return nil, err
	}
	invoice, err := billing.NewInvoice(number, req.ClientID, req.ProjectID, req.IssueDate, req.DueDate, req.TaxRate, req.Notes)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if _, err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// GetInvoiceByID loads an invoice, deriving overdue status as a side effect
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// ListInvoices lists invoices with pagination. Overdue derivation is applied
// to each returned invoice and persisted when it changed anything.
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := billing.InvoiceFilter{
		Filter:     shared.DefaultFilter(),
		Status:     billing.InvoiceStatus(filter.Status),
		ClientID:   filter.ClientID,
		ProjectID:  filter.ProjectID,
		IssuedFrom: filter.FromDate,
		IssuedTo:   filter.ToDate,
	}
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		if invoices[i].RefreshOverdue(now) {
			if err := s.invoiceRepo.Save(ctx, &invoices[i]); err != nil {
				return nil, err
			}
		}
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.Limit())
	return &result, nil
}

// UpdateInvoice updates header fields of a not-yet-paid invoice
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Notes != nil {
		if err := invoice.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}
	if req.DueDate != nil {
		if invoice.Status == billing.InvoiceStatusPaid || invoice.Status == billing.InvoiceStatusCancelled {
			return nil, shared.NewDomainError(shared.CodeImmutableInvoice, "Cannot modify a finalized invoice")
		}
		if req.DueDate.Before(invoice.IssueDate) {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Due date cannot be before issue date")
		}
		invoice.DueDate = *req.DueDate
		invoice.IncrementVersion()
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// DeleteInvoice deletes an invoice that has no payments
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	payments, err := s.paymentRepo.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if len(payments) > 0 {
		return shared.NewDomainError(shared.CodeIntegrityViolation,
			"Cannot delete an invoice that has payments")
	}
	return s.invoiceRepo.Delete(ctx, invoice.ID)
}

// ChangeStatus transitions the invoice per the status table
func (s *InvoiceService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.ChangeStatus(billing.InvoiceStatus(status)); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// AddItem appends a line item to the invoice
func (s *InvoiceService) AddItem(ctx context.Context, id uuid.UUID, req InvoiceItemRequest) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := invoice.AddItem(req.Description, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// UpdateItem mutates a line item
func (s *InvoiceService) UpdateItem(ctx context.Context, id, itemID uuid.UUID, req InvoiceItemRequest) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.UpdateItem(itemID, req.Description, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// RemoveItem deletes a line item
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// AddTerms attaches installment terms to the invoice
func (s *InvoiceService) AddTerms(ctx context.Context, id uuid.UUID, req AddTermsRequest) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	specs := make([]billing.TermSpec, len(req.Terms))
	for i, t := range req.Terms {
		specs[i] = billing.TermSpec{Percentage: t.Percentage, DueDate: t.DueDate}
	}
	if _, err := invoice.AddTerms(specs); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// RemoveTerm deletes an unpaid installment term
func (s *InvoiceService) RemoveTerm(ctx context.Context, id, termID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.loadRefreshed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.RemoveTerm(termID); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// loadRefreshed loads an invoice and persists any lazy overdue transition
func (s *InvoiceService) loadRefreshed(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.RefreshOverdue(s.clock.Now()) {
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return nil, err
		}
	}
	return invoice, nil
}

func toInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}
	terms := make([]InvoiceTermResponse, len(inv.Terms))
	for i, term := range inv.Terms {
		terms[i] = InvoiceTermResponse{
			ID:         term.ID,
			Sequence:   term.Sequence,
			Percentage: term.Percentage,
			Amount:     term.Amount,
			DueDate:    term.DueDate,
			Status:     term.Status.String(),
		}
	}
	return &InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		ClientID:         inv.ClientID,
		ProjectID:        inv.ProjectID,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		Subtotal:         inv.Subtotal,
		TaxRate:          inv.TaxRate,
		TaxAmount:        inv.TaxAmount,
		Total:            inv.Total,
		PaidAmount:       inv.PaidAmount,
		RemainingBalance: inv.RemainingBalance(),
		Status:           inv.Status.String(),
		Notes:            inv.Notes,
		Items:            items,
		Terms:            terms,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}
