package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService orchestrates payment writes. Every mutation runs inside one
// transaction scope so the payment row, its invoice, the mirrored ledger
// entry and the account balance commit or roll back together.
type PaymentService struct {
	scope       TransactionScope
	paymentRepo billing.PaymentRepository
	clock       shared.Clock
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	paymentRepo billing.PaymentRepository,
	clock shared.Clock,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		paymentRepo: paymentRepo,
		clock:       clock,
	}
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	TermID        *uuid.UUID      `json:"term_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	RefundOfID    *uuid.UUID      `json:"refund_of_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	InvoiceID   uuid.UUID       `json:"invoice_id" binding:"required"`
	TermID      *uuid.UUID      `json:"term_id"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Method      string          `json:"method" binding:"required"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// UpdatePaymentRequest represents a request to update a payment
type UpdatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Method      string          `json:"method" binding:"required"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

// RefundRequest represents a request to refund part of a paid invoice
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason"`
	Date   time.Time       `json:"date" binding:"required"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	InvoiceID *uuid.UUID `form:"invoice_id"`
	Method    string     `form:"method"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// CreatePayment records a payment against an invoice. The payment, the
// invoice status change, the ledger mirror and the account balance update are
// one atomic unit; any validation failure leaves nothing persisted.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = s.createPaymentInScope(ctx, repos, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// BulkApply records several payments as one atomic unit. Any single failure
// aborts the whole batch with no partial application.
func (s *PaymentService) BulkApply(ctx context.Context, reqs []CreatePaymentRequest) ([]PaymentResponse, error) {
	if len(reqs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one payment is required")
	}
	responses := make([]PaymentResponse, 0, len(reqs))
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, req := range reqs {
			payment, err := s.createPaymentInScope(ctx, repos, req)
			if err != nil {
				return err
			}
			responses = append(responses, *toPaymentResponse(payment))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *PaymentService) createPaymentInScope(ctx context.Context, repos TransactionalRepositories, req CreatePaymentRequest) (*billing.Payment, error) {
	invoice, err := repos.InvoiceRepo().FindByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	invoice.RefreshOverdue(s.clock.Now())

	if invoice.Status == billing.InvoiceStatusCancelled {
		return nil, shared.NewDomainError(shared.CodeImmutableInvoice,
			"Cannot record a payment on a cancelled invoice")
	}

	var term *billing.InvoiceTerm
	if req.TermID != nil {
		term = invoice.FindTerm(*req.TermID)
		if term == nil {
			return nil, shared.NewDomainError(shared.CodeInvalidReference,
				"Term does not belong to the invoice")
		}
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive")
	}
	if req.Amount.GreaterThan(invoice.RemainingBalance()) {
		return nil, shared.NewDomainError(shared.CodeOverPayment,
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s",
				req.Amount.String(), invoice.RemainingBalance().String()))
	}

	number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, req.PaymentDate)
	if err != nil {
		return nil, err
	}
	payment, err := billing.NewPayment(
		number,
		invoice.ID,
		req.TermID,
		req.Amount,
		req.PaymentDate,
		billing.PaymentMethod(req.Method),
		req.Reference,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.mirrorPayment(ctx, repos, invoice, payment); err != nil {
		return nil, err
	}

	invoice.ApplyPayment(payment.Amount)
	if term != nil && term.Status != billing.TermStatusPaid {
		paid, err := s.termPaidAmount(ctx, repos, invoice.ID, term.ID)
		if err != nil {
			return nil, err
		}
		if err := invoice.SettleTerm(term.ID, paid); err != nil {
			return nil, err
		}
	}
	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdatePayment changes a payment's details and keeps the ledger mirror and
// invoice status in sync. Blocked while the parent invoice is paid.
func (s *PaymentService) UpdatePayment(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	var payment *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if payment.IsRefund() {
			return shared.NewDomainError(shared.CodeNotRefundable,
				"Refund payments cannot be modified; delete the refund and issue a new one")
		}
		invoice, err := repos.InvoiceRepo().FindByID(ctx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == billing.InvoiceStatusPaid {
			return shared.NewDomainError(shared.CodeImmutableInvoice,
				"Cannot modify a payment of a paid invoice")
		}
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidAmount, "Payment amount must be positive")
		}
		// The payment's own prior contribution is undone before checking
		// the ceiling.
		allowance := invoice.RemainingBalance().Add(payment.Amount)
		if req.Amount.GreaterThan(allowance) {
			return shared.NewDomainError(shared.CodeOverPayment,
				fmt.Sprintf("Payment amount %s exceeds remaining balance %s",
					req.Amount.String(), allowance.String()))
		}

		oldAmount := payment.Amount
		if err := payment.Update(req.Amount, req.PaymentDate, billing.PaymentMethod(req.Method), req.Reference, req.Notes); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return err
		}

		mirror, err := repos.LedgerRepo().FindByPayment(ctx, payment.ID)
		if err != nil {
			return err
		}
		if err := mirror.SyncFromSource(payment.Amount.Abs(), payment.PaymentDate, mirrorDescription(payment)); err != nil {
			return err
		}
		if err := repos.LedgerRepo().Save(ctx, mirror); err != nil {
			return err
		}
		if err := s.recomputeBalance(ctx, repos, mirror.AccountID); err != nil {
			return err
		}

		invoice.RemovePayment(oldAmount)
		invoice.ApplyPayment(payment.Amount)
		if payment.TermID != nil {
			if err := s.reevaluateTerm(ctx, repos, invoice, *payment.TermID); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// DeletePayment removes a payment together with its ledger mirror. Unlike
// UpdatePayment this is allowed on paid invoices: the status is re-derived
// from the remaining payments, reverting paid back to sent when needed.
func (s *PaymentService) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		invoice, err := repos.InvoiceRepo().FindByID(ctx, payment.InvoiceID)
		if err != nil {
			return err
		}

		mirror, err := repos.LedgerRepo().FindByPayment(ctx, payment.ID)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Delete(ctx, mirror.ID); err != nil {
			return err
		}
		if err := s.recomputeBalance(ctx, repos, mirror.AccountID); err != nil {
			return err
		}

		if err := repos.PaymentRepo().Delete(ctx, payment.ID); err != nil {
			return err
		}

		invoice.RemovePayment(payment.Amount)
		if payment.TermID != nil {
			if err := s.reevaluateTerm(ctx, repos, invoice, *payment.TermID); err != nil {
				return err
			}
		}
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
}

// Refund creates a negative payment mirrored as an expense entry. The
// original payment is never mutated.
func (s *PaymentService) Refund(ctx context.Context, paymentID uuid.UUID, req RefundRequest) (*PaymentResponse, error) {
	var refund *billing.Payment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.PaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		invoice, err := repos.InvoiceRepo().FindByID(ctx, original.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != billing.InvoiceStatusPaid && !invoice.PaidAmount.IsPositive() {
			return shared.NewDomainError(shared.CodeNotRefundable,
				"Invoice has no payments to refund")
		}
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeInvalidAmount, "Refund amount must be positive")
		}

		number, err := repos.PaymentRepo().GeneratePaymentNumber(ctx, req.Date)
		if err != nil {
			return err
		}
		refund, err = billing.NewPayment(
			number,
			invoice.ID,
			nil,
			req.Amount.Neg(),
			req.Date,
			original.Method,
			original.Reference,
			req.Reason,
		)
		if err != nil {
			return err
		}
		refund.MarkRefundOf(original.ID)
		if err := repos.PaymentRepo().Save(ctx, refund); err != nil {
			return err
		}

		if err := s.mirrorPayment(ctx, repos, invoice, refund); err != nil {
			return err
		}

		invoice.ApplyPayment(refund.Amount)
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(refund), nil
}

// GetPaymentByID gets a payment by ID
func (s *PaymentService) GetPaymentByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// ListPayments lists payments with pagination
func (s *PaymentService) ListPayments(ctx context.Context, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := billing.PaymentFilter{
		Filter:    shared.DefaultFilter(),
		InvoiceID: filter.InvoiceID,
		Method:    billing.PaymentMethod(filter.Method),
		PaidFrom:  filter.FromDate,
		PaidTo:    filter.ToDate,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.Limit())
	return &result, nil
}

// mirrorPayment writes the ledger entry for a payment against the default
// income account. Refunds post as expense entries on the same account.
func (s *PaymentService) mirrorPayment(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, payment *billing.Payment) error {
	account, err := repos.AccountRepo().FindDefaultForType(ctx, ledger.AccountTypeIncome)
	if err != nil {
		return err
	}
	if account == nil {
		return shared.NewDomainError(shared.CodeConfigurationError,
			"No income account is configured for payment postings")
	}

	txType := ledger.TransactionTypeIncome
	if payment.IsRefund() {
		txType = ledger.TransactionTypeExpense
	}
	entry, err := ledger.NewTransaction(
		account.ID,
		txType,
		payment.Amount.Abs(),
		mirrorDescription(payment),
		payment.PaymentDate,
	)
	if err != nil {
		return err
	}
	entry.WithReferences(&invoice.ClientID, invoice.ProjectID, &invoice.ID, &payment.ID)
	if err := repos.LedgerRepo().Save(ctx, entry); err != nil {
		return err
	}
	return s.recomputeBalance(ctx, repos, account.ID)
}

func (s *PaymentService) recomputeBalance(ctx context.Context, repos TransactionalRepositories, accountID uuid.UUID) error {
	account, err := repos.AccountRepo().FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	sums, err := repos.LedgerRepo().SumByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	account.RecomputeBalance(sums.Income, sums.Expense)
	return repos.AccountRepo().Save(ctx, account)
}

// termPaidAmount sums the non-refund payments tagged to one term
func (s *PaymentService) termPaidAmount(ctx context.Context, repos TransactionalRepositories, invoiceID, termID uuid.UUID) (decimal.Decimal, error) {
	payments, err := repos.PaymentRepo().FindByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range payments {
		if payments[i].TermID != nil && *payments[i].TermID == termID {
			total = total.Add(payments[i].Amount)
		}
	}
	return total, nil
}

// reevaluateTerm settles or reopens a term after its tagged payments changed
func (s *PaymentService) reevaluateTerm(ctx context.Context, repos TransactionalRepositories, invoice *billing.Invoice, termID uuid.UUID) error {
	term := invoice.FindTerm(termID)
	if term == nil {
		return nil
	}
	paid, err := s.termPaidAmount(ctx, repos, invoice.ID, termID)
	if err != nil {
		return err
	}
	if term.Status == billing.TermStatusPaid && paid.LessThan(term.Amount) {
		return invoice.ReopenTerm(termID, s.clock.Now())
	}
	if term.Status != billing.TermStatusPaid && paid.GreaterThanOrEqual(term.Amount) {
		return invoice.SettleTerm(termID, paid)
	}
	return nil
}

func mirrorDescription(payment *billing.Payment) string {
	if payment.IsRefund() {
		return fmt.Sprintf("Refund %s", payment.PaymentNumber)
	}
	return fmt.Sprintf("Payment %s", payment.PaymentNumber)
}

func toPaymentResponse(p *billing.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		InvoiceID:     p.InvoiceID,
		TermID:        p.TermID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		Method:        p.Method.String(),
		Reference:     p.Reference,
		Notes:         p.Notes,
		RefundOfID:    p.RefundOfID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
