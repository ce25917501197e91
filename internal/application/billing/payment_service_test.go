package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// In-memory fakes
// =============================================================================

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*billing.Invoice
	seq      int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
	}
	copied := *inv
	copied.Items = append([]billing.InvoiceItem(nil), inv.Items...)
	copied.Terms = append([]billing.InvoiceTerm(nil), inv.Terms...)
	return &copied, nil
}

func (r *fakeInvoiceRepo) FindByNumber(_ context.Context, number string) (*billing.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Invoice not found")
}

func (r *fakeInvoiceRepo) FindAll(_ context.Context, _ billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	result := make([]billing.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		result = append(result, *inv)
	}
	return result, int64(len(result)), nil
}

func (r *fakeInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	copied := *invoice
	copied.Items = append([]billing.InvoiceItem(nil), invoice.Items...)
	copied.Terms = append([]billing.InvoiceTerm(nil), invoice.Terms...)
	r.invoices[invoice.ID] = &copied
	return nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) GenerateInvoiceNumber(_ context.Context, issueDate time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("INV%s%04d", issueDate.Format("200601"), r.seq), nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*billing.Payment
	seq      int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Payment not found")
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var result []billing.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *fakePaymentRepo) FindAll(_ context.Context, _ billing.PaymentFilter) ([]billing.Payment, int64, error) {
	result := make([]billing.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) GeneratePaymentNumber(_ context.Context, paymentDate time.Time) (string, error) {
	r.seq++
	return fmt.Sprintf("PAY%s%04d", paymentDate.Format("200601"), r.seq), nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*ledger.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*ledger.Account)}
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Account not found")
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAccountRepo) FindAll(_ context.Context, _ ledger.AccountFilter) ([]ledger.Account, int64, error) {
	result := make([]ledger.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, *a)
	}
	return result, int64(len(result)), nil
}

func (r *fakeAccountRepo) FindDefaultForType(_ context.Context, accountType ledger.AccountType) (*ledger.Account, error) {
	for _, a := range r.accounts {
		if a.Type == accountType && a.IsActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) Save(_ context.Context, account *ledger.Account) error {
	copied := *account
	r.accounts[account.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) CountChildren(_ context.Context, id uuid.UUID) (int64, error) {
	var count int64
	for _, a := range r.accounts {
		if a.ParentID != nil && *a.ParentID == id {
			count++
		}
	}
	return count, nil
}

type fakeLedgerRepo struct {
	entries map[uuid.UUID]*ledger.Transaction
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[uuid.UUID]*ledger.Transaction)}
}

func (r *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Transaction not found")
	}
	copied := *e
	return &copied, nil
}

func (r *fakeLedgerRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) (*ledger.Transaction, error) {
	for _, e := range r.entries {
		if e.PaymentID != nil && *e.PaymentID == paymentID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, shared.NewDomainError(shared.CodeNotFound, "Transaction not found")
}

func (r *fakeLedgerRepo) FindAll(_ context.Context, _ ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	result := make([]ledger.Transaction, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

func (r *fakeLedgerRepo) Save(_ context.Context, transaction *ledger.Transaction) error {
	copied := *transaction
	r.entries[transaction.ID] = &copied
	return nil
}

func (r *fakeLedgerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	return nil
}

func (r *fakeLedgerRepo) CountByAccount(_ context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	for _, e := range r.entries {
		if e.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

func (r *fakeLedgerRepo) SumByAccount(_ context.Context, accountID uuid.UUID) (ledger.TransactionSums, error) {
	sums := ledger.TransactionSums{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range r.entries {
		if e.AccountID != accountID {
			continue
		}
		if e.Type == ledger.TransactionTypeIncome {
			sums.Income = sums.Income.Add(e.Amount)
		} else {
			sums.Expense = sums.Expense.Add(e.Amount)
		}
	}
	return sums, nil
}

func (r *fakeLedgerRepo) SumByAccountAsOf(_ context.Context, accountID uuid.UUID, asOf time.Time) (ledger.TransactionSums, error) {
	sums := ledger.TransactionSums{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range r.entries {
		if e.AccountID != accountID || e.TransactionDate.After(asOf) {
			continue
		}
		if e.Type == ledger.TransactionTypeIncome {
			sums.Income = sums.Income.Add(e.Amount)
		} else {
			sums.Expense = sums.Expense.Add(e.Amount)
		}
	}
	return sums, nil
}

// =============================================================================
// Test fixture
// =============================================================================

type paymentFixture struct {
	service     *PaymentService
	invoiceRepo *fakeInvoiceRepo
	paymentRepo *fakePaymentRepo
	accountRepo *fakeAccountRepo
	ledgerRepo  *fakeLedgerRepo
	account     *ledger.Account
	now         time.Time
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	invoiceRepo := newFakeInvoiceRepo()
	paymentRepo := newFakePaymentRepo()
	accountRepo := newFakeAccountRepo()
	ledgerRepo := newFakeLedgerRepo()

	account, err := ledger.NewAccount("Revenue", ledger.AccountTypeIncome, nil)
	require.NoError(t, err)
	require.NoError(t, accountRepo.Save(context.Background(), account))

	scope := NewNoOpTransactionScope(invoiceRepo, paymentRepo, accountRepo, ledgerRepo)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	service := NewPaymentService(scope, paymentRepo, shared.FixedClock{Instant: now})

	return &paymentFixture{
		service:     service,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		account:     account,
		now:         now,
	}
}

// seedInvoice creates a sent invoice with one line item of the given subtotal
// and a 10 percent tax rate.
func (f *paymentFixture) seedInvoice(t *testing.T, subtotal float64) *billing.Invoice {
	inv, err := billing.NewInvoice(
		"INV2024030099",
		uuid.New(),
		nil,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10),
		"",
	)
	require.NoError(t, err)
	_, err = inv.AddItem("Work", decimal.NewFromInt(1), decimal.NewFromFloat(subtotal))
	require.NoError(t, err)
	require.NoError(t, inv.ChangeStatus(billing.InvoiceStatusSent))
	require.NoError(t, f.invoiceRepo.Save(context.Background(), inv))
	return inv
}

func (f *paymentFixture) reload(t *testing.T, id uuid.UUID) *billing.Invoice {
	inv, err := f.invoiceRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return inv
}

// =============================================================================
// CreatePayment
// =============================================================================

func TestPaymentService_CreatePayment_FullPayment(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000) // total 1100

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.PaymentNumber)

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.InvoiceStatusPaid, reloaded.Status)
	assert.True(t, reloaded.RemainingBalance().IsZero())

	// The ledger mirror exists and the account balance reflects it.
	mirror, err := f.ledgerRepo.FindByPayment(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeIncome, mirror.Type)
	assert.True(t, mirror.Amount.Equal(decimal.NewFromInt(1100)))

	account, err := f.accountRepo.FindByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1100)))
}

func TestPaymentService_CreatePayment_PartialKeepsSent(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.InvoiceStatusSent, reloaded.Status)
	assert.True(t, reloaded.RemainingBalance().Equal(decimal.NewFromInt(600)))
}

func TestPaymentService_CreatePayment_OverPayment(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000) // remaining 1100

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(2000),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeOverPayment)

	// Nothing was persisted.
	assert.Empty(t, f.paymentRepo.payments)
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestPaymentService_CreatePayment_InvalidAmount(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
			InvoiceID:   inv.ID,
			Amount:      amount,
			PaymentDate: f.now,
			Method:      "cash",
		})
		assertServiceCode(t, err, shared.CodeInvalidAmount)
	}
}

func TestPaymentService_CreatePayment_InvoiceNotFound(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   uuid.New(),
		Amount:      decimal.NewFromInt(100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeNotFound)
}

func TestPaymentService_CreatePayment_CancelledInvoiceRejected(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)
	require.NoError(t, inv.ChangeStatus(billing.InvoiceStatusCancelled))
	require.NoError(t, f.invoiceRepo.Save(context.Background(), inv))

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeImmutableInvoice)

	// No payment, no ledger mirror, no paid amount on the cancelled document.
	assert.Empty(t, f.paymentRepo.payments)
	assert.Empty(t, f.ledgerRepo.entries)
	reloaded := f.reload(t, inv.ID)
	assert.True(t, reloaded.PaidAmount.IsZero())
}

func TestPaymentService_CreatePayment_ForeignTermRejected(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)
	foreignTermID := uuid.New()

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		TermID:      &foreignTermID,
		Amount:      decimal.NewFromInt(100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeInvalidReference)
}

func TestPaymentService_CreatePayment_NoIncomeAccount(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)
	require.NoError(t, f.accountRepo.Delete(context.Background(), f.account.ID))

	_, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeConfigurationError)
}

func TestPaymentService_CreatePayment_TermSettlement(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 2000) // total 2200
	terms, err := inv.AddTerms([]billing.TermSpec{
		{Percentage: decimal.NewFromInt(50), DueDate: inv.DueDate},
		{Percentage: decimal.NewFromInt(50), DueDate: inv.DueDate},
	})
	require.NoError(t, err)
	require.True(t, terms[0].Amount.Equal(decimal.NewFromInt(1100)))
	require.NoError(t, f.invoiceRepo.Save(context.Background(), inv))

	// Paying the first term in full settles it but leaves the invoice open.
	_, err = f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		TermID:      &terms[0].ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.TermStatusPaid, reloaded.Terms[0].Status)
	assert.Equal(t, billing.TermStatusPending, reloaded.Terms[1].Status)
	assert.Equal(t, billing.InvoiceStatusSent, reloaded.Status)

	// The second term completes the invoice.
	_, err = f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		TermID:      &terms[1].ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)

	reloaded = f.reload(t, inv.ID)
	assert.Equal(t, billing.TermStatusPaid, reloaded.Terms[1].Status)
	assert.Equal(t, billing.InvoiceStatusPaid, reloaded.Status)
}

// =============================================================================
// UpdatePayment / DeletePayment
// =============================================================================

func TestPaymentService_UpdatePayment_SyncsMirror(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	_, err = f.service.UpdatePayment(context.Background(), resp.ID, UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(800),
		PaymentDate: f.now.AddDate(0, 0, 1),
		Method:      "check",
	})
	require.NoError(t, err)

	mirror, err := f.ledgerRepo.FindByPayment(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, mirror.Amount.Equal(decimal.NewFromInt(800)))

	reloaded := f.reload(t, inv.ID)
	assert.True(t, reloaded.PaidAmount.Equal(decimal.NewFromInt(800)))

	account, err := f.accountRepo.FindByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(800)))
}

func TestPaymentService_UpdatePayment_BlockedWhenPaid(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	_, err = f.service.UpdatePayment(context.Background(), resp.ID, UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(900),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeImmutableInvoice)
}

func TestPaymentService_UpdatePayment_RefundRejected(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	refund, err := f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(200),
		Date:   f.now,
		Reason: "damaged goods",
	})
	require.NoError(t, err)

	_, err = f.service.UpdatePayment(context.Background(), refund.ID, UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(300),
		PaymentDate: f.now,
		Method:      "cash",
	})
	assertServiceCode(t, err, shared.CodeNotRefundable)
}

func TestPaymentService_UpdatePayment_OverPaymentAllowsOwnContribution(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000) // total 1100

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(600),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	// 1100 is fine: the payment's own 600 is undone before checking.
	_, err = f.service.UpdatePayment(context.Background(), resp.ID, UpdatePaymentRequest{
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.InvoiceStatusPaid, reloaded.Status)
}

func TestPaymentService_DeletePayment_RevertsPaidToSent(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)
	require.Equal(t, billing.InvoiceStatusPaid, f.reload(t, inv.ID).Status)

	require.NoError(t, f.service.DeletePayment(context.Background(), resp.ID))

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.InvoiceStatusSent, reloaded.Status)
	assert.True(t, reloaded.PaidAmount.IsZero())

	// The mirror is gone and the balance is restored.
	_, err = f.ledgerRepo.FindByPayment(context.Background(), resp.ID)
	assertServiceCode(t, err, shared.CodeNotFound)

	account, err := f.accountRepo.FindByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestPaymentService_DeletePayment_ReopensTerm(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 2000)
	terms, err := inv.AddTerms([]billing.TermSpec{
		{Percentage: decimal.NewFromInt(50), DueDate: inv.DueDate},
	})
	require.NoError(t, err)
	require.NoError(t, f.invoiceRepo.Save(context.Background(), inv))

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		TermID:      &terms[0].ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)
	require.Equal(t, billing.TermStatusPaid, f.reload(t, inv.ID).Terms[0].Status)

	require.NoError(t, f.service.DeletePayment(context.Background(), resp.ID))
	assert.Equal(t, billing.TermStatusPending, f.reload(t, inv.ID).Terms[0].Status)
}

// =============================================================================
// Refund
// =============================================================================

func TestPaymentService_Refund(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "bank_transfer",
	})
	require.NoError(t, err)

	refund, err := f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(300),
		Reason: "partial credit",
		Date:   f.now.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(-300)))
	require.NotNil(t, refund.RefundOfID)
	assert.Equal(t, resp.ID, *refund.RefundOfID)

	// Refunds mirror as expense entries; the invoice reopens.
	mirror, err := f.ledgerRepo.FindByPayment(context.Background(), refund.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionTypeExpense, mirror.Type)
	assert.True(t, mirror.Amount.Equal(decimal.NewFromInt(300)))

	reloaded := f.reload(t, inv.ID)
	assert.Equal(t, billing.InvoiceStatusSent, reloaded.Status)
	assert.True(t, reloaded.RemainingBalance().Equal(decimal.NewFromInt(300)))

	account, err := f.accountRepo.FindByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(800)))
}

func TestPaymentService_Refund_NotRefundable(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	// Deleting the only payment leaves nothing to refund.
	require.NoError(t, f.service.DeletePayment(context.Background(), resp.ID))

	_, err = f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(100),
		Date:   f.now,
	})
	assertServiceCode(t, err, shared.CodeNotFound)
}

func TestPaymentService_Refund_FullyRefundedNotRefundable(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(500),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	_, err = f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(500),
		Date:   f.now,
	})
	require.NoError(t, err)

	// Everything has been refunded; the invoice has no payments left to
	// take back.
	_, err = f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(100),
		Date:   f.now,
	})
	assertServiceCode(t, err, shared.CodeNotRefundable)
}

func TestPaymentService_Refund_InvalidAmount(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	resp, err := f.service.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID:   inv.ID,
		Amount:      decimal.NewFromInt(1100),
		PaymentDate: f.now,
		Method:      "cash",
	})
	require.NoError(t, err)

	_, err = f.service.Refund(context.Background(), resp.ID, RefundRequest{
		Amount: decimal.NewFromInt(-100),
		Date:   f.now,
	})
	assertServiceCode(t, err, shared.CodeInvalidAmount)
}

// =============================================================================
// BulkApply
// =============================================================================

func TestPaymentService_BulkApply(t *testing.T) {
	f := newPaymentFixture(t)
	first := f.seedInvoice(t, 1000)
	second, err := billing.NewInvoice(
		"INV2024030100",
		uuid.New(),
		nil,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		decimal.Zero,
		"",
	)
	require.NoError(t, err)
	_, err = second.AddItem("Work", decimal.NewFromInt(1), decimal.NewFromInt(400))
	require.NoError(t, err)
	require.NoError(t, second.ChangeStatus(billing.InvoiceStatusSent))
	require.NoError(t, f.invoiceRepo.Save(context.Background(), second))

	responses, err := f.service.BulkApply(context.Background(), []CreatePaymentRequest{
		{InvoiceID: first.ID, Amount: decimal.NewFromInt(1100), PaymentDate: f.now, Method: "cash"},
		{InvoiceID: second.ID, Amount: decimal.NewFromInt(400), PaymentDate: f.now, Method: "cash"},
	})
	require.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, billing.InvoiceStatusPaid, f.reload(t, first.ID).Status)
	assert.Equal(t, billing.InvoiceStatusPaid, f.reload(t, second.ID).Status)
}

func TestPaymentService_BulkApply_FailureAborts(t *testing.T) {
	f := newPaymentFixture(t)
	inv := f.seedInvoice(t, 1000)

	_, err := f.service.BulkApply(context.Background(), []CreatePaymentRequest{
		{InvoiceID: inv.ID, Amount: decimal.NewFromInt(500), PaymentDate: f.now, Method: "cash"},
		{InvoiceID: inv.ID, Amount: decimal.NewFromInt(5000), PaymentDate: f.now, Method: "cash"},
	})
	assertServiceCode(t, err, shared.CodeOverPayment)
}

func TestPaymentService_BulkApply_Empty(t *testing.T) {
	f := newPaymentFixture(t)
	_, err := f.service.BulkApply(context.Background(), nil)
	assertServiceCode(t, err, shared.CodeInvalidInput)
}

func assertServiceCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
