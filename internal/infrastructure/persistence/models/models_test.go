package models

import (
	"testing"
	"time"

	"github.com/billingd/backend/internal/domain/billing"
	"github.com/billingd/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Model / Domain Mapping Tests
// ============================================================================

func TestAccountModelRoundTrip(t *testing.T) {
	parentID := uuid.New()
	account, err := ledger.NewAccount("Operating Income", ledger.AccountTypeIncome, &parentID)
	require.NoError(t, err)
	account.Balance = decimal.NewFromFloat(1234.56)

	model := AccountModelFromDomain(account)
	restored := model.ToDomain()

	assert.Equal(t, account.ID, restored.ID)
	assert.Equal(t, account.Version, restored.Version)
	assert.Equal(t, account.Name, restored.Name)
	assert.Equal(t, account.Type, restored.Type)
	assert.Equal(t, *account.ParentID, *restored.ParentID)
	assert.True(t, account.Balance.Equal(restored.Balance))
	assert.True(t, restored.IsActive)
}

func TestTransactionModelRoundTrip(t *testing.T) {
	accountID := uuid.New()
	paymentID := uuid.New()
	invoiceID := uuid.New()

	txn, err := ledger.NewTransaction(
		accountID,
		ledger.TransactionTypeIncome,
		decimal.NewFromFloat(500.25),
		"Payment PAY2024030001 for invoice INV2024030001",
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	txn.WithReferences(nil, nil, &invoiceID, &paymentID)

	model := TransactionModelFromDomain(txn)
	restored := model.ToDomain()

	assert.Equal(t, txn.ID, restored.ID)
	assert.Equal(t, txn.AccountID, restored.AccountID)
	assert.Equal(t, txn.Type, restored.Type)
	assert.True(t, txn.Amount.Equal(restored.Amount))
	assert.Equal(t, txn.TransactionDate, restored.TransactionDate)
	assert.Nil(t, restored.ClientID)
	require.NotNil(t, restored.PaymentID)
	assert.Equal(t, paymentID, *restored.PaymentID)
	require.NotNil(t, restored.InvoiceID)
	assert.Equal(t, invoiceID, *restored.InvoiceID)
}

func TestPaymentModelRoundTrip(t *testing.T) {
	invoiceID := uuid.New()
	termID := uuid.New()

	payment, err := billing.NewPayment(
		"PAY2024030001",
		invoiceID,
		&termID,
		decimal.NewFromFloat(750.00),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		billing.PaymentMethodBankTransfer,
		"wire-123",
		"first installment",
	)
	require.NoError(t, err)

	model := PaymentModelFromDomain(payment)
	restored := model.ToDomain()

	assert.Equal(t, payment.ID, restored.ID)
	assert.Equal(t, payment.PaymentNumber, restored.PaymentNumber)
	assert.Equal(t, payment.InvoiceID, restored.InvoiceID)
	require.NotNil(t, restored.TermID)
	assert.Equal(t, termID, *restored.TermID)
	assert.True(t, payment.Amount.Equal(restored.Amount))
	assert.Equal(t, payment.Method, restored.Method)
	assert.Equal(t, payment.Reference, restored.Reference)
	assert.Equal(t, payment.Notes, restored.Notes)
	assert.Nil(t, restored.RefundOfID)
}

func TestPaymentModelRoundTripRefund(t *testing.T) {
	invoiceID := uuid.New()
	originalID := uuid.New()

	refund, err := billing.NewPayment(
		"PAY2024030002",
		invoiceID,
		nil,
		decimal.NewFromFloat(-200.00),
		time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
		billing.PaymentMethodBankTransfer,
		"", "",
	)
	require.NoError(t, err)
	refund.RefundOfID = &originalID

	model := PaymentModelFromDomain(refund)
	restored := model.ToDomain()

	assert.True(t, restored.IsRefund())
	assert.True(t, refund.Amount.Equal(restored.Amount))
	require.NotNil(t, restored.RefundOfID)
	assert.Equal(t, originalID, *restored.RefundOfID)
}
