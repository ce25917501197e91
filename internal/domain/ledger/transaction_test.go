package ledger

import (
	"testing"
	"time"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTransaction(t *testing.T, txType TransactionType, amount float64) *Transaction {
	tx, err := NewTransaction(
		uuid.New(),
		txType,
		decimal.NewFromFloat(amount),
		"test entry",
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return tx
}

func TestTransactionType_IsValid(t *testing.T) {
	assert.True(t, TransactionTypeIncome.IsValid())
	assert.True(t, TransactionTypeExpense.IsValid())
	assert.False(t, TransactionType("transfer").IsValid())
	assert.False(t, TransactionType("").IsValid())
}

func TestNewTransaction(t *testing.T) {
	tx := createTestTransaction(t, TransactionTypeIncome, 250)

	assert.Equal(t, TransactionTypeIncome, tx.Type)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(250)))
	assert.False(t, tx.IsMirror())
	assert.Nil(t, tx.InvoiceID)
}

func TestNewTransaction_Validation(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		account  uuid.UUID
		txType   TransactionType
		amount   decimal.Decimal
		date     time.Time
		wantCode string
	}{
		{"nil account", uuid.Nil, TransactionTypeIncome, decimal.NewFromInt(1), date, shared.CodeInvalidReference},
		{"bad type", uuid.New(), TransactionType("transfer"), decimal.NewFromInt(1), date, shared.CodeInvalidInput},
		{"zero amount", uuid.New(), TransactionTypeIncome, decimal.Zero, date, shared.CodeInvalidAmount},
		{"negative amount", uuid.New(), TransactionTypeIncome, decimal.NewFromInt(-5), date, shared.CodeInvalidAmount},
		{"zero date", uuid.New(), TransactionTypeIncome, decimal.NewFromInt(1), time.Time{}, shared.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.account, tt.txType, tt.amount, "x", tt.date)
			assertDomainCode(t, err, tt.wantCode)
		})
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	income := createTestTransaction(t, TransactionTypeIncome, 100)
	expense := createTestTransaction(t, TransactionTypeExpense, 100)

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(100)))
	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-100)))
}

func TestTransaction_IsMirror(t *testing.T) {
	tx := createTestTransaction(t, TransactionTypeIncome, 100)
	assert.False(t, tx.IsMirror())

	paymentID := uuid.New()
	invoiceID := uuid.New()
	tx.WithReferences(nil, nil, &invoiceID, &paymentID)
	assert.True(t, tx.IsMirror())
}

func TestTransaction_SyncFromSource(t *testing.T) {
	tx := createTestTransaction(t, TransactionTypeIncome, 100)
	newDate := tx.TransactionDate.AddDate(0, 0, 3)

	require.NoError(t, tx.SyncFromSource(decimal.NewFromInt(80), newDate, "updated"))
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, newDate, tx.TransactionDate)
	assert.Equal(t, "updated", tx.Description)

	err := tx.SyncFromSource(decimal.Zero, newDate, "bad")
	assertDomainCode(t, err, shared.CodeInvalidAmount)
}
