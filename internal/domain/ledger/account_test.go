package ledger

import (
	"testing"

	"github.com/billingd/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAccount(t *testing.T, accountType AccountType) *Account {
	acc, err := NewAccount("Test Account", accountType, nil)
	require.NoError(t, err)
	return acc
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestAccountType_IsValid(t *testing.T) {
	tests := []struct {
		accountType AccountType
		isValid     bool
	}{
		{AccountTypeAsset, true},
		{AccountTypeLiability, true},
		{AccountTypeEquity, true},
		{AccountTypeIncome, true},
		{AccountTypeExpense, true},
		{AccountType("revenue"), false},
		{AccountType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.accountType.IsValid())
		})
	}
}

func TestAccountType_Direction(t *testing.T) {
	one := decimal.NewFromInt(1)
	minusOne := decimal.NewFromInt(-1)

	assert.True(t, AccountTypeAsset.Direction().Equal(one))
	assert.True(t, AccountTypeIncome.Direction().Equal(one))
	assert.True(t, AccountTypeLiability.Direction().Equal(minusOne))
	assert.True(t, AccountTypeEquity.Direction().Equal(minusOne))
	assert.True(t, AccountTypeExpense.Direction().Equal(minusOne))
}

func TestNewAccount(t *testing.T) {
	acc := createTestAccount(t, AccountTypeIncome)

	assert.Equal(t, "Test Account", acc.Name)
	assert.Equal(t, AccountTypeIncome, acc.Type)
	assert.True(t, acc.Balance.IsZero())
	assert.True(t, acc.IsActive)
	assert.Nil(t, acc.ParentID)
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount("", AccountTypeAsset, nil)
	assertDomainCode(t, err, shared.CodeInvalidInput)

	longName := string(make([]byte, 101))
	_, err = NewAccount(longName, AccountTypeAsset, nil)
	assertDomainCode(t, err, shared.CodeInvalidInput)

	_, err = NewAccount("Cash", AccountType("bogus"), nil)
	assertDomainCode(t, err, shared.CodeInvalidInput)
}

func TestAccount_Rename(t *testing.T) {
	acc := createTestAccount(t, AccountTypeAsset)

	require.NoError(t, acc.Rename("Operating Cash"))
	assert.Equal(t, "Operating Cash", acc.Name)

	err := acc.Rename("")
	assertDomainCode(t, err, shared.CodeInvalidInput)
}

func TestAccount_ActivateDeactivate(t *testing.T) {
	acc := createTestAccount(t, AccountTypeAsset)

	acc.Deactivate()
	assert.False(t, acc.IsActive)

	acc.Activate()
	assert.True(t, acc.IsActive)
}

func TestAccount_RecomputeBalance(t *testing.T) {
	tests := []struct {
		name        string
		accountType AccountType
		income      decimal.Decimal
		expense     decimal.Decimal
		want        decimal.Decimal
	}{
		{"asset natural sum", AccountTypeAsset, decimal.NewFromInt(1000), decimal.NewFromInt(300), decimal.NewFromInt(700)},
		{"income natural sum", AccountTypeIncome, decimal.NewFromInt(500), decimal.Zero, decimal.NewFromInt(500)},
		{"expense flipped", AccountTypeExpense, decimal.Zero, decimal.NewFromInt(200), decimal.NewFromInt(200)},
		{"liability flipped", AccountTypeLiability, decimal.NewFromInt(100), decimal.NewFromInt(400), decimal.NewFromInt(300)},
		{"equity flipped", AccountTypeEquity, decimal.NewFromInt(50), decimal.NewFromInt(150), decimal.NewFromInt(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := createTestAccount(t, tt.accountType)
			acc.RecomputeBalance(tt.income, tt.expense)
			assert.True(t, acc.Balance.Equal(tt.want), "got %s want %s", acc.Balance, tt.want)
		})
	}
}
