package service

import (
	"testing"

	"billpay/internal/core/domain"
	"billpay/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingSelector_Approve(t *testing.T) {
	f := NewFundingSelector(decimal.NewFromInt(1000))

	assert.NoError(t, f.Approve(domain.FundingSourceWallet, dec("5000")))
	assert.NoError(t, f.Approve(domain.FundingSourceCashback, dec("1000")))
	assert.NoError(t, f.Approve(domain.FundingSourceCashback, dec("999.99")))
}

func TestFundingSelector_CashbackCap(t *testing.T) {
	f := NewFundingSelector(decimal.NewFromInt(1000))

	err := f.Approve(domain.FundingSourceCashback, dec("1000.01"))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FUND_002", appErr.Code)

	// Wallet purchases have no cap beyond available balance.
	assert.NoError(t, f.Approve(domain.FundingSourceWallet, dec("1000000")))
}

func TestFundingSelector_RejectsBadInput(t *testing.T) {
	f := NewFundingSelector(decimal.NewFromInt(1000))

	assert.Error(t, f.Approve(domain.FundingSource("card"), dec("100")))
	assert.Error(t, f.Approve(domain.FundingSourceWallet, decimal.Zero))
	assert.Error(t, f.Approve(domain.FundingSourceWallet, dec("-10")))
}
