package service

import (
	"context"
	"testing"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/internal/core/ports/mocks"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReportingService_ListHistory_ClampsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	wallets := mocks.NewMockWalletRepository(ctrl)
	svc := NewReportingService(ledger, wallets)

	ctx := context.Background()
	userID := uuid.New()

	ledger.EXPECT().List(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
			assert.Equal(t, 1, params.Page)
			assert.Equal(t, 20, params.PageSize)
			return []domain.LedgerEntry{{UserID: userID}}, 1, nil
		})

	entries, total, err := svc.ListHistory(ctx, ports.LedgerListParams{UserID: userID, Page: 0, PageSize: 9999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, entries, 1)
}

func TestReportingService_GetCategoryStats_Periods(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	wallets := mocks.NewMockWalletRepository(ctrl)
	svc := NewReportingService(ledger, wallets)

	ctx := context.Background()
	userID := uuid.New()

	ledger.EXPECT().GetStats(ctx, &userID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *uuid.UUID, periodStart *int64) ([]ports.CategoryStats, error) {
			require.NotNil(t, periodStart)
			return []ports.CategoryStats{{Category: domain.CategoryAirtime, Total: 3}}, nil
		})

	stats, err := svc.GetCategoryStats(ctx, &userID, "week")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Total)

	// "all" runs without a time filter, nil user spans all users
	ledger.EXPECT().GetStats(ctx, nil, nil).Return(nil, nil)
	_, err = svc.GetCategoryStats(ctx, nil, "all")
	require.NoError(t, err)
}

func TestReportingService_GetCategoryStats_InvalidPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewReportingService(mocks.NewMockLedgerRepository(ctrl), mocks.NewMockWalletRepository(ctrl))

	_, err := svc.GetCategoryStats(context.Background(), nil, "fortnight")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestReportingService_GetWalletBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ledger := mocks.NewMockLedgerRepository(ctrl)
	wallets := mocks.NewMockWalletRepository(ctrl)
	svc := NewReportingService(ledger, wallets)

	ctx := context.Background()
	userID := uuid.New()

	wallets.EXPECT().GetByUserID(ctx, userID).Return(&domain.Wallet{
		UserID:          userID,
		Balance:         decimal.NewFromInt(1200),
		CashbackBalance: decimal.NewFromInt(35),
	}, nil)

	wallet, err := svc.GetWalletBalances(ctx, userID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(1200)))
	assert.True(t, wallet.CashbackBalance.Equal(decimal.NewFromInt(35)))

	wallets.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)
	_, err = svc.GetWalletBalances(ctx, userID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_004", appErr.Code)
}
