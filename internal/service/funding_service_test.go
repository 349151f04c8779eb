package service

import (
	"context"
	"encoding/json"
	"testing"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/internal/core/ports/mocks"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fundingTestDeps struct {
	svc        *PalmPayFundingService
	wallets    *mocks.MockWalletRepository
	ledger     *mocks.MockLedgerRepository
	idempRepo  *mocks.MockIdempotencyRepository
	idempCache *mocks.MockIdempotencyCache
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupFundingService(t *testing.T) *fundingTestDeps {
	ctrl := gomock.NewController(t)
	d := &fundingTestDeps{
		wallets:    mocks.NewMockWalletRepository(ctrl),
		ledger:     mocks.NewMockLedgerRepository(ctrl),
		idempRepo:  mocks.NewMockIdempotencyRepository(ctrl),
		idempCache: mocks.NewMockIdempotencyCache(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewPalmPayFundingService(
		d.wallets, d.ledger, d.idempRepo, d.idempCache, d.transactor, zerolog.Nop(),
	)
	return d
}

func TestFundingService_CreditWallet_Success(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	idempKey := domain.BuildFundingIdempotencyKey(userID, "PP-ORDER-1")
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.wallets.EXPECT().
		CreditFunding(ctx, userID, decEq(5000)).
		Return(&domain.Wallet{UserID: userID, Balance: decimal.NewFromInt(7000)}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.ledger.EXPECT().Append(ctx, tx, gomock.Any()).Return(nil)
	d.idempRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	d.idempCache.EXPECT().Set(ctx, idempKey, gomock.Any(), idempotencyTTL).Return(nil)

	entry, err := d.svc.CreditWallet(ctx, userID, "PP-ORDER-1", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerKindFunding, entry.Kind)
	assert.Equal(t, domain.LedgerStatusSuccess, entry.Status)
	assert.Equal(t, "PP-ORDER-1", entry.RequestID)
	assert.True(t, entry.BalanceBefore.Equal(decimal.NewFromInt(2000)))
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, domain.ProviderPalmPay, entry.Provider)
}

func TestFundingService_CreditWallet_RedeliveredCallback(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	idempKey := domain.BuildFundingIdempotencyKey(userID, "PP-ORDER-1")

	prior := &domain.LedgerEntry{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   domain.LedgerKindFunding,
		Status: domain.LedgerStatusSuccess,
		Amount: decimal.NewFromInt(5000),
	}
	respJSON, _ := json.Marshal(prior)

	// first check hits the DB record, wallet is never credited again
	d.idempCache.EXPECT().Get(ctx, idempKey).Return(nil, nil)
	d.idempRepo.EXPECT().Get(ctx, idempKey).Return(&ports.IdempotencyRecord{
		Key:          idempKey,
		LedgerID:     prior.ID,
		ResponseJSON: respJSON,
	}, nil)

	entry, err := d.svc.CreditWallet(ctx, userID, "PP-ORDER-1", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, prior.ID, entry.ID)
}

func TestFundingService_CreditWallet_NonPositiveAmount(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.CreditWallet(context.Background(), uuid.New(), "PP-ORDER-2", decimal.Zero)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_002", appErr.Code)
}

func TestFundingService_CreditWallet_MissingOrderNo(t *testing.T) {
	d := setupFundingService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.CreditWallet(context.Background(), uuid.New(), "", decimal.NewFromInt(100))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}
