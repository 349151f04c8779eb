package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PalmPayFundingService implements ports.FundingService. It credits
// verified payment-gateway callbacks to the main wallet balance, keyed by
// the gateway order number so a redelivered callback never credits twice.
type PalmPayFundingService struct {
	wallets    ports.WalletRepository
	ledger     ports.LedgerRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewPalmPayFundingService creates a new funding service.
func NewPalmPayFundingService(
	wallets ports.WalletRepository,
	ledger ports.LedgerRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *PalmPayFundingService {
	return &PalmPayFundingService{
		wallets:    wallets,
		ledger:     ledger,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// CreditWallet applies one gateway topup. Signature verification happens
// at the HTTP boundary; by the time this runs the callback is trusted.
func (s *PalmPayFundingService) CreditWallet(ctx context.Context, userID uuid.UUID, orderNo string, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	if orderNo == "" {
		return nil, apperror.Validation("Order number is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	idempKey := domain.BuildFundingIdempotencyKey(userID, orderNo)

	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalFundingEntry(cached)
	}

	record, err := s.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if record != nil {
		return unmarshalFundingEntry(record.ResponseJSON)
	}

	wallet, err := s.wallets.CreditFunding(ctx, userID, amount)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("crediting wallet: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        userID,
		RequestID:     orderNo,
		Kind:          domain.LedgerKindFunding,
		Status:        domain.LedgerStatusSuccess,
		Title:         "Wallet Funding",
		Description:   fmt.Sprintf("Wallet funded with N %s.", amount.StringFixed(2)),
		Amount:        amount,
		BalanceBefore: wallet.Balance.Sub(amount),
		BalanceAfter:  wallet.Balance,
		Provider:      domain.ProviderPalmPay,
		Source:        "palmpay",
		CreatedAt:     time.Now().UTC(),
	}

	respJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal funding entry: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledger.Append(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append funding entry: %w", err))
	}
	if err := s.idempRepo.Create(ctx, dbTx, &ports.IdempotencyRecord{
		Key:          idempKey,
		LedgerID:     entry.ID,
		ResponseJSON: respJSON,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache funding record in redis")
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("order_no", orderNo).
		Str("amount", amount.String()).
		Msg("wallet funded")

	return entry, nil
}

func unmarshalFundingEntry(data []byte) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached funding entry: %w", err))
	}
	return entry, nil
}
