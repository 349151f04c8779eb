package postgres

import (
	"context"
	"errors"
	"fmt"

	"billpay/internal/core/domain"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository. Balance mutations are
// single conditional UPDATE statements: the WHERE clause carries the
// non-negativity guard, so concurrent requests serialize on the row and
// an overdraft can never commit.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet into the database.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, cashback_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Balance, w.CashbackBalance, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by user ID (non-locking read).
func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, cashback_balance, created_at, updated_at
		FROM wallets WHERE user_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.CashbackBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	return w, nil
}

// Reserve debits amount from the chosen balance. The guard in the WHERE
// clause rejects overdrafts; no matching row means insufficient funds
// (or no wallet).
func (r *WalletRepo) Reserve(ctx context.Context, userID uuid.UUID, source domain.FundingSource, amount decimal.Decimal) (*domain.Wallet, error) {
	column := balanceColumn(source)
	query := fmt.Sprintf(`UPDATE wallets
		SET %[1]s = %[1]s - $1, updated_at = NOW()
		WHERE user_id = $2 AND %[1]s >= $1
		RETURNING id, user_id, balance, cashback_balance, created_at, updated_at`, column)

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, amount, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.CashbackBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrInsufficientBalance(string(source))
		}
		return nil, fmt.Errorf("reserve wallet funds: %w", err)
	}
	return w, nil
}

// Release credits amount back to the chosen balance (refunds).
func (r *WalletRepo) Release(ctx context.Context, userID uuid.UUID, source domain.FundingSource, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.credit(ctx, userID, balanceColumn(source), amount, "release wallet funds")
}

// CreditCashback adds the purchase bonus to the cashback balance.
func (r *WalletRepo) CreditCashback(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.credit(ctx, userID, "cashback_balance", amount, "credit cashback")
}

// CreditFunding adds externally-funded Naira to the main balance.
func (r *WalletRepo) CreditFunding(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	return r.credit(ctx, userID, "balance", amount, "credit funding")
}

func (r *WalletRepo) credit(ctx context.Context, userID uuid.UUID, column string, amount decimal.Decimal, op string) (*domain.Wallet, error) {
	query := fmt.Sprintf(`UPDATE wallets
		SET %[1]s = %[1]s + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING id, user_id, balance, cashback_balance, created_at, updated_at`, column)

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, amount, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.CashbackBalance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: wallet not found for user %s", op, userID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return w, nil
}

func balanceColumn(source domain.FundingSource) string {
	if source == domain.FundingSourceCashback {
		return "cashback_balance"
	}
	return "balance"
}
