package ports

import (
	"context"
	"time"

	"billpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository is the durable wallet store. Reserve, Release and
// CreditCashback are single atomic conditional updates: concurrent calls
// for one user serialize on the row without application-level locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// Reserve debits amount from the given funding source. Returns the
	// wallet as it was after the debit, or ErrInsufficientBalance when the
	// guard (balance >= amount) fails.
	Reserve(ctx context.Context, userID uuid.UUID, source domain.FundingSource, amount decimal.Decimal) (*domain.Wallet, error)
	// Release credits amount back to the given funding source (refunds).
	Release(ctx context.Context, userID uuid.UUID, source domain.FundingSource, amount decimal.Decimal) (*domain.Wallet, error)
	// CreditCashback adds the purchase bonus to the cashback balance.
	CreditCashback(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
	// CreditFunding adds externally-funded Naira to the main balance.
	CreditFunding(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
}

// LedgerRepository is the append-only transaction history.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// AppendOne appends outside an enclosing transaction block.
	AppendOne(ctx context.Context, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error)
	List(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	// ListPending returns pending purchase rows older than the cutoff,
	// the input of the out-of-band reconciliation job.
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]domain.LedgerEntry, error)
	GetStats(ctx context.Context, userID *uuid.UUID, periodStart *int64) ([]CategoryStats, error)
}

// LedgerListParams holds filter + pagination for the history listing.
type LedgerListParams struct {
	UserID   uuid.UUID
	Status   *domain.LedgerStatus
	Kind     *domain.LedgerKind
	Category *domain.Category
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// CategoryStats is the per-category aggregate consumed by admin analytics.
type CategoryStats struct {
	Category        domain.Category
	Total           int64
	Successful      int64
	Failed          int64
	Pending         int64
	TotalAmount     decimal.Decimal
	TotalCommission decimal.Decimal
}

// IdempotencyRecord stores a completed purchase result so a replayed
// request id short-circuits to the recorded outcome.
type IdempotencyRecord struct {
	Key          string
	LedgerID     uuid.UUID
	ResponseJSON []byte
	CreatedAt    time.Time
}

// IdempotencyRepository is the durable idempotency log (DB layer).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, record *IdempotencyRecord) error
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
}

// CatalogRepository resolves purchasable plans and services.
type CatalogRepository interface {
	GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, error)
	GetElectricityService(ctx context.Context, id uuid.UUID) (*domain.Plan, error)
	GetEducationService(ctx context.Context, serviceType, variationCode string) (*domain.EducationService, error)
}

// ProfileRepository exposes the per-user transaction PIN hash.
type ProfileRepository interface {
	GetPinHash(ctx context.Context, userID uuid.UUID) (string, error)
	SetPinHash(ctx context.Context, userID uuid.UUID, hash string) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
