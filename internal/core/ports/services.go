package ports

import (
	"context"
	"time"

	"billpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RateLimitStore implements a fixed-window request counter.
type RateLimitStore interface {
	// Incr increments the counter for key within the window and returns
	// the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// --- Service Ports (Business Logic) ---

// PurchaseRequest is the validated input of one bill-payment transaction.
type PurchaseRequest struct {
	RequestID     string // idempotency key
	UserID        uuid.UUID
	Category      domain.Category
	FundingSource domain.FundingSource
	Recipient     string           // phone, meter number or profile id
	Network       string           // telco network for airtime: mtn, glo, airtel, 9mobile
	Amount        decimal.Decimal  // caller amount for airtime/electricity
	PlanID        *uuid.UUID       // catalog plan for data/electricity service
	ServiceType   string           // education: jamb, waec, de
	VariationCode string           // education/electricity variation
	Quantity      int              // education pin quantity
	Source        string           // originating channel, e.g. "mobile"
}

// PurchaseResult is the terminal outcome returned to the caller and
// recorded under the request's idempotency key.
type PurchaseResult struct {
	Entry     *domain.LedgerEntry `json:"entry"`
	Bonus     *domain.LedgerEntry `json:"bonus,omitempty"`
	Artifacts map[string]any      `json:"artifacts,omitempty"` // token, pins, cards
	Pending   bool                `json:"pending"`
	Replayed  bool                `json:"-"` // true when served from the idempotency record
}

// TransactionCoordinator orchestrates the reserve -> call-provider ->
// reconcile sequence for every purchase category.
type TransactionCoordinator interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
	VerifyMerchant(ctx context.Context, category domain.Category, req VerifyRequest) (*domain.MerchantInfo, error)
}

// FundingService credits external topups (PalmPay callbacks) to wallets.
type FundingService interface {
	CreditWallet(ctx context.Context, userID uuid.UUID, orderNo string, amount decimal.Decimal) (*domain.LedgerEntry, error)
}

// ReportingService exposes ledger history and per-category aggregates to
// the admin analytics boundary.
type ReportingService interface {
	ListHistory(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
	GetCategoryStats(ctx context.Context, userID *uuid.UUID, period string) ([]CategoryStats, error)
	GetWalletBalances(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

// PinService verifies and updates the per-user transaction PIN.
type PinService interface {
	VerifyPin(ctx context.Context, userID uuid.UUID, pin string) (bool, error)
	UpdatePin(ctx context.Context, userID uuid.UUID, newPin string) error
}

// TokenService handles JWT bearer token operations for the HTTP boundary.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}
