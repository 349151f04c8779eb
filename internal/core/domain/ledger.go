package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerKind represents the kind of money movement a ledger entry records.
type LedgerKind string

const (
	LedgerKindPurchase LedgerKind = "purchase"
	LedgerKindRefund   LedgerKind = "refund"
	LedgerKindBonus    LedgerKind = "cashback_bonus"
	LedgerKindFunding  LedgerKind = "funding"
)

// LedgerStatus represents the recorded outcome of a money movement.
type LedgerStatus string

const (
	LedgerStatusPending  LedgerStatus = "pending"
	LedgerStatusSuccess  LedgerStatus = "success"
	LedgerStatusFailed   LedgerStatus = "failed"
	LedgerStatusReversed LedgerStatus = "reversed"
)

// LedgerEntry is an immutable record of one money movement. Entries are
// append-only: a pending entry may be superseded by a later terminal entry
// carrying the same request id, but the original row is never mutated.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user"`
	RequestID     string          `json:"request_id"`
	Kind          LedgerKind      `json:"type"`
	Status        LedgerStatus    `json:"status"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Commission    decimal.Decimal `json:"commission"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Provider      string          `json:"provider"`
	Category      Category        `json:"category"`
	ProviderRef   *string         `json:"provider_reference,omitempty"`
	Metadata      map[string]any  `json:"meta_data,omitempty"`
	Source        string          `json:"source"` // originating channel, e.g. "mobile"
	CreatedAt     time.Time       `json:"created_at"`
}

// IsTerminal reports whether the entry's status is final.
func (e *LedgerEntry) IsTerminal() bool {
	return e.Status == LedgerStatusSuccess ||
		e.Status == LedgerStatusFailed ||
		e.Status == LedgerStatusReversed
}
