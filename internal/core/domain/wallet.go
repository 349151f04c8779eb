package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundingSource identifies which balance a purchase draws from.
type FundingSource string

const (
	FundingSourceWallet   FundingSource = "wallet"
	FundingSourceCashback FundingSource = "cashback"
)

// Valid reports whether the funding source is one of the known sources.
func (s FundingSource) Valid() bool {
	return s == FundingSourceWallet || s == FundingSourceCashback
}

// Wallet holds a user's spendable balance and accrued cashback bonus.
// Both balances are non-negative Naira amounts and are only ever mutated
// through single atomic conditional updates in the wallet store.
type Wallet struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Balance         decimal.Decimal `json:"balance"`
	CashbackBalance decimal.Decimal `json:"cashback_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BalanceFor returns the balance backing the given funding source.
func (w *Wallet) BalanceFor(source FundingSource) decimal.Decimal {
	if source == FundingSourceCashback {
		return w.CashbackBalance
	}
	return w.Balance
}
