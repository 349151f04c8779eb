package service

import (
	"billpay/internal/core/domain"
	"billpay/pkg/apperror"

	"github.com/shopspring/decimal"
)

// FundingSelector validates the funding source of a purchase and enforces
// per-source limits. It deliberately does not check balance sufficiency:
// that guard lives in the wallet store's atomic reserve statement, so no
// check-then-act window exists between validation and debit.
type FundingSelector struct {
	cashbackCap decimal.Decimal // max Naira per cashback-funded purchase
}

// NewFundingSelector creates a selector with the configured cashback cap.
func NewFundingSelector(cashbackCap decimal.Decimal) *FundingSelector {
	return &FundingSelector{cashbackCap: cashbackCap}
}

// Approve returns nil when the source may fund the amount, or a
// FundingError: unknown source or a cashback purchase above the cap.
func (f *FundingSelector) Approve(source domain.FundingSource, amount decimal.Decimal) error {
	if !source.Valid() {
		return apperror.Validation("Unknown payment method selected")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperror.ErrInvalidAmount()
	}
	if source == domain.FundingSourceCashback && amount.GreaterThan(f.cashbackCap) {
		return apperror.ErrSourceCapExceeded(f.cashbackCap.StringFixed(0))
	}
	return nil
}
