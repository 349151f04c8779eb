package service

import (
	"billpay/internal/core/domain"
	"billpay/pkg/apperror"

	"github.com/shopspring/decimal"
)

// PricingRules computes the total chargeable amount per service category.
// All methods are pure; floors and markups are enforced here, not in the
// coordinator.
type PricingRules struct {
	airtimeMin        decimal.Decimal
	electricityMin    decimal.Decimal
	electricityMarkup decimal.Decimal // commission rate, e.g. 0.10
	cashbackRate      decimal.Decimal // bonus rate, e.g. 0.01
}

// NewPricingRules creates pricing rules from the billing configuration.
func NewPricingRules(airtimeMin, electricityMin, electricityMarkup, cashbackRate decimal.Decimal) *PricingRules {
	return &PricingRules{
		airtimeMin:        airtimeMin,
		electricityMin:    electricityMin,
		electricityMarkup: electricityMarkup,
		cashbackRate:      cashbackRate,
	}
}

// Quote is the total price of one order: base * quantity * (1 + rate),
// rounded half-up to the kobo. Rejects non-positive base or quantity.
func Quote(basePrice decimal.Decimal, commissionRate decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if basePrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	if quantity <= 0 {
		return decimal.Zero, apperror.Validation("Quantity must be positive")
	}

	qty := decimal.NewFromInt(int64(quantity))
	total := basePrice.Mul(qty).Mul(decimal.NewFromInt(1).Add(commissionRate))
	// Round is half away from zero, which on non-negative Naira amounts
	// is exactly round-half-up to the kobo.
	return total.Round(2), nil
}

// QuoteAirtime prices a caller-specified airtime amount. No markup; the
// category floor applies.
func (p *PricingRules) QuoteAirtime(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	if amount.LessThan(p.airtimeMin) {
		return decimal.Zero, apperror.Validation("Airtime amount below N " + p.airtimeMin.StringFixed(2) + " not allowed")
	}
	return amount.Round(2), nil
}

// QuoteData prices a catalog data plan: listed price plus commission.
func (p *PricingRules) QuoteData(plan *domain.Plan) (decimal.Decimal, error) {
	if plan.Price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	return plan.Total().Round(2), nil
}

// QuoteElectricity prices a meter payment: caller amount plus the
// configured markup, with the category floor.
func (p *PricingRules) QuoteElectricity(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.ErrInvalidAmount()
	}
	if amount.LessThan(p.electricityMin) {
		return decimal.Zero, apperror.Validation("Electricity amount below N " + p.electricityMin.StringFixed(2) + " not allowed")
	}
	return Quote(amount, p.electricityMarkup, 1)
}

// QuoteEducation prices exam pins: price * quantity * (1 + rate).
// Quantity is bounded 1..10 as the vendor caps card orders.
func (p *PricingRules) QuoteEducation(svc *domain.EducationService, quantity int) (decimal.Decimal, error) {
	if quantity < 1 || quantity > 10 {
		return decimal.Zero, apperror.Validation("Quantity must be between 1 and 10")
	}
	return Quote(svc.Price, svc.CommissionRate, quantity)
}

// CashbackBonus computes the bonus credited on a successful purchase.
// The rate applies to the full charged (marked-up) amount across all
// categories.
func (p *PricingRules) CashbackBonus(chargedAmount decimal.Decimal) decimal.Decimal {
	return chargedAmount.Mul(p.cashbackRate).Round(2)
}
