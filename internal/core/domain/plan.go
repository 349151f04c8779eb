package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provider names, as recorded on ledger entries and catalog plans.
const (
	ProviderVTPass  = "vtpass"
	ProviderGsub    = "gsub"
	ProviderN3T     = "n3t"
	ProviderPalmPay = "palmpay"
)

// Plan is a purchasable catalog item: a data bundle tier, an electricity
// disco or an education service. Price and Commission are kept separate so
// reporting can attribute margin even where a vendor folds the markup into
// the listed price.
type Plan struct {
	ID         uuid.UUID       `json:"id"`
	Category   Category        `json:"category"`
	Provider   string          `json:"provider"`
	ServiceID  string          `json:"service_id"` // vendor service identifier
	Code       string          `json:"code"`       // variation/plan code sent to the vendor
	Network    string          `json:"network"`    // mtn, glo, airtel, 9mobile; empty for non-telco
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Commission decimal.Decimal `json:"commission"`
}

// Total returns the chargeable amount for one unit of the plan.
func (p *Plan) Total() decimal.Decimal {
	return p.Price.Add(p.Commission)
}

// EducationService describes an exam-pin product (jamb, waec, de).
type EducationService struct {
	ID             uuid.UUID       `json:"id"`
	ServiceType    string          `json:"service_type"` // jamb, waec, de
	ServiceID      string          `json:"service_id"`
	VariationCode  string          `json:"variation_code"` // de, utme, waecdirect
	Price          decimal.Decimal `json:"price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	RequiresVerify bool            `json:"requires_verify"` // jamb/de profile id check
}
