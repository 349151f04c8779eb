package ports

import (
	"context"

	"billpay/internal/core/domain"
)

// VerifyRequest asks a vendor to validate a merchant reference (meter
// number or exam profile id) before any funds are reserved.
type VerifyRequest struct {
	ServiceID   string // vendor service identifier, e.g. "ikeja-electric", "jamb"
	MerchantRef string // meter number or profile id
	Type        string // prepaid/postpaid for meters, variation code for education
}

// ProviderAdapter is the uniform interface over external billing vendors.
// Adapters interpret vendor-specific response codes into a canonical
// ProviderOutcome; transport failures map to a Failed outcome with
// FailureProviderUnavailable, never to Pending.
type ProviderAdapter interface {
	Name() string
	Execute(ctx context.Context, order *domain.Order) (*domain.ProviderOutcome, error)
	Verify(ctx context.Context, req VerifyRequest) (*domain.MerchantInfo, error)
}

// ProviderRegistry resolves the adapter serving a provider name, so that
// adding a vendor is a new registration, not a new branch in the
// coordinator.
type ProviderRegistry interface {
	Adapter(provider string) (ProviderAdapter, error)
}
