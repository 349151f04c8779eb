package domain

import "github.com/shopspring/decimal"

// OutcomeCode is the canonical interpretation of a provider response.
type OutcomeCode string

const (
	OutcomeSuccess OutcomeCode = "SUCCESS"
	OutcomePending OutcomeCode = "PENDING"
	OutcomeFailed  OutcomeCode = "FAILED"
)

// FailureReason classifies why a provider call failed.
type FailureReason string

const (
	// FailureProviderUnavailable covers network errors, timeouts and
	// malformed responses. Never mapped to a pending outcome.
	FailureProviderUnavailable FailureReason = "provider_unavailable"
	// FailureProviderRejected means the vendor explicitly declined.
	FailureProviderRejected FailureReason = "provider_rejected"
)

// ProviderOutcome is the canonical result of one provider call,
// constructed exactly once per call by the adapter.
type ProviderOutcome struct {
	Code          OutcomeCode
	Reference     string // vendor transaction reference
	Commission    decimal.Decimal
	Artifacts     map[string]any // tokens, pins, cards and other per-category payloads
	FailureReason FailureReason
	Message       string // human-readable vendor message
}

// Failed reports whether the outcome is a failure.
func (o *ProviderOutcome) Failed() bool { return o.Code == OutcomeFailed }

// MerchantInfo is the result of pre-charge merchant verification
// (meter number or exam profile id lookup).
type MerchantInfo struct {
	CustomerName      string
	Address           string
	MeterNumber       string
	MeterType         string
	MinPurchaseAmount decimal.Decimal
	Outstanding       decimal.Decimal
	WrongBillersCode  bool
}
