package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the service category a purchase belongs to.
type Category string

const (
	CategoryAirtime     Category = "airtime"
	CategoryData        Category = "data"
	CategoryElectricity Category = "electricity"
	CategoryEducation   Category = "education"
)

// Valid reports whether the category is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAirtime, CategoryData, CategoryElectricity, CategoryEducation:
		return true
	}
	return false
}

// Order is an in-flight purchase request. It is not durable state: its
// outcome is recorded in the ledger, the order itself lives only for the
// duration of the transaction.
type Order struct {
	RequestID     string          // client-supplied idempotency key
	UserID        uuid.UUID
	Category      Category
	FundingSource FundingSource
	QuotedAmount  decimal.Decimal // total chargeable amount incl. markup
	Commission    decimal.Decimal
	Recipient     string // phone, meter number or exam profile id
	ServiceID     string // vendor service identifier, e.g. "mtn-data", "ikeja-electric"
	Variation     string // plan/tariff/variation code
	Quantity      int
	CreatedAt     time.Time
}

// BuildIdempotencyKey constructs the key under which an order's recorded
// outcome is stored. Format: "user_id:request_id".
func BuildIdempotencyKey(userID uuid.UUID, requestID string) string {
	return userID.String() + ":" + requestID
}

// BuildFundingIdempotencyKey constructs the key for external funding
// credits (PalmPay callbacks), namespaced away from purchase keys.
func BuildFundingIdempotencyKey(userID uuid.UUID, orderNo string) string {
	return userID.String() + ":funding:" + orderNo
}
