package dto

import (
	"math"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/shopspring/decimal"
)

// AirtimePurchaseRequest is the request body for airtime purchases.
type AirtimePurchaseRequest struct {
	RequestID     string          `json:"request_id" binding:"required,max=100,safe_id"`
	Network       string          `json:"network" binding:"required,oneof=mtn glo airtel 9mobile"`
	Phone         string          `json:"phone" binding:"required,ng_phone"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	FundingSource string          `json:"funding_source" binding:"omitempty,oneof=wallet cashback"`
	Pin           string          `json:"pin" binding:"required"`
}

// DataPurchaseRequest is the request body for data bundle purchases.
type DataPurchaseRequest struct {
	RequestID     string `json:"request_id" binding:"required,max=100,safe_id"`
	PlanID        string `json:"plan_id" binding:"required,uuid"`
	Phone         string `json:"phone" binding:"required,ng_phone"`
	FundingSource string `json:"funding_source" binding:"omitempty,oneof=wallet cashback"`
	Pin           string `json:"pin" binding:"required"`
}

// ElectricityPurchaseRequest is the request body for electricity bill payments.
type ElectricityPurchaseRequest struct {
	RequestID     string          `json:"request_id" binding:"required,max=100,safe_id"`
	ServiceID     string          `json:"service_id" binding:"required,uuid"` // catalog disco id
	MeterNumber   string          `json:"meter_number" binding:"required,max=20"`
	MeterType     string          `json:"meter_type" binding:"required,oneof=prepaid postpaid"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	FundingSource string          `json:"funding_source" binding:"omitempty,oneof=wallet cashback"`
	Pin           string          `json:"pin" binding:"required"`
}

// EducationPurchaseRequest is the request body for exam pin purchases.
type EducationPurchaseRequest struct {
	RequestID     string `json:"request_id" binding:"required,max=100,safe_id"`
	ServiceType   string `json:"service_type" binding:"required,oneof=jamb waec de"`
	VariationCode string `json:"variation_code" binding:"required,max=50"`
	ProfileID     string `json:"profile_id" binding:"omitempty,max=20"` // jamb/de profile id
	Quantity      int    `json:"quantity" binding:"omitempty,min=1,max=10"`
	FundingSource string `json:"funding_source" binding:"omitempty,oneof=wallet cashback"`
	Pin           string `json:"pin" binding:"required"`
}

// VerifyMerchantRequest is the request body for meter / profile verification.
type VerifyMerchantRequest struct {
	Category    string `json:"category" binding:"required,oneof=electricity education"`
	ServiceID   string `json:"service_id" binding:"required,max=50"` // vendor service identifier
	BillersCode string `json:"billers_code" binding:"required,max=20"`
	Type        string `json:"type" binding:"omitempty,oneof=prepaid postpaid"`
}

// SetPinRequest is the request body for setting the transaction PIN.
type SetPinRequest struct {
	Pin string `json:"pin" binding:"required,len=4,numeric"`
}

// PalmPayCallbackRequest is the funding notification body. The raw body
// signature is verified before this struct is bound.
type PalmPayCallbackRequest struct {
	OrderNo     string `json:"orderNo"`
	OrderStatus int    `json:"orderStatus"`
	OrderAmount int64  `json:"orderAmount"` // kobo
	Reference   string `json:"accountReference"`
}

// TransactionResponse is the ledger entry shape returned to clients.
type TransactionResponse struct {
	ID            string          `json:"id"`
	RequestID     string          `json:"request_id"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Commission    decimal.Decimal `json:"commission"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Provider      string          `json:"provider"`
	Category      string          `json:"category"`
	ProviderRef   *string         `json:"provider_reference,omitempty"`
	Metadata      map[string]any  `json:"meta_data,omitempty"`
	Source        string          `json:"source"`
	CreatedAt     string          `json:"created_at"`
}

// PurchaseResponse is the response body for all purchase endpoints.
type PurchaseResponse struct {
	Transaction TransactionResponse  `json:"transaction"`
	Bonus       *TransactionResponse `json:"bonus,omitempty"`
	Artifacts   map[string]any       `json:"artifacts,omitempty"` // token, pins, cards
	Pending     bool                 `json:"pending"`
}

// WalletBalanceResponse is the response for the balance query.
type WalletBalanceResponse struct {
	Balance         decimal.Decimal `json:"balance"`
	CashbackBalance decimal.Decimal `json:"cashback_balance"`
}

// MerchantInfoResponse is the response for merchant verification.
type MerchantInfoResponse struct {
	CustomerName      string          `json:"customer_name"`
	Address           string          `json:"address,omitempty"`
	MeterNumber       string          `json:"meter_number,omitempty"`
	MeterType         string          `json:"meter_type,omitempty"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount,omitempty"`
	Outstanding       decimal.Decimal `json:"outstanding,omitempty"`
}

// TransactionListResponse wraps the paginated history listing.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// CategoryStatsResponse is one per-category aggregate row.
type CategoryStatsResponse struct {
	Category        string          `json:"category"`
	Total           int64           `json:"total"`
	Successful      int64           `json:"successful"`
	Failed          int64           `json:"failed"`
	Pending         int64           `json:"pending"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// FromLedgerEntry converts a domain ledger entry to its response shape.
func FromLedgerEntry(e *domain.LedgerEntry) TransactionResponse {
	return TransactionResponse{
		ID:            e.ID.String(),
		RequestID:     e.RequestID,
		Type:          string(e.Kind),
		Status:        string(e.Status),
		Title:         e.Title,
		Description:   e.Description,
		Amount:        e.Amount,
		Commission:    e.Commission,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Provider:      e.Provider,
		Category:      string(e.Category),
		ProviderRef:   e.ProviderRef,
		Metadata:      e.Metadata,
		Source:        e.Source,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FromPurchaseResult converts a coordinator result to its response shape.
func FromPurchaseResult(r *ports.PurchaseResult) PurchaseResponse {
	resp := PurchaseResponse{
		Transaction: FromLedgerEntry(r.Entry),
		Artifacts:   r.Artifacts,
		Pending:     r.Pending,
	}
	if r.Bonus != nil {
		b := FromLedgerEntry(r.Bonus)
		resp.Bonus = &b
	}
	return resp
}

// TotalPages computes the page count for a listing.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
