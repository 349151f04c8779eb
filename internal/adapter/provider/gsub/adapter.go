package gsub

import (
	"context"
	"encoding/json"
	"fmt"

	"billpay/config"
	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Adapter implements ports.ProviderAdapter for the Gsub data API.
// Gsub takes form-encoded requests with a bearer token and reports the
// outcome through a numeric code plus a free-form status string.
type Adapter struct {
	http   *resty.Client
	apiKey string
	log    zerolog.Logger
}

// New creates a Gsub adapter.
func New(cfg config.GsubConfig, log zerolog.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")
	return &Adapter{http: client, apiKey: cfg.APIKey, log: log}
}

// Name returns the provider name recorded on ledger entries.
func (a *Adapter) Name() string { return domain.ProviderGsub }

type payResponse struct {
	Code          int    `json:"code"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionID"`
	APIResponse   string `json:"api_response"`
}

// Execute submits one data bundle purchase.
func (a *Adapter) Execute(ctx context.Context, order *domain.Order) (*domain.ProviderOutcome, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"plan":      order.Variation,
			"phone":     order.Recipient,
			"amount":    "",
			"api":       a.apiKey,
			"requestID": order.RequestID,
			"serviceID": order.ServiceID,
		}).
		Post("/api/pay/")
	if err != nil {
		return nil, fmt.Errorf("gsub pay request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("gsub pay status: %d", resp.StatusCode())
	}

	var body payResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("gsub pay response: %w", err)
	}

	outcome := &domain.ProviderOutcome{Reference: body.TransactionID}

	switch {
	case body.Status == "failed" || body.Status == "TRANSACTION_FAILED" || body.Status == "reversed":
		outcome.Code = domain.OutcomeFailed
		outcome.FailureReason = domain.FailureProviderRejected
		outcome.Message = failureMessage(&body)
	case body.Code == 200 && (body.Status == "success" || body.Status == "successful"):
		outcome.Code = domain.OutcomeSuccess
	default:
		// The vendor reconciles these out of band.
		outcome.Code = domain.OutcomePending
	}

	a.log.Debug().
		Str("request_id", order.RequestID).
		Int("vendor_code", body.Code).
		Str("vendor_status", body.Status).
		Str("outcome", string(outcome.Code)).
		Msg("gsub pay completed")

	return outcome, nil
}

// Verify is not supported by Gsub; data recipients need no lookup.
func (a *Adapter) Verify(_ context.Context, _ ports.VerifyRequest) (*domain.MerchantInfo, error) {
	return nil, fmt.Errorf("gsub: merchant verification not supported")
}

func failureMessage(body *payResponse) string {
	if body.APIResponse != "" {
		return body.APIResponse
	}
	return "Transaction failed, please verify your details and try again."
}
