package n3t

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

// networkIDs maps telco names to the vendor's numeric network codes.
var networkIDs = map[string]int{
	"mtn":     1,
	"airtel":  2,
	"glo":     3,
	"9mobile": 4,
}

// Adapter implements ports.ProviderAdapter for the N3T data API.
type Adapter struct {
	http *resty.Client
	log  zerolog.Logger
}

// New creates an N3T adapter.
func New(cfg config.N3TConfig, log zerolog.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Token "+cfg.Token).
		SetHeader("Content-Type", "application/json")
	return &Adapter{http: client, log: log}
}

// Name returns the provider name recorded on ledger entries.
func (a *Adapter) Name() string { return domain.ProviderN3T }

type payRequest struct {
	RequestID string `json:"request-id"`
	Network   int    `json:"network"`
	Phone     string `json:"phone"`
	DataPlan  string `json:"data_plan"`
	Bypass    bool   `json:"bypass"`
}

type payResponse struct {
	RequestID string `json:"request-id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Execute submits one data bundle purchase. The order's Variation carries
// the vendor plan id and ServiceID the telco name.
func (a *Adapter) Execute(ctx context.Context, order *domain.Order) (*domain.ProviderOutcome, error) {
	networkID, ok := networkIDs[order.ServiceID]
	if !ok {
		return nil, fmt.Errorf("n3t: unknown network %q", order.ServiceID)
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(payRequest{
			RequestID: order.RequestID,
			Network:   networkID,
			Phone:     order.Recipient,
			DataPlan:  order.Variation,
			Bypass:    false,
		}).
		Post("/data")
	if err != nil {
		return nil, fmt.Errorf("n3t pay request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("n3t pay status: %d", resp.StatusCode())
	}

	var body payResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("n3t pay response: %w", err)
	}

	outcome := &domain.ProviderOutcome{Reference: body.RequestID}

	switch body.Status {
	case "success":
		outcome.Code = domain.OutcomeSuccess
	case "pending":
		outcome.Code = domain.OutcomePending
	default:
		outcome.Code = domain.OutcomeFailed
		outcome.FailureReason = domain.FailureProviderRejected
		outcome.Message = failureMessage(&body)
	}

	a.log.Debug().
		Str("request_id", order.RequestID).
		Str("vendor_status", body.Status).
		Str("outcome", string(outcome.Code)).
		Msg("n3t pay completed")

	return outcome, nil
}

// Verify is not supported by N3T; data recipients need no lookup.
func (a *Adapter) Verify(_ context.Context, _ ports.VerifyRequest) (*domain.MerchantInfo, error) {
	return nil, fmt.Errorf("n3t: merchant verification not supported")
}

func failureMessage(body *payResponse) string {
	if body.Message != "" {
		return body.Message
	}
	return "Transaction failed, please verify your details and try again."
}
