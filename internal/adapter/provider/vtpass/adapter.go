package vtpass

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"billpay/config"
	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Adapter implements ports.ProviderAdapter for the VTPass billing API.
// VTPass serves airtime, some data bundles, electricity and education.
type Adapter struct {
	http *resty.Client
	log  zerolog.Logger
}

// New creates a VTPass adapter.
func New(cfg config.VTPassConfig, log zerolog.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("api-key", cfg.APIKey).
		SetHeader("secret-key", cfg.SecretKey).
		SetHeader("Content-Type", "application/json")
	return &Adapter{http: client, log: log}
}

// Name returns the provider name recorded on ledger entries.
func (a *Adapter) Name() string { return domain.ProviderVTPass }

type payRequest struct {
	RequestID     string  `json:"request_id"`
	ServiceID     string  `json:"serviceID"`
	Phone         string  `json:"phone"`
	Amount        float64 `json:"amount,omitempty"`
	BillersCode   string  `json:"billersCode,omitempty"`
	VariationCode string  `json:"variation_code,omitempty"`
	Quantity      int     `json:"quantity,omitempty"`
}

type vtpassCard struct {
	Serial string `json:"Serial"`
	Pin    string `json:"Pin"`
}

type payResponse struct {
	Code        string `json:"code"`
	Description string `json:"response_description"`
	Content     struct {
		Transactions struct {
			Status        string          `json:"status"`
			TransactionID string          `json:"transactionId"`
			Commission    decimal.Decimal `json:"commission"`
		} `json:"transactions"`
	} `json:"content"`

	// Per-category artifacts. The vendor is inconsistent about which key
	// carries the electricity token, so all spellings are read.
	Token         string       `json:"token"`
	MainTokenCap  string       `json:"MainToken"`
	MainToken     string       `json:"mainToken"`
	TokenCap      string       `json:"Token"`
	PurchasedCode string       `json:"purchased_code"`
	Pin           string       `json:"Pin"`
	Tokens        []string     `json:"tokens"`
	Cards         []vtpassCard `json:"cards"`
}

// Execute submits one purchase. The amount remitted to the vendor is net
// of our own markup.
func (a *Adapter) Execute(ctx context.Context, order *domain.Order) (*domain.ProviderOutcome, error) {
	netAmount := order.QuotedAmount.Sub(order.Commission)

	req := payRequest{
		RequestID: order.RequestID,
		ServiceID: order.ServiceID,
		Phone:     order.Recipient,
	}
	if amt, _ := netAmount.Float64(); amt > 0 {
		req.Amount = amt
	}
	if order.Variation != "" {
		req.VariationCode = order.Variation
		req.BillersCode = order.Recipient
	}
	if order.Quantity > 1 {
		req.Quantity = order.Quantity
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/pay")
	if err != nil {
		return nil, fmt.Errorf("vtpass pay request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("vtpass pay status: %d", resp.StatusCode())
	}

	var body payResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("vtpass pay response: %w", err)
	}

	code, reason := classify(body.Code)
	outcome := &domain.ProviderOutcome{
		Code:          code,
		Reference:     body.Content.Transactions.TransactionID,
		Commission:    body.Content.Transactions.Commission,
		FailureReason: reason,
		Message:       codeMessage(body.Code, body.Description),
	}
	if code == domain.OutcomeSuccess {
		outcome.Artifacts = extractArtifacts(&body, order.Category)
	}

	a.log.Debug().
		Str("request_id", order.RequestID).
		Str("vendor_code", body.Code).
		Str("outcome", string(code)).
		Msg("vtpass pay completed")

	return outcome, nil
}

type verifyRequest struct {
	ServiceID   string `json:"serviceID"`
	BillersCode string `json:"billersCode"`
	Type        string `json:"type"`
}

type verifyResponse struct {
	Code    string `json:"code"`
	Content struct {
		CustomerName      string          `json:"Customer_Name"`
		Address           string          `json:"Address"`
		MeterNumber       string          `json:"MeterNumber"`
		MeterType         string          `json:"Meter_Type"`
		MinPurchaseAmount decimal.Decimal `json:"Min_Purchase_Amount"`
		Outstanding       decimal.Decimal `json:"Outstanding"`
		WrongBillersCode  bool            `json:"WrongBillersCode"`
	} `json:"content"`
}

// Verify performs the pre-charge meter or exam-profile lookup.
func (a *Adapter) Verify(ctx context.Context, req ports.VerifyRequest) (*domain.MerchantInfo, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetBody(verifyRequest{
			ServiceID:   req.ServiceID,
			BillersCode: req.MerchantRef,
			Type:        req.Type,
		}).
		Post("/merchant-verify")
	if err != nil {
		return nil, fmt.Errorf("vtpass merchant-verify request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("vtpass merchant-verify status: %d", resp.StatusCode())
	}

	var body verifyResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("vtpass merchant-verify response: %w", err)
	}
	if body.Code != "000" {
		return nil, fmt.Errorf("vtpass merchant-verify code: %s", body.Code)
	}

	return &domain.MerchantInfo{
		CustomerName:      body.Content.CustomerName,
		Address:           body.Content.Address,
		MeterNumber:       body.Content.MeterNumber,
		MeterType:         body.Content.MeterType,
		MinPurchaseAmount: body.Content.MinPurchaseAmount,
		Outstanding:       body.Content.Outstanding,
		WrongBillersCode:  body.Content.WrongBillersCode,
	}, nil
}

// extractArtifacts pulls the deliverables (meter tokens, exam pins or
// cards) out of a successful response.
func extractArtifacts(body *payResponse, category domain.Category) map[string]any {
	switch category {
	case domain.CategoryElectricity:
		token := firstNonEmpty(body.Token, body.MainTokenCap, body.MainToken, body.TokenCap, body.PurchasedCode)
		token = digitsOf(token)
		if token == "" {
			return nil
		}
		return map[string]any{
			"purchased_token": token,
			"formatted_token": formatToken(token),
		}

	case domain.CategoryEducation:
		artifacts := map[string]any{}
		if body.Pin != "" {
			artifacts["pins"] = []string{digitsOf(body.Pin)}
		}
		if len(body.Tokens) > 0 {
			artifacts["tokens"] = body.Tokens
		}
		if len(body.Cards) > 0 {
			cards := make([]map[string]string, 0, len(body.Cards))
			for _, c := range body.Cards {
				cards = append(cards, map[string]string{"serial": c.Serial, "pin": c.Pin})
			}
			artifacts["cards"] = cards
		}
		if len(artifacts) == 0 && body.PurchasedCode != "" {
			artifacts["pins"] = []string{digitsOf(body.PurchasedCode)}
		}
		if len(artifacts) == 0 {
			return nil
		}
		return artifacts

	default:
		return nil
	}
}

// digitsOf strips a vendor value like "Token : 1234-5678" down to its
// digits. Values carrying a label keep only the part after the colon.
func digitsOf(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatToken renders a meter token in groups of four.
func formatToken(token string) string {
	if len(token) < 20 {
		return token
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s", token[:4], token[4:8], token[8:12], token[12:16], token[16:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
