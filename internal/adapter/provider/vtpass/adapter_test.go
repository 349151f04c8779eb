package vtpass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billpay/config"
	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*Adapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	adapter := New(config.VTPassConfig{
		BaseURL:   server.URL,
		APIKey:    "test-api-key",
		SecretKey: "test-secret-key",
		Timeout:   5 * time.Second,
	}, zerolog.Nop())
	return adapter, server
}

func TestAdapter_Execute_AirtimeSuccess(t *testing.T) {
	var gotBody map[string]any
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pay", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("api-key"))
		assert.Equal(t, "test-secret-key", r.Header.Get("secret-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "000",
			"response_description": "TRANSACTION SUCCESSFUL",
			"content": {"transactions": {"status": "delivered", "transactionId": "17234567890", "commission": 15}}
		}`))
	})

	order := &domain.Order{
		RequestID:    "REQ-1",
		Category:     domain.CategoryAirtime,
		ServiceID:    "mtn",
		Recipient:    "08012345678",
		QuotedAmount: decimal.NewFromInt(500),
		Quantity:     1,
	}

	outcome, err := adapter.Execute(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Code)
	assert.Equal(t, "17234567890", outcome.Reference)
	assert.True(t, outcome.Commission.Equal(decimal.NewFromInt(15)))

	assert.Equal(t, "REQ-1", gotBody["request_id"])
	assert.Equal(t, "mtn", gotBody["serviceID"])
	assert.Equal(t, "08012345678", gotBody["phone"])
	assert.Equal(t, float64(500), gotBody["amount"])
	assert.NotContains(t, gotBody, "variation_code")
}

func TestAdapter_Execute_Pending(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "099", "content": {"transactions": {"transactionId": "PEND-1"}}}`))
	})

	outcome, err := adapter.Execute(context.Background(), &domain.Order{
		RequestID:    "REQ-2",
		Category:     domain.CategoryAirtime,
		ServiceID:    "glo",
		Recipient:    "08012345678",
		QuotedAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePending, outcome.Code)
	assert.Equal(t, "PEND-1", outcome.Reference)
}

func TestAdapter_Execute_RejectedAndUnavailableCodes(t *testing.T) {
	tests := []struct {
		code   string
		reason domain.FailureReason
	}{
		{"016", domain.FailureProviderRejected},
		{"010", domain.FailureProviderRejected},
		{"012", domain.FailureProviderRejected},
		{"085", domain.FailureProviderRejected},
		{"018", domain.FailureProviderUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code": "` + tc.code + `"}`))
			})

			outcome, err := adapter.Execute(context.Background(), &domain.Order{
				RequestID:    "REQ-3",
				Category:     domain.CategoryAirtime,
				ServiceID:    "mtn",
				Recipient:    "08012345678",
				QuotedAmount: decimal.NewFromInt(100),
			})
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeFailed, outcome.Code)
			assert.Equal(t, tc.reason, outcome.FailureReason)
			assert.NotEmpty(t, outcome.Message)
		})
	}
}

func TestAdapter_Execute_ElectricityTokenExtraction(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "45021548762", body["billersCode"])
		assert.Equal(t, "prepaid", body["variation_code"])
		w.Write([]byte(`{
			"code": "000",
			"purchased_code": "Token : 12345678901234567890",
			"content": {"transactions": {"transactionId": "EL-1"}}
		}`))
	})

	order := &domain.Order{
		RequestID:    "REQ-4",
		Category:     domain.CategoryElectricity,
		ServiceID:    "ikeja-electric",
		Recipient:    "45021548762",
		Variation:    "prepaid",
		QuotedAmount: decimal.NewFromInt(1100),
		Commission:   decimal.NewFromInt(100),
	}

	outcome, err := adapter.Execute(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Code)
	assert.Equal(t, "12345678901234567890", outcome.Artifacts["purchased_token"])
	assert.Equal(t, "1234-5678-9012-3456-7890", outcome.Artifacts["formatted_token"])
}

func TestAdapter_Execute_EducationCards(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(2), body["quantity"])
		w.Write([]byte(`{
			"code": "000",
			"cards": [{"Serial": "WRN100", "Pin": "1111222233"}, {"Serial": "WRN101", "Pin": "4444555566"}],
			"content": {"transactions": {"transactionId": "ED-1"}}
		}`))
	})

	order := &domain.Order{
		RequestID:    "REQ-5",
		Category:     domain.CategoryEducation,
		ServiceID:    "waec",
		Recipient:    "08012345678",
		Variation:    "waecdirect",
		Quantity:     2,
		QuotedAmount: decimal.NewFromInt(7200),
	}

	outcome, err := adapter.Execute(context.Background(), order)
	require.NoError(t, err)
	cards, ok := outcome.Artifacts["cards"].([]map[string]string)
	require.True(t, ok)
	require.Len(t, cards, 2)
	assert.Equal(t, "WRN100", cards[0]["serial"])
	assert.Equal(t, "1111222233", cards[0]["pin"])
}

func TestAdapter_Execute_EducationPinFallback(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "000", "purchased_code": "Pin : 3678251321392432", "content": {"transactions": {}}}`))
	})

	outcome, err := adapter.Execute(context.Background(), &domain.Order{
		RequestID:    "REQ-6",
		Category:     domain.CategoryEducation,
		ServiceID:    "jamb",
		Recipient:    "0123456789",
		Variation:    "utme",
		Quantity:     1,
		QuotedAmount: decimal.NewFromInt(4700),
	})
	require.NoError(t, err)
	pins, ok := outcome.Artifacts["pins"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"3678251321392432"}, pins)
}

func TestAdapter_Execute_HTTPError(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := adapter.Execute(context.Background(), &domain.Order{
		RequestID:    "REQ-7",
		Category:     domain.CategoryAirtime,
		ServiceID:    "mtn",
		Recipient:    "08012345678",
		QuotedAmount: decimal.NewFromInt(100),
	})
	assert.Error(t, err)
}

func TestAdapter_Verify_Success(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant-verify", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ikeja-electric", body["serviceID"])
		assert.Equal(t, "45021548762", body["billersCode"])
		assert.Equal(t, "prepaid", body["type"])
		w.Write([]byte(`{
			"code": "000",
			"content": {
				"Customer_Name": "ADA OBI",
				"Address": "12 Allen Avenue",
				"MeterNumber": "45021548762",
				"Meter_Type": "PREPAID",
				"Min_Purchase_Amount": 500,
				"Outstanding": 0,
				"WrongBillersCode": false
			}
		}`))
	})

	info, err := adapter.Verify(context.Background(), ports.VerifyRequest{
		ServiceID:   "ikeja-electric",
		MerchantRef: "45021548762",
		Type:        "prepaid",
	})
	require.NoError(t, err)
	assert.Equal(t, "ADA OBI", info.CustomerName)
	assert.Equal(t, "PREPAID", info.MeterType)
	assert.True(t, info.MinPurchaseAmount.Equal(decimal.NewFromInt(500)))
	assert.False(t, info.WrongBillersCode)
}

func TestAdapter_Verify_WrongBillersCode(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "000", "content": {"WrongBillersCode": true}}`))
	})

	info, err := adapter.Verify(context.Background(), ports.VerifyRequest{
		ServiceID:   "ikeja-electric",
		MerchantRef: "00000000000",
		Type:        "prepaid",
	})
	require.NoError(t, err)
	assert.True(t, info.WrongBillersCode)
}

func TestAdapter_Verify_VendorError(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "012"}`))
	})

	_, err := adapter.Verify(context.Background(), ports.VerifyRequest{
		ServiceID:   "ikeja-electric",
		MerchantRef: "45021548762",
		Type:        "prepaid",
	})
	assert.Error(t, err)
}

func TestDigitsOf(t *testing.T) {
	assert.Equal(t, "12345678901234567890", digitsOf("Token : 1234-5678-9012-3456-7890"))
	assert.Equal(t, "1234", digitsOf("1234"))
	assert.Equal(t, "", digitsOf(""))
	assert.Equal(t, "9876", digitsOf("Pin: 9876"))
}

func TestFormatToken(t *testing.T) {
	assert.Equal(t, "1234-5678-9012-3456-7890", formatToken("12345678901234567890"))
	assert.Equal(t, "1234", formatToken("1234"))
}
