package gsub

import (
	"context"
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

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.GsubConfig{
		BaseURL: server.URL,
		APIKey:  "test-gsub-key",
		Timeout: 5 * time.Second,
	}, zerolog.Nop())
}

func dataOrder() *domain.Order {
	return &domain.Order{
		RequestID:    "REQ-G1",
		Category:     domain.CategoryData,
		ServiceID:    "mtn_sme",
		Variation:    "mtn-1gb",
		Recipient:    "08012345678",
		QuotedAmount: decimal.NewFromInt(300),
		Commission:   decimal.NewFromInt(20),
	}
}

func TestAdapter_Execute_Success(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pay/", r.URL.Path)
		assert.Equal(t, "Bearer test-gsub-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "mtn-1gb", r.PostFormValue("plan"))
		assert.Equal(t, "08012345678", r.PostFormValue("phone"))
		assert.Equal(t, "test-gsub-key", r.PostFormValue("api"))
		assert.Equal(t, "REQ-G1", r.PostFormValue("requestID"))
		assert.Equal(t, "mtn_sme", r.PostFormValue("serviceID"))
		w.Write([]byte(`{"code": 200, "status": "successful", "transactionID": "GS-1001"}`))
	})

	outcome, err := adapter.Execute(context.Background(), dataOrder())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Code)
	assert.Equal(t, "GS-1001", outcome.Reference)
}

func TestAdapter_Execute_FailedStatuses(t *testing.T) {
	for _, status := range []string{"failed", "TRANSACTION_FAILED", "reversed"} {
		t.Run(status, func(t *testing.T) {
			adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code": 400, "status": "` + status + `", "api_response": "insufficient vendor balance"}`))
			})

			outcome, err := adapter.Execute(context.Background(), dataOrder())
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeFailed, outcome.Code)
			assert.Equal(t, domain.FailureProviderRejected, outcome.FailureReason)
			assert.Equal(t, "insufficient vendor balance", outcome.Message)
		})
	}
}

func TestAdapter_Execute_UnknownStatusIsPending(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "status": "processing", "transactionID": "GS-1002"}`))
	})

	outcome, err := adapter.Execute(context.Background(), dataOrder())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePending, outcome.Code)
}

func TestAdapter_Execute_HTTPError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := adapter.Execute(context.Background(), dataOrder())
	assert.Error(t, err)
}

func TestAdapter_Verify_Unsupported(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := adapter.Verify(context.Background(), ports.VerifyRequest{})
	assert.Error(t, err)
}
