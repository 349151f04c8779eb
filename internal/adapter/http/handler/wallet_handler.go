package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"billpay/internal/adapter/http/dto"
	"billpay/internal/adapter/http/middleware"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"
	"billpay/pkg/response"
	"billpay/pkg/signature"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// palmPayStatusSuccess is the orderStatus value for completed payments.
const palmPayStatusSuccess = 1

// WalletHandler handles balance queries and funding callbacks.
type WalletHandler struct {
	reportingSvc ports.ReportingService
	fundingSvc   ports.FundingService
	palmPayKey   string // PalmPay RSA public key, PEM or bare base64
	log          zerolog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService, fundingSvc ports.FundingService, palmPayKey string, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		reportingSvc: reportingSvc,
		fundingSvc:   fundingSvc,
		palmPayKey:   palmPayKey,
		log:          log,
	}
}

// GetBalance handles GET /api/v1/wallet.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, err := h.reportingSvc.GetWalletBalances(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		Balance:         wallet.Balance,
		CashbackBalance: wallet.CashbackBalance,
	})
}

// FundCallback handles POST /api/v1/wallet/fund/callback. The route is
// public; authenticity comes from the RSA signature over the body.
func (h *WalletHandler) FundCallback(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(rawBody))

	if !signature.VerifyCallback(rawBody, h.palmPayKey) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("funding callback signature rejected")
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	var req dto.PalmPayCallbackRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		response.Error(c, apperror.Validation("malformed callback body"))
		return
	}

	if req.OrderStatus != palmPayStatusSuccess {
		// Non-success notifications are acknowledged without crediting.
		h.log.Info().Str("order_no", req.OrderNo).Int("order_status", req.OrderStatus).
			Msg("ignoring non-success funding callback")
		response.OK(c, gin.H{"status": "ignored"})
		return
	}

	userID, err := uuid.Parse(req.Reference)
	if err != nil {
		response.Error(c, apperror.Validation("accountReference is not a valid user id"))
		return
	}

	// PalmPay reports amounts in kobo.
	amount := decimal.NewFromInt(req.OrderAmount).Div(decimal.NewFromInt(100))

	entry, err := h.fundingSvc.CreditWallet(c.Request.Context(), userID, req.OrderNo, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromLedgerEntry(entry))
}
