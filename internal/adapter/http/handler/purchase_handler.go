package handler

import (
	"billpay/internal/adapter/http/dto"
	"billpay/internal/adapter/http/middleware"
	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"
	"billpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sourceChannel tags ledger rows with the originating channel.
const sourceChannel = "mobile"

// PurchaseHandler handles the purchase and verification endpoints.
type PurchaseHandler struct {
	coordinator ports.TransactionCoordinator
	pinSvc      ports.PinService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(coordinator ports.TransactionCoordinator, pinSvc ports.PinService) *PurchaseHandler {
	return &PurchaseHandler{coordinator: coordinator, pinSvc: pinSvc}
}

// Airtime handles POST /api/v1/purchase/airtime.
func (h *PurchaseHandler) Airtime(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AirtimePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if !h.checkPin(c, userID, req.Pin) {
		return
	}

	result, err := h.coordinator.Purchase(c.Request.Context(), ports.PurchaseRequest{
		RequestID:     req.RequestID,
		UserID:        userID,
		Category:      domain.CategoryAirtime,
		FundingSource: fundingSource(req.FundingSource),
		Recipient:     req.Phone,
		Network:       req.Network,
		Amount:        req.Amount,
		Source:        sourceChannel,
	})
	respondPurchase(c, result, err)
}

// Data handles POST /api/v1/purchase/data.
func (h *PurchaseHandler) Data(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DataPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if !h.checkPin(c, userID, req.Pin) {
		return
	}

	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		response.Error(c, apperror.Validation("Plan ID as plan_id is required"))
		return
	}

	result, err := h.coordinator.Purchase(c.Request.Context(), ports.PurchaseRequest{
		RequestID:     req.RequestID,
		UserID:        userID,
		Category:      domain.CategoryData,
		FundingSource: fundingSource(req.FundingSource),
		Recipient:     req.Phone,
		PlanID:        &planID,
		Source:        sourceChannel,
	})
	respondPurchase(c, result, err)
}

// Electricity handles POST /api/v1/purchase/electricity.
func (h *PurchaseHandler) Electricity(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ElectricityPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if !h.checkPin(c, userID, req.Pin) {
		return
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		response.Error(c, apperror.Validation("Service ID as service_id is required"))
		return
	}

	result, err := h.coordinator.Purchase(c.Request.Context(), ports.PurchaseRequest{
		RequestID:     req.RequestID,
		UserID:        userID,
		Category:      domain.CategoryElectricity,
		FundingSource: fundingSource(req.FundingSource),
		Recipient:     req.MeterNumber,
		Amount:        req.Amount,
		PlanID:        &serviceID,
		VariationCode: req.MeterType,
		Source:        sourceChannel,
	})
	respondPurchase(c, result, err)
}

// Education handles POST /api/v1/purchase/education.
func (h *PurchaseHandler) Education(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.EducationPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	if !h.checkPin(c, userID, req.Pin) {
		return
	}

	result, err := h.coordinator.Purchase(c.Request.Context(), ports.PurchaseRequest{
		RequestID:     req.RequestID,
		UserID:        userID,
		Category:      domain.CategoryEducation,
		FundingSource: fundingSource(req.FundingSource),
		Recipient:     req.ProfileID,
		ServiceType:   req.ServiceType,
		VariationCode: req.VariationCode,
		Quantity:      req.Quantity,
		Source:        sourceChannel,
	})
	respondPurchase(c, result, err)
}

// Verify handles POST /api/v1/verify.
func (h *PurchaseHandler) Verify(c *gin.Context) {
	if _, ok := middleware.UserID(c); !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.VerifyMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	info, err := h.coordinator.VerifyMerchant(c.Request.Context(), domain.Category(req.Category), ports.VerifyRequest{
		ServiceID:   req.ServiceID,
		MerchantRef: req.BillersCode,
		Type:        req.Type,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MerchantInfoResponse{
		CustomerName:      info.CustomerName,
		Address:           info.Address,
		MeterNumber:       info.MeterNumber,
		MeterType:         info.MeterType,
		MinPurchaseAmount: info.MinPurchaseAmount,
		Outstanding:       info.Outstanding,
	})
}

// checkPin verifies the transaction PIN and writes the error response on
// failure.
func (h *PurchaseHandler) checkPin(c *gin.Context, userID uuid.UUID, pin string) bool {
	ok, err := h.pinSvc.VerifyPin(c.Request.Context(), userID, pin)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !ok {
		response.Error(c, apperror.ErrInvalidPin())
		return false
	}
	return true
}

func fundingSource(s string) domain.FundingSource {
	if s == string(domain.FundingSourceCashback) {
		return domain.FundingSourceCashback
	}
	return domain.FundingSourceWallet
}

// respondPurchase maps a coordinator outcome to its HTTP shape: replays
// are 200, pending results 202, fresh successes 201.
func respondPurchase(c *gin.Context, result *ports.PurchaseResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}

	body := dto.FromPurchaseResult(result)
	switch {
	case result.Replayed:
		response.OK(c, body)
	case result.Pending:
		response.Accepted(c, body)
	default:
		response.Created(c, body)
	}
}
