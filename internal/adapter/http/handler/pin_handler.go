package handler

import (
	"billpay/internal/adapter/http/dto"
	"billpay/internal/adapter/http/middleware"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"
	"billpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// PinHandler handles transaction PIN management.
type PinHandler struct {
	pinSvc ports.PinService
}

// NewPinHandler creates a new PinHandler.
func NewPinHandler(pinSvc ports.PinService) *PinHandler {
	return &PinHandler{pinSvc: pinSvc}
}

// SetPin handles PUT /api/v1/pin.
func (h *PinHandler) SetPin(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.pinSvc.UpdatePin(c.Request.Context(), userID, req.Pin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"status": "pin updated"})
}
