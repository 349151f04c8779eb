package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Input Validation (VAL) ----

// Validation rejects malformed input before any funds move.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Funding (FUND) ----

func ErrInsufficientBalance(source string) *AppError {
	return New("FUND_001", fmt.Sprintf("Insufficient %s balance", source), http.StatusPaymentRequired)
}

func ErrSourceCapExceeded(cap string) *AppError {
	return New("FUND_002", fmt.Sprintf("You cannot purchase a plan above N %s with Data Bonus at a time", cap), http.StatusUnprocessableEntity)
}

// ---- Merchant Verification (MER) ----

func ErrMerchantVerification(detail string) *AppError {
	return New("MER_001", detail, http.StatusBadRequest)
}

// ---- Provider (PRV) ----

// ErrProviderUnavailable covers network failure, timeout or malformed
// response from a billing vendor. The purchase is refunded.
func ErrProviderUnavailable(err error) *AppError {
	return Wrap("PRV_001", "Service provider is currently unavailable, please try again later", http.StatusBadGateway, err)
}

// ErrProviderRejected means the vendor explicitly declined the order.
func ErrProviderRejected(message string) *AppError {
	return New("PRV_002", message, http.StatusUnprocessableEntity)
}

// ---- Payment Business Logic (PAY) ----

func ErrInvalidAmount() *AppError {
	return New("PAY_002", "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateRequest() *AppError {
	return New("PAY_003", "Duplicate request", http.StatusConflict)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrRefundFailure is the escalated case: the provider call failed but the
// reserved funds could not be released. The failed ledger row has no
// matching refund row until an operator reconciles it.
func ErrRefundFailure(err error) *AppError {
	return Wrap("PAY_008", "Refund could not be completed, it has been queued for reconciliation", http.StatusInternalServerError, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrInvalidPin() *AppError {
	return New("AUTH_005", "Incorrect transaction PIN", http.StatusForbidden)
}

// ErrInvalidSignature rejects funding callbacks whose RSA signature does
// not verify.
func ErrInvalidSignature() *AppError {
	return New("AUTH_004", "Invalid signature", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
