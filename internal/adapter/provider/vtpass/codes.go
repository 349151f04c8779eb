package vtpass

import "billpay/internal/core/domain"

// Vendor response codes and their user-facing messages.
var responseCodes = map[string]struct {
	Title   string
	Message string
}{
	"000": {
		Title:   "TRANSACTION_SUCCESSFUL",
		Message: "Transaction completed successfully.",
	},
	"099": {
		Title:   "TRANSACTION_PENDING",
		Message: "This transaction is pending.",
	},
	"016": {
		Title:   "TRANSACTION_FAILED",
		Message: "Transaction failed, please verify your details and try again.",
	},
	"010": {
		Title:   "NO_PRODUCT_VARIATION",
		Message: "It appears the Product you selected does not exist in stock, please choose another one.",
	},
	"012": {
		Title:   "PRODUCT_DOES_NOT_EXIST",
		Message: "It appears the Product you selected does not exist, please choose another one.",
	},
	"018": {
		Title:   "LOW_WALLET_BALANCE",
		Message: "This service provider is currently unavailable, please try again later.",
	},
	"085": {
		Title:   "TIME_NOT_CORRECT",
		Message: "Invalid Device time, Please ensure that your device time is properly set in the 24 Hour format or GMT + 1.",
	},
}

// classify maps a vendor code to the canonical outcome. Code 018 means
// the vendor itself cannot serve right now, so it maps to unavailable
// rather than rejected.
func classify(code string) (domain.OutcomeCode, domain.FailureReason) {
	switch code {
	case "000":
		return domain.OutcomeSuccess, ""
	case "099":
		return domain.OutcomePending, ""
	case "018":
		return domain.OutcomeFailed, domain.FailureProviderUnavailable
	default:
		return domain.OutcomeFailed, domain.FailureProviderRejected
	}
}

func codeMessage(code, fallback string) string {
	if rc, ok := responseCodes[code]; ok {
		return rc.Message
	}
	if fallback != "" {
		return fallback
	}
	return "Transaction failed, please verify your details and try again."
}
