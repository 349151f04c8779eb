package handler

import (
	"strconv"

	"billpay/internal/adapter/http/dto"
	"billpay/internal/adapter/http/middleware"
	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"
	"billpay/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReportingHandler handles the history and analytics endpoints.
type ReportingHandler struct {
	reportingSvc ports.ReportingService
}

// NewReportingHandler creates a new ReportingHandler.
func NewReportingHandler(reportingSvc ports.ReportingService) *ReportingHandler {
	return &ReportingHandler{reportingSvc: reportingSvc}
}

// ListTransactions handles GET /api/v1/transactions.
// Query params: status, type, category, from, to (unix), page, page_size.
func (h *ReportingHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.LedgerListParams{
		UserID:   userID,
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}
	if v := c.Query("status"); v != "" {
		s := domain.LedgerStatus(v)
		params.Status = &s
	}
	if v := c.Query("type"); v != "" {
		k := domain.LedgerKind(v)
		params.Kind = &k
	}
	if v := c.Query("category"); v != "" {
		cat := domain.Category(v)
		if !cat.Valid() {
			response.Error(c, apperror.Validation("unknown category"))
			return
		}
		params.Category = &cat
	}
	if ts, ok := queryUnix(c, "from"); ok {
		params.From = &ts
	}
	if ts, ok := queryUnix(c, "to"); ok {
		params.To = &ts
	}

	entries, total, err := h.reportingSvc.ListHistory(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromLedgerEntry(&entries[i]))
	}

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: dto.TotalPages(total, params.PageSize),
	})
}

// GetStats handles GET /api/v1/transactions/stats.
func (h *ReportingHandler) GetStats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	period := c.DefaultQuery("period", "all")
	stats, err := h.reportingSvc.GetCategoryStats(c.Request.Context(), &userID, period)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CategoryStatsResponse, 0, len(stats))
	for _, s := range stats {
		items = append(items, dto.CategoryStatsResponse{
			Category:        string(s.Category),
			Total:           s.Total,
			Successful:      s.Successful,
			Failed:          s.Failed,
			Pending:         s.Pending,
			TotalAmount:     s.TotalAmount,
			TotalCommission: s.TotalCommission,
		})
	}

	response.OK(c, items)
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

func queryUnix(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
