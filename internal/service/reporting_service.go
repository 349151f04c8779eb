package service

import (
	"context"
	"time"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	ledger  ports.LedgerRepository
	wallets ports.WalletRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(ledger ports.LedgerRepository, wallets ports.WalletRepository) ports.ReportingService {
	return &reportingService{ledger: ledger, wallets: wallets}
}

// ListHistory returns a paginated, filtered slice of ledger entries.
func (s *reportingService) ListHistory(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	entries, total, err := s.ledger.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return entries, total, nil
}

// GetCategoryStats returns per-category aggregates. A nil userID spans
// all users (admin analytics).
func (s *reportingService) GetCategoryStats(ctx context.Context, userID *uuid.UUID, period string) ([]ports.CategoryStats, error) {
	var periodStart *int64

	switch period {
	case "day":
		t := time.Now().AddDate(0, 0, -1).Unix()
		periodStart = &t
	case "week":
		t := time.Now().AddDate(0, 0, -7).Unix()
		periodStart = &t
	case "month":
		t := time.Now().AddDate(0, -1, 0).Unix()
		periodStart = &t
	case "all", "":
		// No time filter
	default:
		return nil, apperror.Validation("invalid period: must be day, week, month, or all")
	}

	stats, err := s.ledger.GetStats(ctx, userID, periodStart)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return stats, nil
}

// GetWalletBalances returns the current main and cashback balances.
func (s *reportingService) GetWalletBalances(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}
	return wallet, nil
}
