package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, user_id, request_id, kind, status, title, description, amount, commission,
		balance_before, balance_after, provider, category, provider_reference, meta_data, source, created_at`

// LedgerRepo implements ports.LedgerRepository. The ledger is
// append-only; rows are never updated or deleted.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts a ledger entry within a database transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.UserID, e.RequestID, e.Kind, e.Status, e.Title, e.Description,
		e.Amount, e.Commission, e.BalanceBefore, e.BalanceAfter,
		e.Provider, e.Category, e.ProviderRef, e.Metadata, e.Source, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// AppendOne inserts a ledger entry outside an enclosing transaction.
func (r *LedgerRepo) AppendOne(ctx context.Context, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.pool.Exec(ctx, query,
		e.ID, e.UserID, e.RequestID, e.Kind, e.Status, e.Title, e.Description,
		e.Amount, e.Commission, e.BalanceBefore, e.BalanceAfter,
		e.Provider, e.Category, e.ProviderRef, e.Metadata, e.Source, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByID fetches a ledger entry by UUID.
func (r *LedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE id = $1`

	e := &domain.LedgerEntry{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.RequestID, &e.Kind, &e.Status, &e.Title, &e.Description,
		&e.Amount, &e.Commission, &e.BalanceBefore, &e.BalanceAfter,
		&e.Provider, &e.Category, &e.ProviderRef, &e.Metadata, &e.Source, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return e, nil
}

// List fetches ledger entries with filtering and pagination.
func (r *LedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, *params.Kind)
		argIdx++
	}
	if params.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *params.Category)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM ledger_entries %s", where)
	var total int64
	err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT `+ledgerColumns+`
		FROM ledger_entries %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanLedgerRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListPending returns pending purchase rows older than the cutoff. The
// reconciliation job polls these against the vendor.
func (r *LedgerRepo) ListPending(ctx context.Context, olderThan time.Time, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE kind = 'purchase' AND status = 'pending' AND created_at < $1
		ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending ledger entries: %w", err)
	}
	defer rows.Close()

	return scanLedgerRows(rows)
}

// GetStats retrieves per-category purchase aggregates. A nil userID
// spans all users.
func (r *LedgerRepo) GetStats(ctx context.Context, userID *uuid.UUID, periodStart *int64) ([]ports.CategoryStats, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "kind = 'purchase'")

	if userID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *userID)
		argIdx++
	}
	if periodStart != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *periodStart)
	}

	query := fmt.Sprintf(`SELECT
		category,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'success') AS successful,
		COUNT(*) FILTER (WHERE status = 'failed') AS failed,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COALESCE(SUM(amount) FILTER (WHERE status = 'success'), 0) AS total_amount,
		COALESCE(SUM(commission) FILTER (WHERE status = 'success'), 0) AS total_commission
		FROM ledger_entries WHERE %s GROUP BY category ORDER BY category`,
		strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	defer rows.Close()

	var stats []ports.CategoryStats
	for rows.Next() {
		s := ports.CategoryStats{}
		err := rows.Scan(
			&s.Category, &s.Total, &s.Successful, &s.Failed, &s.Pending,
			&s.TotalAmount, &s.TotalCommission,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger stats row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger stats rows: %w", err)
	}
	return stats, nil
}

func scanLedgerRows(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.UserID, &e.RequestID, &e.Kind, &e.Status, &e.Title, &e.Description,
			&e.Amount, &e.Commission, &e.BalanceBefore, &e.BalanceAfter,
			&e.Provider, &e.Category, &e.ProviderRef, &e.Metadata, &e.Source, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, nil
}
