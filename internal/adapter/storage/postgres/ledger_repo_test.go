package postgres

import (
	"context"
	"testing"
	"time"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(userID uuid.UUID) *domain.LedgerEntry {
	ref := "vt-12345"
	return &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        userID,
		RequestID:     "req-001",
		Kind:          domain.LedgerKindPurchase,
		Status:        domain.LedgerStatusSuccess,
		Title:         "Airtime Subscription",
		Description:   "N500 mtn airtime for 08031234567",
		Amount:        decimal.NewFromInt(500),
		Commission:    decimal.NewFromInt(10),
		BalanceBefore: decimal.NewFromInt(2000),
		BalanceAfter:  decimal.NewFromInt(1500),
		Provider:      domain.ProviderVTPass,
		Category:      domain.CategoryAirtime,
		ProviderRef:   &ref,
		Metadata:      map[string]any{"network": "mtn"},
		Source:        "mobile",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func ledgerTestColumns() []string {
	return []string{
		"id", "user_id", "request_id", "kind", "status", "title", "description",
		"amount", "commission", "balance_before", "balance_after",
		"provider", "category", "provider_reference", "meta_data", "source", "created_at",
	}
}

func ledgerRow(e *domain.LedgerEntry) *pgxmock.Rows {
	return pgxmock.NewRows(ledgerTestColumns()).AddRow(
		e.ID, e.UserID, e.RequestID, e.Kind, e.Status, e.Title, e.Description,
		e.Amount, e.Commission, e.BalanceBefore, e.BalanceAfter,
		e.Provider, e.Category, e.ProviderRef, e.Metadata, e.Source, e.CreatedAt,
	)
}

func TestLedgerRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.UserID, e.RequestID, e.Kind, e.Status, e.Title, e.Description,
			e.Amount, e.Commission, e.BalanceBefore, e.BalanceAfter,
			e.Provider, e.Category, e.ProviderRef, e.Metadata, e.Source, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = repo.Append(ctx, tx, e)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_AppendOne(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.UserID, e.RequestID, e.Kind, e.Status, e.Title, e.Description,
			e.Amount, e.Commission, e.BalanceBefore, e.BalanceAfter,
			e.Provider, e.Category, e.ProviderRef, e.Metadata, e.Source, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.AppendOne(context.Background(), e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
		WithArgs(e.ID).
		WillReturnRows(ledgerRow(e))

	result, err := repo.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, e.RequestID, result.RequestID)
	assert.Equal(t, domain.LedgerStatusSuccess, result.Status)
	assert.True(t, result.Amount.Equal(e.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(ledgerTestColumns()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_List_WithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	userID := uuid.New()
	e := newTestEntry(userID)

	status := domain.LedgerStatusSuccess
	category := domain.CategoryAirtime

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID, status, category).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM ledger_entries .+ ORDER BY created_at DESC").
		WithArgs(userID, status, category, 20, 0).
		WillReturnRows(ledgerRow(e))

	entries, total, err := repo.List(context.Background(), ports.LedgerListParams{
		UserID:   userID,
		Status:   &status,
		Category: &category,
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, e.ID, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_List_Pagination(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(45)))
	mock.ExpectQuery("SELECT .+ FROM ledger_entries .+ ORDER BY created_at DESC").
		WithArgs(userID, 10, 20).
		WillReturnRows(pgxmock.NewRows(ledgerTestColumns()))

	entries, total, err := repo.List(context.Background(), ports.LedgerListParams{
		UserID:   userID,
		Page:     3,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(45), total)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())
	e.Status = domain.LedgerStatusPending
	cutoff := time.Now().Add(-5 * time.Minute)

	mock.ExpectQuery("SELECT .+ FROM ledger_entries WHERE kind = 'purchase' AND status = 'pending'").
		WithArgs(cutoff, 50).
		WillReturnRows(ledgerRow(e))

	entries, err := repo.ListPending(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.LedgerStatusPending, entries[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_GetStats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	userID := uuid.New()
	periodStart := time.Now().Add(-24 * time.Hour).Unix()

	rows := pgxmock.NewRows([]string{
		"category", "total", "successful", "failed", "pending", "total_amount", "total_commission",
	}).AddRow(
		domain.CategoryAirtime, int64(10), int64(8), int64(1), int64(1),
		decimal.NewFromInt(4000), decimal.NewFromInt(80),
	).AddRow(
		domain.CategoryData, int64(5), int64(5), int64(0), int64(0),
		decimal.NewFromInt(2500), decimal.NewFromInt(100),
	)

	mock.ExpectQuery("SELECT category, COUNT").
		WithArgs(userID, periodStart).
		WillReturnRows(rows)

	stats, err := repo.GetStats(context.Background(), &userID, &periodStart)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, domain.CategoryAirtime, stats[0].Category)
	assert.Equal(t, int64(8), stats[0].Successful)
	assert.True(t, stats[1].TotalAmount.Equal(decimal.NewFromInt(2500)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
