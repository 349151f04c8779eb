package postgres

import (
	"context"
	"errors"
	"fmt"

	"billpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogRepo implements ports.CatalogRepository over the plans and
// education_services tables. The catalog is written by an operational
// sync, never by the purchase path.
type CatalogRepo struct {
	pool Pool
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(pool Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// GetPlan fetches a purchasable plan by UUID.
func (r *CatalogRepo) GetPlan(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `SELECT id, category, provider, service_id, code, network, name, price, commission
		FROM plans WHERE id = $1`

	return r.scanPlan(r.pool.QueryRow(ctx, query, id))
}

// GetElectricityService fetches a disco by UUID.
func (r *CatalogRepo) GetElectricityService(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `SELECT id, category, provider, service_id, code, network, name, price, commission
		FROM plans WHERE id = $1 AND category = 'electricity'`

	return r.scanPlan(r.pool.QueryRow(ctx, query, id))
}

// GetEducationService fetches an exam-pin product by type and variation.
func (r *CatalogRepo) GetEducationService(ctx context.Context, serviceType, variationCode string) (*domain.EducationService, error) {
	query := `SELECT id, service_type, service_id, variation_code, price, commission_rate, requires_verify
		FROM education_services WHERE service_type = $1 AND variation_code = $2`

	svc := &domain.EducationService{}
	err := r.pool.QueryRow(ctx, query, serviceType, variationCode).Scan(
		&svc.ID, &svc.ServiceType, &svc.ServiceID, &svc.VariationCode,
		&svc.Price, &svc.CommissionRate, &svc.RequiresVerify,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get education service: %w", err)
	}
	return svc, nil
}

func (r *CatalogRepo) scanPlan(row pgx.Row) (*domain.Plan, error) {
	p := &domain.Plan{}
	err := row.Scan(
		&p.ID, &p.Category, &p.Provider, &p.ServiceID, &p.Code,
		&p.Network, &p.Name, &p.Price, &p.Commission,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	return p, nil
}
