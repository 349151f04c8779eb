package postgres

import (
	"context"
	"testing"

	"billpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planColumns() []string {
	return []string{"id", "category", "provider", "service_id", "code", "network", "name", "price", "commission"}
}

func planRow(p *domain.Plan) *pgxmock.Rows {
	return pgxmock.NewRows(planColumns()).AddRow(
		p.ID, p.Category, p.Provider, p.ServiceID, p.Code,
		p.Network, p.Name, p.Price, p.Commission,
	)
}

func TestCatalogRepo_GetPlan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)
	p := &domain.Plan{
		ID:         uuid.New(),
		Category:   domain.CategoryData,
		Provider:   domain.ProviderGsub,
		ServiceID:  "mtn",
		Code:       "mtn_sme_1gb",
		Network:    "mtn",
		Name:       "MTN SME 1GB",
		Price:      decimal.NewFromInt(280),
		Commission: decimal.NewFromInt(20),
	}

	mock.ExpectQuery("SELECT .+ FROM plans WHERE id").
		WithArgs(p.ID).
		WillReturnRows(planRow(p))

	result, err := repo.GetPlan(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "mtn_sme_1gb", result.Code)
	assert.True(t, result.Total().Equal(decimal.NewFromInt(300)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_GetPlan_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM plans WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(planColumns()))

	result, err := repo.GetPlan(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_GetElectricityService(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)
	p := &domain.Plan{
		ID:        uuid.New(),
		Category:  domain.CategoryElectricity,
		Provider:  domain.ProviderVTPass,
		ServiceID: "ikeja-electric",
		Name:      "Ikeja Electric",
	}

	mock.ExpectQuery("SELECT .+ FROM plans WHERE id = .+ AND category = 'electricity'").
		WithArgs(p.ID).
		WillReturnRows(planRow(p))

	result, err := repo.GetElectricityService(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "ikeja-electric", result.ServiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_GetEducationService(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)
	svc := &domain.EducationService{
		ID:             uuid.New(),
		ServiceType:    "jamb",
		ServiceID:      "jamb",
		VariationCode:  "utme",
		Price:          decimal.NewFromInt(4700),
		CommissionRate: decimal.NewFromFloat(0.02),
		RequiresVerify: true,
	}

	mock.ExpectQuery("SELECT .+ FROM education_services WHERE service_type").
		WithArgs("jamb", "utme").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "service_type", "service_id", "variation_code", "price", "commission_rate", "requires_verify",
		}).AddRow(
			svc.ID, svc.ServiceType, svc.ServiceID, svc.VariationCode,
			svc.Price, svc.CommissionRate, svc.RequiresVerify,
		))

	result, err := repo.GetEducationService(context.Background(), "jamb", "utme")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.RequiresVerify)
	assert.True(t, result.Price.Equal(decimal.NewFromInt(4700)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepo_GetEducationService_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCatalogRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM education_services WHERE service_type").
		WithArgs("waec", "bogus").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "service_type", "service_id", "variation_code", "price", "commission_rate", "requires_verify",
		}))

	result, err := repo.GetEducationService(context.Background(), "waec", "bogus")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
