package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

// CatalogService manages a tenant's products.
type CatalogService struct {
	products ProductRepository
	clock    clock.Clock
}

func NewCatalogService(products ProductRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		products: products,
		clock:    clk,
	}
}

func (s *CatalogService) List(ctx context.Context, tenantID string) ([]domain.Product, error) {
	return s.products.ListByTenant(ctx, tenantID)
}

type CreateProductInput struct {
	Name     string
	Category string
	Price    float64
}

// slot length the assistant assumes when the operator does not configure one
const defaultDurationMinutes = 60

func (s *CatalogService) Create(ctx context.Context, tenantID string, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrProductNameRequired
	}
	if in.Price < 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	product := domain.Product{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     in.Name,
		Category: in.Category,
		Active:   true,
		Pricing: domain.PricingRules{
			DefaultPrice:    in.Price,
			DurationMinutes: defaultDurationMinutes,
		},
		CreatedAt: s.clock.Now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}
