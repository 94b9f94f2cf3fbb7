package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Product, error) {
	const query = `
SELECT id, tenant_id, name, COALESCE(category, ''), active, pricing_rules, created_at
FROM products
WHERE tenant_id = $1
ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var rawRules []byte
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Category, &p.Active, &rawRules, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Pricing = decodePricingRules(rawRules)
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate products: %w", rows.Err())
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	rules, err := json.Marshal(product.Pricing)
	if err != nil {
		return fmt.Errorf("encode pricing rules: %w", err)
	}

	const stmt = `
INSERT INTO products (id, tenant_id, name, category, active, pricing_rules, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.pool.Exec(ctx, stmt,
		product.ID,
		product.TenantID,
		product.Name,
		product.Category,
		product.Active,
		rules,
		product.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// decodePricingRules tolerates missing or malformed stored JSON; the column
// is written by more than one producer.
func decodePricingRules(raw []byte) domain.PricingRules {
	if len(raw) == 0 {
		return domain.PricingRules{}
	}
	var rules domain.PricingRules
	if err := json.Unmarshal(raw, &rules); err != nil {
		return domain.PricingRules{}
	}
	return rules
}
