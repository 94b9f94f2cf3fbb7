package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type PanelUserRepository struct {
	pool *pgxpool.Pool
}

func NewPanelUserRepository(pool *pgxpool.Pool) *PanelUserRepository {
	return &PanelUserRepository{pool: pool}
}

func (r *PanelUserRepository) FindByEmail(ctx context.Context, email string) (*domain.PanelUser, error) {
	const query = `
SELECT id, COALESCE(tenant_id::text, ''), name, email, password_hash, role, created_at
FROM panel_users
WHERE email = $1`

	var u domain.PanelUser
	err := r.pool.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.TenantID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find panel user: %w", err)
	}
	return &u, nil
}
