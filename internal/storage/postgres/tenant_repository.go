package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type TenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

func (r *TenantRepository) GetTenant(ctx context.Context, id string) (domain.Tenant, error) {
	const query = `
SELECT id, name, bot_paused, team_mode, COALESCE(prompt, ''), flow_config, created_at
FROM tenants
WHERE id = $1`

	var t domain.Tenant
	var rawConfig []byte
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&t.ID, &t.Name, &t.BotPaused, &t.TeamMode, &t.Prompt, &rawConfig, &t.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Tenant{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Tenant{}, domain.ErrTenantNotFound
		}
		return domain.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	t.FlowConfig = decodeObject(rawConfig)
	return t, nil
}

func (r *TenantRepository) UpdateAssistant(ctx context.Context, id, prompt string, flowConfig map[string]any) error {
	cfg, err := json.Marshal(flowConfig)
	if err != nil {
		return fmt.Errorf("encode flow config: %w", err)
	}

	const stmt = `UPDATE tenants SET prompt = $2, flow_config = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, id, prompt, cfg)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update assistant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// ToggleBot flips bot_paused in a single statement so two racing toggles
// cannot read the same old value.
func (r *TenantRepository) ToggleBot(ctx context.Context, id string) (bool, error) {
	const stmt = `UPDATE tenants SET bot_paused = NOT bot_paused WHERE id = $1 RETURNING bot_paused`

	var paused bool
	err := r.pool.QueryRow(ctx, stmt, id).Scan(&paused)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return false, domain.ErrTenantNotFound
		}
		return false, fmt.Errorf("toggle bot: %w", err)
	}
	return paused, nil
}

func (r *TenantRepository) SetTeamMode(ctx context.Context, id string, enabled bool) error {
	const stmt = `UPDATE tenants SET team_mode = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, id, enabled)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set team mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// TenantKPIs aggregates the dashboard card values. Cancelled statuses stay
// out of revenue so the cards agree with the funnel board.
func (r *TenantRepository) TenantKPIs(ctx context.Context, tenantID string) (domain.KPIReport, error) {
	const query = `
SELECT
	COALESCE((SELECT SUM(amount) FROM bookings
		WHERE tenant_id = $1 AND COALESCE(status, '') NOT IN ('Cancelado', 'Desistiu')), 0)
	+ COALESCE((SELECT SUM(amount) FROM venue_bookings
		WHERE tenant_id = $1 AND COALESCE(status, '') NOT IN ('Cancelado', 'Desistiu')), 0),
	(SELECT COUNT(*) FROM conversations WHERE tenant_id = $1),
	(SELECT COUNT(*) FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.tenant_id = $1)`

	var report domain.KPIReport
	err := r.pool.QueryRow(ctx, query, tenantID).
		Scan(&report.RevenueTotal, &report.Attendances, &report.Messages)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.KPIReport{}, domain.ErrInvalidID
		}
		return domain.KPIReport{}, fmt.Errorf("tenant kpis: %w", err)
	}
	return report, nil
}
