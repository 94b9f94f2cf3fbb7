package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

func (r *CampaignRepository) Record(ctx context.Context, audit domain.CampaignAudit) error {
	filter, err := json.Marshal(audit.TagFilter)
	if err != nil {
		return fmt.Errorf("encode tag filter: %w", err)
	}
	if audit.TagFilter == nil {
		filter = []byte("[]")
	}

	const stmt = `
INSERT INTO campaign_audits (id, tenant_id, message, target_count, tag_filter, sent_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.pool.Exec(ctx, stmt,
		audit.ID,
		audit.TenantID,
		audit.Message,
		audit.TargetCount,
		filter,
		audit.SentAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("record campaign audit: %w", err)
	}
	return nil
}

func (r *CampaignRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CampaignAudit, error) {
	const query = `
SELECT id, tenant_id, message, target_count, tag_filter, sent_at
FROM campaign_audits
WHERE tenant_id = $1
ORDER BY sent_at DESC`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list campaign audits: %w", err)
	}
	defer rows.Close()

	var audits []domain.CampaignAudit
	for rows.Next() {
		var audit domain.CampaignAudit
		var rawFilter []byte
		if err := rows.Scan(&audit.ID, &audit.TenantID, &audit.Message, &audit.TargetCount, &rawFilter, &audit.SentAt); err != nil {
			return nil, fmt.Errorf("scan campaign audit: %w", err)
		}
		audit.TagFilter = decodeTags(rawFilter)
		audits = append(audits, audit)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate campaign audits: %w", rows.Err())
	}
	return audits, nil
}
