package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

func (r *ConversationRepository) GetProfile(ctx context.Context, tenantID, customerRef string) (*domain.ConversationProfile, error) {
	const query = `
SELECT tenant_id, customer_ref, COALESCE(current_owner, ''), tags, COALESCE(notes, ''), created_at, updated_at
FROM conversation_profiles
WHERE tenant_id = $1 AND customer_ref = $2`

	var p domain.ConversationProfile
	var rawTags []byte
	err := r.queryRow(ctx, query, tenantID, customerRef).
		Scan(&p.TenantID, &p.CustomerRef, &p.CurrentOwner, &rawTags, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.Tags = decodeTags(rawTags)
	return &p, nil
}

// ClaimOwner sets the owner in a single conditional write so two concurrent
// claims resolve to one winner in the database, never in Go. The profile row
// is created lazily on first claim.
func (r *ConversationRepository) ClaimOwner(ctx context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error) {
	const stmt = `
INSERT INTO conversation_profiles (tenant_id, customer_ref, current_owner, tags, notes, created_at, updated_at)
VALUES ($1, $2, $3, '[]'::jsonb, '', $4, $4)
ON CONFLICT (tenant_id, customer_ref)
DO UPDATE SET current_owner = EXCLUDED.current_owner, updated_at = EXCLUDED.updated_at
WHERE conversation_profiles.current_owner IS NULL`

	tag, err := r.exec(ctx, stmt, tenantID, customerRef, attendant, now)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return false, domain.ErrTenantNotFound
		}
		return false, fmt.Errorf("claim owner: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseOwner clears the owner only when the caller holds it.
func (r *ConversationRepository) ReleaseOwner(ctx context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error) {
	const stmt = `
UPDATE conversation_profiles
SET current_owner = NULL, updated_at = $4
WHERE tenant_id = $1 AND customer_ref = $2 AND current_owner = $3`

	tag, err := r.exec(ctx, stmt, tenantID, customerRef, attendant, now)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("release owner: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ConversationRepository) UpsertProfile(ctx context.Context, profile domain.ConversationProfile) error {
	tags, err := json.Marshal(profile.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	if profile.Tags == nil {
		tags = []byte("[]")
	}

	const stmt = `
INSERT INTO conversation_profiles (tenant_id, customer_ref, current_owner, tags, notes, created_at, updated_at)
VALUES ($1, $2, NULL, $3, $4, $5, $5)
ON CONFLICT (tenant_id, customer_ref)
DO UPDATE SET tags = EXCLUDED.tags, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`

	if _, err := r.exec(ctx, stmt, profile.TenantID, profile.CustomerRef, tags, profile.Notes, profile.UpdatedAt); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListProfiles(ctx context.Context, tenantID string) ([]domain.ConversationProfile, error) {
	const query = `
SELECT tenant_id, customer_ref, COALESCE(current_owner, ''), tags, COALESCE(notes, ''), created_at, updated_at
FROM conversation_profiles
WHERE tenant_id = $1
ORDER BY customer_ref ASC`

	rows, err := r.query(ctx, query, tenantID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.ConversationProfile
	for rows.Next() {
		var p domain.ConversationProfile
		var rawTags []byte
		if err := rows.Scan(&p.TenantID, &p.CustomerRef, &p.CurrentOwner, &rawTags, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		p.Tags = decodeTags(rawTags)
		profiles = append(profiles, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}
	return profiles, nil
}

func (r *ConversationRepository) ListRecent(ctx context.Context, tenantID string, limit int) ([]domain.Conversation, error) {
	const query = `
SELECT id, tenant_id, customer_ref, metadata, updated_at
FROM conversations
WHERE tenant_id = $1
ORDER BY updated_at DESC
LIMIT $2`

	rows, err := r.query(ctx, query, tenantID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		var rawMeta []byte
		if err := rows.Scan(&c.ID, &c.TenantID, &c.CustomerRef, &rawMeta, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.Metadata = decodeObject(rawMeta)
		conversations = append(conversations, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate conversations: %w", rows.Err())
	}
	return conversations, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	const query = `
SELECT id, conversation_id, role, body, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.query(ctx, query, conversationID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}
	return messages, nil
}

func (r *ConversationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ConversationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ConversationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

// decodeTags parses a stored jsonb tag array. Missing or malformed JSON is an
// empty set, never an error: the column is producer-controlled.
func decodeTags(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

// decodeObject parses a stored jsonb object with the same tolerance.
func decodeObject(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return map[string]any{}
	}
	return obj
}
