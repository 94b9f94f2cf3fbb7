package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// ListByTenant reads service and venue bookings in one transaction so the
// board reflects a single snapshot of both tables.
func (r *BookingRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Booking, error) {
	var records []domain.Booking
	err := r.WithTx(ctx, func(txCtx context.Context) error {
		service, err := r.listTable(txCtx, "bookings", domain.KindServiceBooking, tenantID)
		if err != nil {
			return err
		}
		venue, err := r.listTable(txCtx, "venue_bookings", domain.KindVenueBooking, tenantID)
		if err != nil {
			return err
		}
		records = append(service, venue...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BookingRepository) listTable(ctx context.Context, table string, kind domain.BookingKind, tenantID string) ([]domain.Booking, error) {
	query := fmt.Sprintf(`
SELECT id, tenant_id, COALESCE(customer_ref, ''), COALESCE(product_id::text, ''),
       COALESCE(status, ''), COALESCE(amount, 0), COALESCE(occurs_at, ''), created_at
FROM %s
WHERE tenant_id = $1
ORDER BY created_at DESC`, table)

	rows, err := r.query(ctx, query, tenantID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var records []domain.Booking
	for rows.Next() {
		var rec domain.Booking
		var rawOccursAt string
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.CustomerRef, &rec.ProductRef,
			&rec.StatusText, &rec.Amount, &rawOccursAt, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec.Kind = kind
		rec.OccursAt = parseOccursAt(rawOccursAt)
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, rows.Err())
	}
	return records, nil
}

// occurs_at is producer-controlled text; layouts observed upstream.
var occursAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseOccursAt returns the zero time for anything unparseable. Such records
// still classify; they just stay out of period-filtered views.
func parseOccursAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range occursAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
