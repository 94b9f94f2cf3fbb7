package app

import (
	"context"
	"time"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

type BookingRepository interface {
	// ListByTenant returns service and venue bookings together, both shapes
	// normalized into domain.Booking.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Booking, error)
}

type ProductRepository interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Product, error)
	Create(ctx context.Context, product domain.Product) error
}

// FunnelService builds the Kanban board: it loads a tenant's bookings,
// resolves product display names from the catalog, applies the operator's
// period and product filters and classifies what remains.
type FunnelService struct {
	bookings BookingRepository
	products ProductRepository
	clock    clock.Clock
}

func NewFunnelService(bookings BookingRepository, products ProductRepository, clk clock.Clock) *FunnelService {
	return &FunnelService{
		bookings: bookings,
		products: products,
		clock:    clk,
	}
}

type BoardQuery struct {
	From     time.Time
	To       time.Time
	Products []string
}

func (q BoardQuery) hasPeriod() bool {
	return !q.From.IsZero() || !q.To.IsZero()
}

type BoardResult struct {
	Board      domain.Board
	Total      int
	OpenAmount float64
}

func (s *FunnelService) Board(ctx context.Context, tenantID string, q BoardQuery) (BoardResult, error) {
	records, err := s.bookings.ListByTenant(ctx, tenantID)
	if err != nil {
		return BoardResult{}, err
	}

	catalog, err := s.products.ListByTenant(ctx, tenantID)
	if err != nil {
		return BoardResult{}, err
	}
	names := make(map[string]string, len(catalog))
	for _, product := range catalog {
		names[product.ID] = product.Name
	}
	for i := range records {
		records[i].ProductName = names[records[i].ProductRef]
	}

	if q.hasPeriod() {
		records = domain.FilterByPeriod(records, q.From, q.To, s.clock.Now())
	}
	records = domain.FilterByProducts(records, q.Products)

	board := domain.Classify(records)
	return BoardResult{
		Board:      board,
		Total:      board.Size(),
		OpenAmount: board.OpenAmount(),
	}, nil
}
