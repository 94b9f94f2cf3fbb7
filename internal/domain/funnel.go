package domain

import "time"

// Bucket is one column of the Kanban-style sales funnel.
type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketConfirmed Bucket = "confirmed"
	BucketCancelled Bucket = "cancelled"
)

// Status labels observed upstream. The producer adds new labels over time,
// so membership is a first-match table and anything unrecognized stays
// pending rather than failing.
var (
	cancelledStatuses = map[string]struct{}{
		"Cancelado": {},
		"Desistiu":  {},
	}
	confirmedStatuses = map[string]struct{}{
		"Confirmado": {},
		"Pago":       {},
		"Agendado":   {},
	}
)

// BucketFor maps a free-text status label to exactly one funnel bucket.
func BucketFor(statusText string) Bucket {
	if _, ok := cancelledStatuses[statusText]; ok {
		return BucketCancelled
	}
	if _, ok := confirmedStatuses[statusText]; ok {
		return BucketConfirmed
	}
	return BucketPending
}

// Board groups bookings by funnel bucket. Buckets are pairwise disjoint and
// their union is exactly the classified input.
type Board struct {
	Pending   []Booking
	Confirmed []Booking
	Cancelled []Booking
}

// Classify assigns each record to exactly one bucket. Pure; no ordering
// requirement on the input.
func Classify(records []Booking) Board {
	var board Board
	for _, rec := range records {
		switch BucketFor(rec.StatusText) {
		case BucketCancelled:
			board.Cancelled = append(board.Cancelled, rec)
		case BucketConfirmed:
			board.Confirmed = append(board.Confirmed, rec)
		default:
			board.Pending = append(board.Pending, rec)
		}
	}
	return board
}

// Size reports how many records were classified.
func (b Board) Size() int {
	return len(b.Pending) + len(b.Confirmed) + len(b.Cancelled)
}

// OpenAmount sums pending and confirmed amounts. Cancelled revenue does not
// count toward the visible pipeline total.
func (b Board) OpenAmount() float64 {
	var total float64
	for _, rec := range b.Pending {
		total += rec.Amount
	}
	for _, rec := range b.Confirmed {
		total += rec.Amount
	}
	return total
}

// FilterByPeriod keeps records whose occurrence date, ignoring time of day,
// falls in the inclusive range [from, to]. Zero endpoints default to today so
// the range is never invalid. Records without a parseable occurrence date are
// dropped from the filtered view.
func FilterByPeriod(records []Booking, from, to, today time.Time) []Booking {
	if from.IsZero() {
		from = today
	}
	if to.IsZero() {
		to = today
	}
	fromDay := dateOnly(from)
	toDay := dateOnly(to)

	out := make([]Booking, 0, len(records))
	for _, rec := range records {
		if !rec.HasOccursAt() {
			continue
		}
		day := dateOnly(rec.OccursAt)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FilterByProducts keeps records whose resolved product name is in the
// allow-set. An empty allow-set means "no filter": everything passes. This
// mirrors the default-select-all behavior of the board view and is the
// opposite of the campaign tag filter, which treats empty as "select none".
func FilterByProducts(records []Booking, allowedProductNames []string) []Booking {
	if len(allowedProductNames) == 0 {
		return records
	}
	allowed := make(map[string]struct{}, len(allowedProductNames))
	for _, name := range allowedProductNames {
		allowed[name] = struct{}{}
	}

	out := make([]Booking, 0, len(records))
	for _, rec := range records {
		if _, ok := allowed[rec.ProductName]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
