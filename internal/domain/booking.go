package domain

import "time"

type BookingKind string

const (
	KindServiceBooking BookingKind = "service"
	KindVenueBooking   BookingKind = "venue"
)

// Booking represents one scheduled service or reserved slot. StatusText is
// producer-controlled free text, not a closed enum; unknown values are legal
// and classify as pending.
type Booking struct {
	ID          string
	TenantID    string
	Kind        BookingKind
	CustomerRef string // phone-shaped id; empty means unknown customer
	ProductRef  string
	ProductName string // resolved display name; empty until resolved
	StatusText  string
	Amount      float64
	// OccursAt is zero when the producer supplied a date the store could not
	// parse; such records stay out of period-filtered views but still count
	// in unfiltered classification.
	OccursAt  time.Time
	CreatedAt time.Time
}

func (b Booking) HasOccursAt() bool {
	return !b.OccursAt.IsZero()
}
