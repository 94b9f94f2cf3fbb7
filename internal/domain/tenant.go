package domain

import "time"

// Tenant is one merchant using the WhatsApp assistant. TeamMode gates the
// conversation-claim rules: when false the dashboard runs single-attendant
// and ownership checks are bypassed entirely.
type Tenant struct {
	ID        string
	Name      string
	BotPaused bool
	TeamMode  bool
	Prompt    string
	// FlowConfig is an opaque upstream-owned JSON blob (voice, temperature,
	// whatever the assistant runtime adds). Missing or malformed stored JSON
	// is treated as an empty object, never an error.
	FlowConfig map[string]any
	CreatedAt  time.Time
}

// KPIReport carries the dashboard card values for one tenant.
type KPIReport struct {
	RevenueTotal float64 `json:"revenue_total"`
	Attendances  int     `json:"attendances"`
	Messages     int     `json:"messages"`
}
