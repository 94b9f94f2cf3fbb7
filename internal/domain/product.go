package domain

import "time"

// PricingRules is the JSON blob attached to a catalog item. Field names
// follow the upstream assistant's schema.
type PricingRules struct {
	DefaultPrice    float64 `json:"preco_padrao"`
	DurationMinutes int     `json:"duracao_minutos"`
}

// Product is one catalog item offered through the assistant.
type Product struct {
	ID        string
	TenantID  string
	Name      string
	Category  string
	Active    bool
	Pricing   PricingRules
	CreatedAt time.Time
}
