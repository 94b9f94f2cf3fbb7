// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ClaimsTotal tracks conversation claim attempts by outcome.
	ClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_claims_total",
			Help: "Conversation claim attempts",
		},
		[]string{"tenant_id", "outcome"},
	)

	// CampaignSendsTotal tracks campaign dispatches.
	CampaignSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_sends_total",
			Help: "Campaign dispatches recorded",
		},
		[]string{"tenant_id"},
	)

	// CampaignTargetsTotal tracks customers targeted by campaigns.
	CampaignTargetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_targets_total",
			Help: "Customers targeted by campaigns",
		},
		[]string{"tenant_id"},
	)

	// LoginsTotal tracks panel login attempts by outcome.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panel_logins_total",
			Help: "Panel login attempts",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordClaim records a conversation claim attempt.
func RecordClaim(tenantID string, won bool) {
	outcome := "won"
	if !won {
		outcome = "lost"
	}
	ClaimsTotal.WithLabelValues(tenantID, outcome).Inc()
}

// RecordCampaignSend records a campaign dispatch and its target count.
func RecordCampaignSend(tenantID string, targets int) {
	CampaignSendsTotal.WithLabelValues(tenantID).Inc()
	CampaignTargetsTotal.WithLabelValues(tenantID).Add(float64(targets))
}
