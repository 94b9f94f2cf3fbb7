package domain

import "time"

// CampaignAudit records one broadcast send attempt: the message body, how
// many customers the tag filter resolved to, and the filter itself.
type CampaignAudit struct {
	ID          string
	TenantID    string
	Message     string
	TargetCount int
	TagFilter   []string
	SentAt      time.Time
}
