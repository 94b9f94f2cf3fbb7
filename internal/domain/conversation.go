package domain

import "time"

// ConversationProfile is the ownership and CRM state for one
// (tenant, end-customer) pair. CurrentOwner empty means unclaimed: the
// conversation sits in the shared queue and any attendant may claim it.
// Claims have no expiry; an abandoned claim persists until released.
type ConversationProfile struct {
	TenantID     string
	CustomerRef  string
	CurrentOwner string
	Tags         []string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p ConversationProfile) Claimed() bool {
	return p.CurrentOwner != ""
}

// NormalizeTags deduplicates tags preserving first-seen order and drops
// empty entries. Stored tags are a set, not a list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Conversation is one thread between the assistant and an end customer,
// listed in the team inbox most-recently-updated first.
type Conversation struct {
	ID          string
	TenantID    string
	CustomerRef string
	Metadata    map[string]any
	UpdatedAt   time.Time
}

// Message is one entry in a conversation history.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Body           string
	CreatedAt      time.Time
}
