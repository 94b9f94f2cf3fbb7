package app

import (
	"context"
	"time"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

type ConversationRepository interface {
	GetProfile(ctx context.Context, tenantID, customerRef string) (*domain.ConversationProfile, error)
	// ClaimOwner performs an atomic conditional write: set the owner only
	// where no owner is set, creating the profile row if missing. Returns
	// false when the row already has a different owner.
	ClaimOwner(ctx context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error)
	// ReleaseOwner clears the owner only where the caller is the owner.
	// Returns false when the condition did not match.
	ReleaseOwner(ctx context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error)
	UpsertProfile(ctx context.Context, profile domain.ConversationProfile) error
	ListProfiles(ctx context.Context, tenantID string) ([]domain.ConversationProfile, error)
	ListRecent(ctx context.Context, tenantID string, limit int) ([]domain.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

type TenantGetter interface {
	GetTenant(ctx context.Context, id string) (domain.Tenant, error)
}

// InboxService governs which attendant, if any, owns an end-customer
// conversation. Ownership is exclusive and has no expiry: an abandoned claim
// persists until a human releases it.
type InboxService struct {
	repo    ConversationRepository
	tenants TenantGetter
	clock   clock.Clock
}

const (
	recentConversationsLimit = 20
	messageHistoryLimit      = 40
)

func NewInboxService(repo ConversationRepository, tenants TenantGetter, clk clock.Clock) *InboxService {
	return &InboxService{
		repo:    repo,
		tenants: tenants,
		clock:   clk,
	}
}

// Claim moves an unclaimed conversation to the calling attendant. Claiming an
// owned conversation fails with AlreadyClaimedError reporting the current
// owner; it never transfers ownership. Two concurrent claims resolve to one
// winner because the write is a single conditional update in the store, not a
// read-then-write pair.
func (s *InboxService) Claim(ctx context.Context, tenantID, customerRef, attendant string) error {
	if attendant == "" {
		return domain.ErrAttendantRequired
	}
	if customerRef == "" {
		return domain.ErrCustomerRefRequired
	}

	won, err := s.repo.ClaimOwner(ctx, tenantID, customerRef, attendant, s.clock.Now())
	if err != nil {
		return err
	}
	if won {
		return nil
	}

	profile, err := s.repo.GetProfile(ctx, tenantID, customerRef)
	if err != nil {
		return err
	}
	claimed := &domain.AlreadyClaimedError{}
	if profile != nil {
		claimed.Owner = profile.CurrentOwner
	}
	return claimed
}

// Release returns a conversation to the shared queue. Only the current owner
// may release; anyone else gets ErrNotOwner and the state is unchanged.
func (s *InboxService) Release(ctx context.Context, tenantID, customerRef, attendant string) error {
	if attendant == "" {
		return domain.ErrAttendantRequired
	}
	if customerRef == "" {
		return domain.ErrCustomerRefRequired
	}

	released, err := s.repo.ReleaseOwner(ctx, tenantID, customerRef, attendant, s.clock.Now())
	if err != nil {
		return err
	}
	if released {
		return nil
	}

	profile, err := s.repo.GetProfile(ctx, tenantID, customerRef)
	if err != nil {
		return err
	}
	if profile == nil {
		return domain.ErrConversationNotFound
	}
	return domain.ErrNotOwner
}

// CanRespond reports whether the attendant may reply to the conversation.
// With the tenant's team mode disabled the restriction does not exist and
// everyone may respond. With it enabled, only the current owner may: an
// unclaimed conversation must be claimed first.
func (s *InboxService) CanRespond(ctx context.Context, tenantID, customerRef, attendant string) (bool, error) {
	tenant, err := s.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if !tenant.TeamMode {
		return true, nil
	}

	profile, err := s.repo.GetProfile(ctx, tenantID, customerRef)
	if err != nil {
		return false, err
	}
	if profile == nil || !profile.Claimed() {
		return false, nil
	}
	return profile.CurrentOwner == attendant, nil
}

// UpsertProfile writes tags and notes for a customer, creating the profile
// row lazily. Tags are stored as a set.
func (s *InboxService) UpsertProfile(ctx context.Context, tenantID, customerRef string, tags []string, notes string) error {
	if customerRef == "" {
		return domain.ErrCustomerRefRequired
	}

	return s.repo.UpsertProfile(ctx, domain.ConversationProfile{
		TenantID:    tenantID,
		CustomerRef: customerRef,
		Tags:        domain.NormalizeTags(tags),
		Notes:       notes,
		UpdatedAt:   s.clock.Now(),
	})
}

// RecentConversations lists the tenant's most recently updated threads for
// the inbox side panel.
func (s *InboxService) RecentConversations(ctx context.Context, tenantID string) ([]domain.Conversation, error) {
	return s.repo.ListRecent(ctx, tenantID, recentConversationsLimit)
}

// MessageHistory returns the newest messages of one conversation, newest
// first.
func (s *InboxService) MessageHistory(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if conversationID == "" {
		return nil, domain.ErrConversationNotFound
	}
	return s.repo.ListMessages(ctx, conversationID, messageHistoryLimit)
}
