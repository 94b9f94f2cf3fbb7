package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

type CampaignAuditRepository interface {
	Record(ctx context.Context, audit domain.CampaignAudit) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.CampaignAudit, error)
}

// CampaignService scopes broadcast sends by tag filter and leaves an audit
// trail. Actual message delivery belongs to the assistant runtime; this
// service resolves who would receive it and records that a send happened.
type CampaignService struct {
	profiles ConversationRepository
	audits   CampaignAuditRepository
	clock    clock.Clock
}

func NewCampaignService(profiles ConversationRepository, audits CampaignAuditRepository, clk clock.Clock) *CampaignService {
	return &CampaignService{
		profiles: profiles,
		audits:   audits,
		clock:    clk,
	}
}

// Preview resolves the target list without sending or auditing anything.
func (s *CampaignService) Preview(ctx context.Context, tenantID string, chosenTags []string) ([]domain.ConversationProfile, error) {
	customers, err := s.profiles.ListProfiles(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return domain.SelectTargets(customers, domain.NormalizeTags(chosenTags)), nil
}

// Send resolves targets and records the audit row. An empty tag filter
// resolves to zero targets and the send is refused; nothing goes out and
// nothing is audited.
func (s *CampaignService) Send(ctx context.Context, tenantID, message string, chosenTags []string) (domain.CampaignAudit, error) {
	if message == "" {
		return domain.CampaignAudit{}, domain.ErrEmptyMessage
	}

	tags := domain.NormalizeTags(chosenTags)
	targets, err := s.Preview(ctx, tenantID, tags)
	if err != nil {
		return domain.CampaignAudit{}, err
	}
	if len(targets) == 0 {
		return domain.CampaignAudit{}, domain.ErrNoTargets
	}

	audit := domain.CampaignAudit{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Message:     message,
		TargetCount: len(targets),
		TagFilter:   tags,
		SentAt:      s.clock.Now(),
	}
	if err := s.audits.Record(ctx, audit); err != nil {
		return domain.CampaignAudit{}, err
	}
	return audit, nil
}

// History lists past campaign audits, newest first.
func (s *CampaignService) History(ctx context.Context, tenantID string) ([]domain.CampaignAudit, error) {
	return s.audits.ListByTenant(ctx, tenantID)
}
