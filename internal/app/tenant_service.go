package app

import (
	"context"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type TenantRepository interface {
	GetTenant(ctx context.Context, id string) (domain.Tenant, error)
	UpdateAssistant(ctx context.Context, id, prompt string, flowConfig map[string]any) error
	// ToggleBot flips bot_paused atomically and returns the new value.
	ToggleBot(ctx context.Context, id string) (bool, error)
	SetTeamMode(ctx context.Context, id string, enabled bool) error
}

// TenantService exposes tenant configuration: the assistant "brain" (prompt
// plus flow-config JSON), the bot pause switch and the team-mode flag.
type TenantService struct {
	repo TenantRepository
}

func NewTenantService(repo TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

func (s *TenantService) Settings(ctx context.Context, tenantID string) (domain.Tenant, error) {
	return s.repo.GetTenant(ctx, tenantID)
}

type AssistantUpdate struct {
	Prompt      string
	Voice       string
	Temperature float64
}

// UpdateAssistant merges the operator's changes into the stored flow config.
// Keys the upstream runtime put there and this dashboard does not know about
// must survive the update.
func (s *TenantService) UpdateAssistant(ctx context.Context, tenantID string, in AssistantUpdate) error {
	tenant, err := s.repo.GetTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	cfg := tenant.FlowConfig
	if cfg == nil {
		cfg = make(map[string]any)
	}
	cfg["openai_voice"] = in.Voice
	cfg["temperature"] = in.Temperature

	return s.repo.UpdateAssistant(ctx, tenantID, in.Prompt, cfg)
}

// ToggleBot pauses or resumes the assistant, returning the new paused state.
func (s *TenantService) ToggleBot(ctx context.Context, tenantID string) (bool, error) {
	return s.repo.ToggleBot(ctx, tenantID)
}

func (s *TenantService) SetTeamMode(ctx context.Context, tenantID string, enabled bool) error {
	return s.repo.SetTeamMode(ctx, tenantID, enabled)
}
