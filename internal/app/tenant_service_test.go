package app

import (
	"context"
	"testing"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

func TestTenantService_UpdateAssistant(t *testing.T) {
	t.Parallel()

	t.Run("merges into existing flow config", func(t *testing.T) {
		repo := &fakeFullTenantRepo{tenant: domain.Tenant{
			ID:     "tenant-1",
			Prompt: "old prompt",
			FlowConfig: map[string]any{
				"upstream_key": "keep-me",
				"temperature":  0.2,
			},
		}}
		svc := NewTenantService(repo)

		err := svc.UpdateAssistant(context.Background(), "tenant-1", AssistantUpdate{
			Prompt:      "new prompt",
			Voice:       "nova",
			Temperature: 0.7,
		})
		if err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}

		if repo.updatedPrompt != "new prompt" {
			t.Fatalf("expected prompt updated, got %q", repo.updatedPrompt)
		}
		if repo.updatedConfig["upstream_key"] != "keep-me" {
			t.Fatalf("unknown upstream keys must survive the merge, got %v", repo.updatedConfig)
		}
		if repo.updatedConfig["openai_voice"] != "nova" {
			t.Fatalf("expected voice set, got %v", repo.updatedConfig)
		}
		if repo.updatedConfig["temperature"] != 0.7 {
			t.Fatalf("expected temperature overwritten, got %v", repo.updatedConfig)
		}
	})

	t.Run("nil stored config treated as empty object", func(t *testing.T) {
		repo := &fakeFullTenantRepo{tenant: domain.Tenant{ID: "tenant-1"}}
		svc := NewTenantService(repo)

		if err := svc.UpdateAssistant(context.Background(), "tenant-1", AssistantUpdate{Voice: "alloy"}); err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}
		if repo.updatedConfig["openai_voice"] != "alloy" {
			t.Fatalf("expected config created from scratch, got %v", repo.updatedConfig)
		}
	})

	t.Run("unknown tenant", func(t *testing.T) {
		repo := &fakeFullTenantRepo{tenant: domain.Tenant{ID: "tenant-1"}}
		svc := NewTenantService(repo)

		if err := svc.UpdateAssistant(context.Background(), "tenant-2", AssistantUpdate{}); err != domain.ErrTenantNotFound {
			t.Fatalf("expected ErrTenantNotFound, got %v", err)
		}
	})
}

func TestTenantService_ToggleBot(t *testing.T) {
	t.Parallel()

	repo := &fakeFullTenantRepo{tenant: domain.Tenant{ID: "tenant-1", BotPaused: false}}
	svc := NewTenantService(repo)

	paused, err := svc.ToggleBot(context.Background(), "tenant-1")
	if err != nil || !paused {
		t.Fatalf("expected toggle to pause, paused=%v err=%v", paused, err)
	}
	paused, err = svc.ToggleBot(context.Background(), "tenant-1")
	if err != nil || paused {
		t.Fatalf("expected toggle to resume, paused=%v err=%v", paused, err)
	}
}

type fakeFullTenantRepo struct {
	tenant        domain.Tenant
	updatedPrompt string
	updatedConfig map[string]any
}

func (f *fakeFullTenantRepo) GetTenant(_ context.Context, id string) (domain.Tenant, error) {
	if id != f.tenant.ID {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return f.tenant, nil
}

func (f *fakeFullTenantRepo) UpdateAssistant(_ context.Context, id, prompt string, flowConfig map[string]any) error {
	if id != f.tenant.ID {
		return domain.ErrTenantNotFound
	}
	f.updatedPrompt = prompt
	f.updatedConfig = flowConfig
	f.tenant.Prompt = prompt
	f.tenant.FlowConfig = flowConfig
	return nil
}

func (f *fakeFullTenantRepo) ToggleBot(_ context.Context, id string) (bool, error) {
	if id != f.tenant.ID {
		return false, domain.ErrTenantNotFound
	}
	f.tenant.BotPaused = !f.tenant.BotPaused
	return f.tenant.BotPaused, nil
}

func (f *fakeFullTenantRepo) SetTeamMode(_ context.Context, id string, enabled bool) error {
	if id != f.tenant.ID {
		return domain.ErrTenantNotFound
	}
	f.tenant.TeamMode = enabled
	return nil
}
