package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/otti-labs/otti-workspace/internal/clock"
	"github.com/otti-labs/otti-workspace/internal/domain"
)

func TestInboxService_Claim(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	makeSvc := func(profiles []domain.ConversationProfile, teamMode bool) (*InboxService, *fakeConversationRepo) {
		repo := newFakeConversationRepo(profiles)
		tenants := &fakeTenantRepo{tenant: domain.Tenant{ID: "tenant-1", TeamMode: teamMode}}
		return NewInboxService(repo, tenants, clock.NewFixed(now)), repo
	}

	t.Run("claims unclaimed conversation", func(t *testing.T) {
		svc, repo := makeSvc(nil, true)

		if err := svc.Claim(context.Background(), "tenant-1", "5511999990000", "Ana"); err != nil {
			t.Fatalf("expected claim to succeed, got %v", err)
		}
		if owner := repo.owner("tenant-1", "5511999990000"); owner != "Ana" {
			t.Fatalf("expected owner Ana, got %q", owner)
		}
	})

	t.Run("claim on owned conversation reports current owner", func(t *testing.T) {
		svc, repo := makeSvc([]domain.ConversationProfile{
			{TenantID: "tenant-1", CustomerRef: "5511999990000", CurrentOwner: "Ana"},
		}, true)

		err := svc.Claim(context.Background(), "tenant-1", "5511999990000", "Bruno")
		claimed, ok := domain.AsAlreadyClaimed(err)
		if !ok {
			t.Fatalf("expected AlreadyClaimedError, got %v", err)
		}
		if claimed.Owner != "Ana" {
			t.Fatalf("expected owner Ana in error, got %q", claimed.Owner)
		}
		if owner := repo.owner("tenant-1", "5511999990000"); owner != "Ana" {
			t.Fatalf("ownership must not transfer, got %q", owner)
		}
	})

	t.Run("concurrent claims resolve to exactly one winner", func(t *testing.T) {
		svc, repo := makeSvc(nil, true)

		attendants := []string{"Ana", "Bruno"}
		errs := make([]error, len(attendants))
		var wg sync.WaitGroup
		for i, attendant := range attendants {
			wg.Add(1)
			go func(i int, attendant string) {
				defer wg.Done()
				errs[i] = svc.Claim(context.Background(), "tenant-1", "5511999990000", attendant)
			}(i, attendant)
		}
		wg.Wait()

		winners := 0
		for i, err := range errs {
			if err == nil {
				winners++
				continue
			}
			if _, ok := domain.AsAlreadyClaimed(err); !ok {
				t.Fatalf("loser %s got unexpected error %v", attendants[i], err)
			}
		}
		if winners != 1 {
			t.Fatalf("expected exactly one winner, got %d", winners)
		}

		owner := repo.owner("tenant-1", "5511999990000")
		can, err := svc.CanRespond(context.Background(), "tenant-1", "5511999990000", owner)
		if err != nil || !can {
			t.Fatalf("winner %s must be able to respond, can=%v err=%v", owner, can, err)
		}
		for _, attendant := range attendants {
			if attendant == owner {
				continue
			}
			can, err := svc.CanRespond(context.Background(), "tenant-1", "5511999990000", attendant)
			if err != nil || can {
				t.Fatalf("loser %s must be locked out, can=%v err=%v", attendant, can, err)
			}
		}
	})

	t.Run("missing attendant rejected", func(t *testing.T) {
		svc, _ := makeSvc(nil, true)
		if err := svc.Claim(context.Background(), "tenant-1", "5511999990000", ""); err != domain.ErrAttendantRequired {
			t.Fatalf("expected ErrAttendantRequired, got %v", err)
		}
	})
}

func TestInboxService_Release(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	makeSvc := func(profiles []domain.ConversationProfile) (*InboxService, *fakeConversationRepo) {
		repo := newFakeConversationRepo(profiles)
		tenants := &fakeTenantRepo{tenant: domain.Tenant{ID: "tenant-1", TeamMode: true}}
		return NewInboxService(repo, tenants, clock.NewFixed(now)), repo
	}

	t.Run("owner releases and conversation becomes claimable again", func(t *testing.T) {
		svc, repo := makeSvc([]domain.ConversationProfile{
			{TenantID: "tenant-1", CustomerRef: "5511999990000", CurrentOwner: "Ana"},
		})

		if err := svc.Release(context.Background(), "tenant-1", "5511999990000", "Ana"); err != nil {
			t.Fatalf("expected release to succeed, got %v", err)
		}
		if owner := repo.owner("tenant-1", "5511999990000"); owner != "" {
			t.Fatalf("expected unclaimed, got %q", owner)
		}

		if err := svc.Claim(context.Background(), "tenant-1", "5511999990000", "Bruno"); err != nil {
			t.Fatalf("expected reclaim by another attendant to succeed, got %v", err)
		}
	})

	t.Run("non-owner release is a no-op", func(t *testing.T) {
		svc, repo := makeSvc([]domain.ConversationProfile{
			{TenantID: "tenant-1", CustomerRef: "5511999990000", CurrentOwner: "Ana"},
		})

		if err := svc.Release(context.Background(), "tenant-1", "5511999990000", "Bruno"); err != domain.ErrNotOwner {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if owner := repo.owner("tenant-1", "5511999990000"); owner != "Ana" {
			t.Fatalf("expected ownership unchanged, got %q", owner)
		}
	})

	t.Run("release of unknown conversation", func(t *testing.T) {
		svc, _ := makeSvc(nil)
		if err := svc.Release(context.Background(), "tenant-1", "5511999990000", "Ana"); err != domain.ErrConversationNotFound {
			t.Fatalf("expected ErrConversationNotFound, got %v", err)
		}
	})
}

func TestInboxService_CanRespond(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	makeSvc := func(profiles []domain.ConversationProfile, teamMode bool) *InboxService {
		repo := newFakeConversationRepo(profiles)
		tenants := &fakeTenantRepo{tenant: domain.Tenant{ID: "tenant-1", TeamMode: teamMode}}
		return NewInboxService(repo, tenants, clock.NewFixed(now))
	}

	t.Run("team mode disabled bypasses ownership entirely", func(t *testing.T) {
		svc := makeSvc([]domain.ConversationProfile{
			{TenantID: "tenant-1", CustomerRef: "5511999990000", CurrentOwner: "Ana"},
		}, false)

		for _, attendant := range []string{"Ana", "Bruno", "Carla"} {
			can, err := svc.CanRespond(context.Background(), "tenant-1", "5511999990000", attendant)
			if err != nil || !can {
				t.Fatalf("expected %s allowed with team mode off, can=%v err=%v", attendant, can, err)
			}
		}
	})

	t.Run("unclaimed requires claim first", func(t *testing.T) {
		svc := makeSvc(nil, true)
		can, err := svc.CanRespond(context.Background(), "tenant-1", "5511999990000", "Ana")
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if can {
			t.Fatalf("expected unclaimed conversation to require a claim")
		}
	})

	t.Run("only the owner may respond", func(t *testing.T) {
		svc := makeSvc([]domain.ConversationProfile{
			{TenantID: "tenant-1", CustomerRef: "5511999990000", CurrentOwner: "Ana"},
		}, true)

		can, err := svc.CanRespond(context.Background(), "tenant-1", "5511999990000", "Ana")
		if err != nil || !can {
			t.Fatalf("expected owner allowed, can=%v err=%v", can, err)
		}
		can, err = svc.CanRespond(context.Background(), "tenant-1", "5511999990000", "Bruno")
		if err != nil || can {
			t.Fatalf("expected non-owner locked out, can=%v err=%v", can, err)
		}
	})
}

func TestInboxService_UpsertProfile(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeConversationRepo(nil)
	tenants := &fakeTenantRepo{tenant: domain.Tenant{ID: "tenant-1", TeamMode: true}}
	svc := NewInboxService(repo, tenants, clock.NewFixed(now))

	err := svc.UpsertProfile(context.Background(), "tenant-1", "5511999990000",
		[]string{"vip", "vip", "", "retorno"}, "prefere manhã")
	if err != nil {
		t.Fatalf("expected upsert to succeed, got %v", err)
	}

	profile, _ := repo.GetProfile(context.Background(), "tenant-1", "5511999990000")
	if profile == nil {
		t.Fatalf("expected profile created lazily")
	}
	if len(profile.Tags) != 2 || profile.Tags[0] != "vip" || profile.Tags[1] != "retorno" {
		t.Fatalf("expected deduplicated tags, got %v", profile.Tags)
	}
	if profile.Notes != "prefere manhã" {
		t.Fatalf("unexpected notes %q", profile.Notes)
	}
}

// fakeConversationRepo mimics the store's conditional-write semantics under a
// mutex so claim races behave like the real CAS.
type fakeConversationRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.ConversationProfile
}

func newFakeConversationRepo(profiles []domain.ConversationProfile) *fakeConversationRepo {
	repo := &fakeConversationRepo{profiles: make(map[string]*domain.ConversationProfile)}
	for i := range profiles {
		p := profiles[i]
		repo.profiles[profileKey(p.TenantID, p.CustomerRef)] = &p
	}
	return repo
}

func profileKey(tenantID, customerRef string) string {
	return tenantID + "|" + customerRef
}

func (f *fakeConversationRepo) owner(tenantID, customerRef string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[profileKey(tenantID, customerRef)]; ok {
		return p.CurrentOwner
	}
	return ""
}

func (f *fakeConversationRepo) GetProfile(_ context.Context, tenantID, customerRef string) (*domain.ConversationProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[profileKey(tenantID, customerRef)]; ok {
		out := *p
		return &out, nil
	}
	return nil, nil
}

func (f *fakeConversationRepo) ClaimOwner(_ context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := profileKey(tenantID, customerRef)
	p, ok := f.profiles[key]
	if !ok {
		f.profiles[key] = &domain.ConversationProfile{
			TenantID:     tenantID,
			CustomerRef:  customerRef,
			CurrentOwner: attendant,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return true, nil
	}
	if p.CurrentOwner != "" {
		return false, nil
	}
	p.CurrentOwner = attendant
	p.UpdatedAt = now
	return true, nil
}

func (f *fakeConversationRepo) ReleaseOwner(_ context.Context, tenantID, customerRef, attendant string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[profileKey(tenantID, customerRef)]
	if !ok || p.CurrentOwner != attendant {
		return false, nil
	}
	p.CurrentOwner = ""
	p.UpdatedAt = now
	return true, nil
}

func (f *fakeConversationRepo) UpsertProfile(_ context.Context, profile domain.ConversationProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := profileKey(profile.TenantID, profile.CustomerRef)
	if existing, ok := f.profiles[key]; ok {
		existing.Tags = profile.Tags
		existing.Notes = profile.Notes
		existing.UpdatedAt = profile.UpdatedAt
		return nil
	}
	p := profile
	f.profiles[key] = &p
	return nil
}

func (f *fakeConversationRepo) ListProfiles(_ context.Context, tenantID string) ([]domain.ConversationProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ConversationProfile
	for _, p := range f.profiles {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) ListRecent(_ context.Context, tenantID string, limit int) ([]domain.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationRepo) ListMessages(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	return nil, nil
}

type fakeTenantRepo struct {
	tenant domain.Tenant
}

func (f *fakeTenantRepo) GetTenant(_ context.Context, id string) (domain.Tenant, error) {
	if id != f.tenant.ID {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return f.tenant, nil
}
