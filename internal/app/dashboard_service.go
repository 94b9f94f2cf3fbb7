package app

import (
	"context"
	"time"

	"github.com/otti-labs/otti-workspace/internal/domain"
)

type KPIRepository interface {
	TenantKPIs(ctx context.Context, tenantID string) (domain.KPIReport, error)
}

// KPICache is a best-effort read cache. Implementations must degrade to a
// miss on any backend trouble; the dashboard prefers a slow answer over no
// answer.
type KPICache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// DashboardService serves the KPI cards. Reads are memoized for a minute,
// matching how often the upstream aggregates move.
type DashboardService struct {
	repo  KPIRepository
	cache KPICache
}

const kpiCacheTTL = 60 * time.Second

func NewDashboardService(repo KPIRepository, cache KPICache) *DashboardService {
	return &DashboardService{
		repo:  repo,
		cache: cache,
	}
}

func (s *DashboardService) KPIs(ctx context.Context, tenantID string) (domain.KPIReport, error) {
	key := "kpis:" + tenantID

	if s.cache != nil {
		var cached domain.KPIReport
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	report, err := s.repo.TenantKPIs(ctx, tenantID)
	if err != nil {
		return domain.KPIReport{}, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, report, kpiCacheTTL)
	}
	return report, nil
}
