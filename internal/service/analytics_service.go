package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
)

const (
	recentWindow       = 7 * 24 * time.Hour
	dashboardListLimit = 10
)

// StatusCount is the number of candidates in one status.
type StatusCount struct {
	Status domain.CandidateStatus
	Count  int64
}

// AnalyticsSummary holds every aggregate the dashboard charts.
type AnalyticsSummary struct {
	TotalCandidates   int64
	ByStatus          []StatusCount
	BySource          []repository.LabelCount
	ByRecruiter       []repository.RecruiterCount
	Funnel            []StatusCount
	RecentCandidates  int64
	TotalCalls        int64
	CallsByOutcome    []repository.LabelCount
	CallsByType       []repository.LabelCount
	RecentCalls       []domain.CallHistory
	UpcomingFollowUps []domain.CallHistory
	GeneratedAt       time.Time
}

// AnalyticsService aggregates pipeline and call statistics.
type AnalyticsService struct {
	store  *repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// AnalyticsDependencies bundles requirements for the analytics service.
type AnalyticsDependencies struct {
	Store  *repository.Store
	Logger *zap.Logger
	Clock  func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	clock := deps.Clock
	if clock == nil {
		clock = utcNow
	}
	return &AnalyticsService{store: deps.Store, logger: loggerOrNop(deps.Logger), now: clock}
}

// Summary computes the dashboard aggregates. An empty database yields zeroed
// counts and empty lists.
func (s *AnalyticsService) Summary(ctx context.Context, principal *domain.Principal) (*AnalyticsSummary, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceAnalytics); err != nil {
		return nil, err
	}
	repo := s.store.Analytics
	now := s.now()
	summary := &AnalyticsSummary{GeneratedAt: now}

	var err error
	if summary.TotalCandidates, err = repo.CountCandidates(ctx); err != nil {
		return nil, persistenceError(err, "candidate")
	}

	byStatus, err := repo.CandidatesByStatus(ctx)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	summary.ByStatus = statusCounts(domain.CandidateStatuses, byStatus)
	summary.Funnel = statusCounts(domain.FunnelStages, byStatus)

	if summary.BySource, err = repo.CandidatesBySource(ctx); err != nil {
		return nil, persistenceError(err, "candidate")
	}
	if summary.ByRecruiter, err = repo.CandidatesByRecruiter(ctx); err != nil {
		return nil, persistenceError(err, "candidate")
	}
	if summary.RecentCandidates, err = repo.CandidatesCreatedSince(ctx, now.Add(-recentWindow)); err != nil {
		return nil, persistenceError(err, "candidate")
	}
	if summary.TotalCalls, err = repo.CountCalls(ctx); err != nil {
		return nil, persistenceError(err, "call")
	}
	if summary.CallsByOutcome, err = repo.CallsByOutcome(ctx); err != nil {
		return nil, persistenceError(err, "call")
	}
	if summary.CallsByType, err = repo.CallsByType(ctx); err != nil {
		return nil, persistenceError(err, "call")
	}

	if summary.RecentCalls, _, err = s.store.Calls.List(ctx, repository.CallFilter{Limit: dashboardListLimit}); err != nil {
		return nil, persistenceError(err, "call")
	}
	if summary.UpcomingFollowUps, err = s.store.Calls.FollowUps(ctx, startOfDay(now), dashboardListLimit); err != nil {
		return nil, persistenceError(err, "call")
	}
	return summary, nil
}

func statusCounts(order []domain.CandidateStatus, counts map[domain.CandidateStatus]int64) []StatusCount {
	out := make([]StatusCount, 0, len(order))
	for _, status := range order {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out
}
