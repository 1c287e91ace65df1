package dto

import (
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/service"
)

// StatusCountResponse is one bar of the status or funnel chart.
type StatusCountResponse struct {
	Status domain.CandidateStatus `json:"status"`
	Count  int64                  `json:"count"`
}

// AnalyticsResponse is the dashboard payload.
type AnalyticsResponse struct {
	TotalCandidates   int64                       `json:"total_candidates"`
	RecentCandidates  int64                       `json:"recent_candidates"`
	ByStatus          []StatusCountResponse       `json:"by_status"`
	Funnel            []StatusCountResponse       `json:"funnel"`
	BySource          []repository.LabelCount     `json:"by_source"`
	ByRecruiter       []repository.RecruiterCount `json:"by_recruiter"`
	TotalCalls        int64                       `json:"total_calls"`
	CallsByOutcome    []repository.LabelCount     `json:"calls_by_outcome"`
	CallsByType       []repository.LabelCount     `json:"calls_by_type"`
	RecentCalls       []CallResponse              `json:"recent_calls"`
	UpcomingFollowUps []CallResponse              `json:"upcoming_follow_ups"`
	GeneratedAt       time.Time                   `json:"generated_at"`
}

// NewAnalyticsResponse maps a computed summary.
func NewAnalyticsResponse(s *service.AnalyticsSummary) AnalyticsResponse {
	return AnalyticsResponse{
		TotalCandidates:   s.TotalCandidates,
		RecentCandidates:  s.RecentCandidates,
		ByStatus:          statusCounts(s.ByStatus),
		Funnel:            statusCounts(s.Funnel),
		BySource:          s.BySource,
		ByRecruiter:       s.ByRecruiter,
		TotalCalls:        s.TotalCalls,
		CallsByOutcome:    s.CallsByOutcome,
		CallsByType:       s.CallsByType,
		RecentCalls:       NewCallResponses(s.RecentCalls),
		UpcomingFollowUps: NewCallResponses(s.UpcomingFollowUps),
		GeneratedAt:       s.GeneratedAt,
	}
}

func statusCounts(in []service.StatusCount) []StatusCountResponse {
	out := make([]StatusCountResponse, 0, len(in))
	for _, sc := range in {
		out = append(out, StatusCountResponse{Status: sc.Status, Count: sc.Count})
	}
	return out
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID          int64                 `json:"id"`
	UserID      int64                 `json:"user_id"`
	Username    string                `json:"username"`
	ActionType  domain.ActivityAction `json:"action_type"`
	EntityType  string                `json:"entity_type"`
	EntityID    *int64                `json:"entity_id"`
	Description string                `json:"description"`
	Details     map[string]any        `json:"details,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewActivityResponse maps an audit row.
func NewActivityResponse(entry *domain.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Username:    entry.Username,
		ActionType:  entry.ActionType,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Description: entry.Description,
		Details:     entry.Details,
		CreatedAt:   entry.CreatedAt,
	}
}
