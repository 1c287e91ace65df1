package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
)

const maxActivityPage = 500

// ActivityService exposes the audit trail to administrators.
type ActivityService struct {
	store  *repository.Store
	logger *zap.Logger
}

// ActivityDependencies bundles requirements for the activity service.
type ActivityDependencies struct {
	Store  *repository.Store
	Logger *zap.Logger
}

// ActivityPage is one page of audit entries.
type ActivityPage struct {
	Items  []domain.ActivityLog
	Total  int64
	Limit  int
	Offset int
}

// NewActivityService constructs the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	return &ActivityService{store: deps.Store, logger: loggerOrNop(deps.Logger)}
}

// List returns audit entries, newest first.
func (s *ActivityService) List(ctx context.Context, principal *domain.Principal, filter repository.ActivityFilter) (*ActivityPage, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceActivityLog); err != nil {
		return nil, err
	}
	filter.Limit = clampLimit(filter.Limit, defaultPageSize, maxActivityPage)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.store.Activity.List(ctx, filter)
	if err != nil {
		return nil, persistenceError(err, "activity")
	}
	return &ActivityPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// activityEntry describes one audit row to append.
type activityEntry struct {
	Action      domain.ActivityAction
	EntityType  string
	EntityID    int64
	Description string
	Details     map[string]any
}

// recordActivity appends an audit row attributed to userID using the store it is given,
// so callers inside WithinTx write it in the same transaction.
func recordActivity(ctx context.Context, store *repository.Store, userID int64, entry activityEntry) error {
	row := &domain.ActivityLog{
		UserID:      userID,
		ActionType:  entry.Action,
		EntityType:  entry.EntityType,
		Description: entry.Description,
		Details:     entry.Details,
	}
	if entry.EntityID != 0 {
		id := entry.EntityID
		row.EntityID = &id
	}
	if err := store.Activity.Create(ctx, row); err != nil {
		return fmt.Errorf("record %s activity: %w", entry.Action, err)
	}
	return nil
}

const defaultPageSize = 50

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}

func utcNow() time.Time {
	return time.Now().UTC()
}
