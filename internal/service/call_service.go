package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

const (
	maxCallPage        = 500
	defaultFollowUps   = 20
	maxCallDurationMin = 24 * 60
)

// CallService records interactions with candidates.
type CallService struct {
	store    *repository.Store
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
	events   events.Dispatcher
}

// CallDependencies bundles requirements for the call service.
type CallDependencies struct {
	Store    *repository.Store
	PageSize int
	Logger   *zap.Logger
	Clock    func() time.Time
	Events   events.Dispatcher
}

// CallInput describes a logged interaction.
type CallInput struct {
	CandidateID     int64
	CallDate        *time.Time
	CallType        string
	DurationMinutes *int
	Outcome         string
	Notes           string
	NextAction      string
	NextActionDate  *time.Time
}

// CallPage is one page of call history.
type CallPage struct {
	Items  []domain.CallHistory
	Total  int64
	Limit  int
	Offset int
}

// NewCallService constructs the service.
func NewCallService(deps CallDependencies) *CallService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	clock := deps.Clock
	if clock == nil {
		clock = utcNow
	}
	return &CallService{store: deps.Store, pageSize: pageSize, logger: loggerOrNop(deps.Logger), now: clock, events: deps.Events}
}

// Log records a call made by the caller to an existing candidate.
func (s *CallService) Log(ctx context.Context, principal *domain.Principal, input CallInput) (*domain.CallHistory, error) {
	if err := authorize(s.logger, principal, auth.ActionCreate, auth.ResourceCall); err != nil {
		return nil, err
	}

	call := &domain.CallHistory{CandidateID: input.CandidateID, RecruiterID: principal.UserID}
	if err := s.applyCallInput(call, input); err != nil {
		return nil, err
	}

	candidate, err := s.store.Candidates.GetByID(ctx, input.CandidateID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.NewInvalidReference("candidate_id", input.CandidateID)
		}
		return nil, persistenceError(err, "candidate")
	}

	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Calls.Create(ctx, call); err != nil {
			return persistenceError(err, "call")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionCreate,
			EntityType:  domain.EntityCall,
			EntityID:    call.ID,
			Description: fmt.Sprintf("logged %s call with %s", call.CallType, candidate.FullName()),
			Details:     map[string]any{"candidate_id": candidate.ID, "outcome": call.Outcome},
		})
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, events.New(events.EventCallLogged, principal.UserID, call.ID, s.now(),
		events.CallLoggedPayload{CandidateID: candidate.ID, CallType: call.CallType, Outcome: call.Outcome}))
	return s.reload(ctx, call.ID)
}

// Update edits a call. Only the recruiter who logged it or an administrator may do so.
func (s *CallService) Update(ctx context.Context, principal *domain.Principal, id int64, input CallInput) (*domain.CallHistory, error) {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceCall); err != nil {
		return nil, err
	}
	call, err := s.ownedCall(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	// calls cannot move to another candidate
	input.CandidateID = call.CandidateID
	if err := s.applyCallInput(call, input); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Calls.Update(ctx, call); err != nil {
			return persistenceError(err, "call")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionUpdate,
			EntityType:  domain.EntityCall,
			EntityID:    call.ID,
			Description: fmt.Sprintf("updated call with %s", call.CandidateName),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// Delete removes a call. Only the recruiter who logged it or an administrator may do so.
func (s *CallService) Delete(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := authorize(s.logger, principal, auth.ActionDelete, auth.ResourceCall); err != nil {
		return err
	}
	call, err := s.ownedCall(ctx, principal, id)
	if err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Calls.Delete(ctx, id); err != nil {
			return persistenceError(err, "call")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionDelete,
			EntityType:  domain.EntityCall,
			EntityID:    id,
			Description: fmt.Sprintf("deleted call with %s", call.CandidateName),
			Details:     map[string]any{"candidate_id": call.CandidateID},
		})
	})
}

// List returns calls newest first.
func (s *CallService) List(ctx context.Context, principal *domain.Principal, filter repository.CallFilter) (*CallPage, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceCall); err != nil {
		return nil, err
	}
	filter.Limit = clampLimit(filter.Limit, s.pageSize, maxCallPage)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, total, err := s.store.Calls.List(ctx, filter)
	if err != nil {
		return nil, persistenceError(err, "call")
	}
	return &CallPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// ForCandidate returns the full call history of one candidate.
func (s *CallService) ForCandidate(ctx context.Context, principal *domain.Principal, candidateID int64) ([]domain.CallHistory, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceCall); err != nil {
		return nil, err
	}
	if _, err := s.store.Candidates.GetByID(ctx, candidateID); err != nil {
		return nil, persistenceError(err, "candidate")
	}
	items, _, err := s.store.Calls.List(ctx, repository.CallFilter{CandidateID: &candidateID})
	if err != nil {
		return nil, persistenceError(err, "call")
	}
	return items, nil
}

// FollowUps returns calls whose next action is due today or later, soonest first.
func (s *CallService) FollowUps(ctx context.Context, principal *domain.Principal, limit int) ([]domain.CallHistory, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceCall); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, defaultFollowUps, maxCallPage)

	items, err := s.store.Calls.FollowUps(ctx, startOfDay(s.now()), limit)
	if err != nil {
		return nil, persistenceError(err, "call")
	}
	return items, nil
}

func (s *CallService) ownedCall(ctx context.Context, principal *domain.Principal, id int64) (*domain.CallHistory, error) {
	call, err := s.store.Calls.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "call")
	}
	if !auth.CanChangeOwned(principal, call.RecruiterID) {
		s.logger.Warn("permission denied",
			zap.Int64("user_id", principal.UserID),
			zap.Int64("call_id", id),
			zap.String("reason", "not the logging recruiter"),
		)
		return nil, apperrors.NewForbidden("only the recruiter who logged this call or an administrator may change it")
	}
	return call, nil
}

func (s *CallService) reload(ctx context.Context, id int64) (*domain.CallHistory, error) {
	call, err := s.store.Calls.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "call")
	}
	return call, nil
}

func (s *CallService) applyCallInput(call *domain.CallHistory, input CallInput) error {
	errs := fieldErrors{}
	if input.CandidateID <= 0 {
		errs.add("candidate_id", "is required")
	}

	callType, ok := domain.ParseCallType(input.CallType)
	if !ok {
		errs.add("call_type", "must be one of Phone, Video, In-Person, Email")
	}
	call.CallType = callType

	if input.CallDate != nil {
		call.CallDate = input.CallDate.UTC()
	} else if call.CallDate.IsZero() {
		call.CallDate = s.now()
	}
	if input.DurationMinutes != nil && (*input.DurationMinutes < 0 || *input.DurationMinutes > maxCallDurationMin) {
		errs.add("duration", fmt.Sprintf("must be between 0 and %d minutes", maxCallDurationMin))
	}
	call.DurationMinutes = input.DurationMinutes
	call.Outcome = trimmed(input.Outcome)
	errs.maxLen("outcome", call.Outcome, 50)
	call.Notes = input.Notes
	call.NextAction = trimmed(input.NextAction)
	errs.maxLen("next_action", call.NextAction, 255)
	if input.NextActionDate != nil {
		next := input.NextActionDate.UTC()
		call.NextActionDate = &next
	} else {
		call.NextActionDate = nil
	}

	return errs.err()
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
