package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// AssignmentService hands candidates to recruiters.
type AssignmentService struct {
	store  *repository.Store
	logger *zap.Logger
	events events.Dispatcher
}

// AssignmentDependencies bundles requirements for the assignment service.
type AssignmentDependencies struct {
	Store  *repository.Store
	Logger *zap.Logger
	Events events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		store:  deps.Store,
		logger: loggerOrNop(deps.Logger),
		events: deps.Events,
	}
}

// AssignRecruiter sets the owning recruiter of a candidate. A nil recruiterID
// leaves the candidate unassigned. The assignee must be an active admin or recruiter.
func (s *AssignmentService) AssignRecruiter(ctx context.Context, principal *domain.Principal, candidateID int64, recruiterID *int64) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceCandidate); err != nil {
		return nil, err
	}
	if recruiterID != nil {
		if err := checkRecruiter(ctx, s.store, *recruiterID); err != nil {
			return nil, err
		}
	}
	return s.assign(ctx, principal, candidateID, recruiterID)
}

// AutoAssign gives the candidate to the active recruiter with the fewest open
// candidates. Ties go to the longest-standing account.
func (s *AssignmentService) AutoAssign(ctx context.Context, principal *domain.Principal, candidateID int64) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceCandidate); err != nil {
		return nil, err
	}

	role := domain.RoleRecruiter
	recruiters, err := s.store.Users.List(ctx, repository.UserFilter{Role: &role})
	if err != nil {
		return nil, persistenceError(err, "user")
	}
	if len(recruiters) == 0 {
		return nil, apperrors.NewConflict("no active recruiters to assign", nil)
	}

	load, err := s.store.Candidates.OpenCountsByRecruiter(ctx)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	sort.Slice(recruiters, func(i, j int) bool {
		li, lj := load[recruiters[i].ID], load[recruiters[j].ID]
		if li != lj {
			return li < lj
		}
		return recruiters[i].ID < recruiters[j].ID
	})

	assignee := recruiters[0].ID
	return s.assign(ctx, principal, candidateID, &assignee)
}

func (s *AssignmentService) assign(ctx context.Context, principal *domain.Principal, candidateID int64, recruiterID *int64) (*domain.Candidate, error) {
	candidate, err := s.store.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	if equalIDs(candidate.RecruiterID, recruiterID) {
		return candidate, nil
	}

	previous := derefInt64(candidate.RecruiterID)
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Candidates.AssignRecruiter(ctx, candidateID, recruiterID); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return apperrors.NewInvalidReference("recruiter_id", derefInt64(recruiterID))
			}
			return persistenceError(err, "candidate")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionUpdate,
			EntityType:  domain.EntityCandidate,
			EntityID:    candidateID,
			Description: fmt.Sprintf("reassigned candidate %s", candidate.FullName()),
			Details:     map[string]any{"fields": map[string]any{"recruiter_id": derefInt64(recruiterID)}, "previous_recruiter_id": previous},
		})
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.logger, events.New(events.EventCandidateAssigned, principal.UserID, candidateID, utcNow(),
		events.CandidateAssignedPayload{RecruiterID: recruiterID}))

	updated, err := s.store.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	return updated, nil
}

func equalIDs(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
