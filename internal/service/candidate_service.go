package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/events"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

const maxCandidatePage = 500

// CandidateService coordinates candidate workflows.
type CandidateService struct {
	store    *repository.Store
	pageSize int
	logger   *zap.Logger
	events   events.Dispatcher
}

// CandidateDependencies bundles requirements for the candidate service.
type CandidateDependencies struct {
	Store *repository.Store
	// PageSize is the default search page size.
	PageSize int
	Logger   *zap.Logger
	// Events is optional; nil disables pipeline events.
	Events events.Dispatcher
}

// CandidateInput carries every editable candidate field.
type CandidateInput struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Location          string
	LinkedInURL       string
	CurrentRole       string
	CurrentCompany    string
	YearsOfExperience *int
	Skills            string
	Education         string
	Status            string
	PositionApplied   string
	RecruiterID       *int64
	Source            string
	SalaryExpectation string
	NoticePeriod      string
	ResumeURL         string
	Notes             string
}

// CandidatePage is one page of search results.
type CandidatePage struct {
	Items  []domain.Candidate
	Total  int64
	Limit  int
	Offset int
}

// NewCandidateService constructs the service.
func NewCandidateService(deps CandidateDependencies) *CandidateService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &CandidateService{store: deps.Store, pageSize: pageSize, logger: loggerOrNop(deps.Logger), events: deps.Events}
}

// Create stores a new candidate attributed to the caller.
func (s *CandidateService) Create(ctx context.Context, principal *domain.Principal, input CandidateInput) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionCreate, auth.ResourceCandidate); err != nil {
		return nil, err
	}

	candidate := &domain.Candidate{}
	if err := applyCandidateInput(candidate, input); err != nil {
		return nil, err
	}
	createdBy := principal.UserID
	candidate.CreatedBy = &createdBy

	if err := s.checkReferences(ctx, candidate, 0); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Candidates.Create(ctx, candidate); err != nil {
			return candidateWriteError(err)
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionCreate,
			EntityType:  domain.EntityCandidate,
			EntityID:    candidate.ID,
			Description: fmt.Sprintf("created candidate %s", candidate.FullName()),
			Details:     map[string]any{"status": string(candidate.Status)},
		})
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, events.New(events.EventCandidateCreated, principal.UserID, candidate.ID, utcNow(),
		events.CandidateCreatedPayload{Status: candidate.Status, Source: candidate.Source}))
	return s.reload(ctx, candidate.ID)
}

// Get returns a single candidate.
func (s *CandidateService) Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceCandidate); err != nil {
		return nil, err
	}
	candidate, err := s.store.Candidates.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	return candidate, nil
}

// Search returns one page of candidates matching every set criterion. An empty
// filter matches all candidates; impossible criteria produce an empty page.
func (s *CandidateService) Search(ctx context.Context, principal *domain.Principal, filter repository.CandidateFilter) (*CandidatePage, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceCandidate); err != nil {
		return nil, err
	}
	filter.Limit = clampLimit(filter.Limit, s.pageSize, maxCandidatePage)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if impossibleCandidateFilter(filter) {
		return &CandidatePage{Items: []domain.Candidate{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}

	items, total, err := s.store.Candidates.Search(ctx, filter)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	return &CandidatePage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Update replaces the editable fields of a candidate.
func (s *CandidateService) Update(ctx context.Context, principal *domain.Principal, id int64, input CandidateInput) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceCandidate); err != nil {
		return nil, err
	}

	existing, err := s.store.Candidates.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	before := *existing

	updated := *existing
	if err := applyCandidateInput(&updated, input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &updated, id); err != nil {
		return nil, err
	}

	changes := candidateChanges(&before, &updated)
	if len(changes) == 0 {
		return existing, nil
	}

	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Candidates.Update(ctx, &updated); err != nil {
			return candidateWriteError(err)
		}
		if before.Status != updated.Status {
			if err := recordStatusChange(ctx, tx, principal.UserID, &updated, before.Status); err != nil {
				return err
			}
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionUpdate,
			EntityType:  domain.EntityCandidate,
			EntityID:    id,
			Description: fmt.Sprintf("updated candidate %s", updated.FullName()),
			Details:     map[string]any{"fields": changes},
		})
	})
	if err != nil {
		return nil, err
	}
	if before.Status != updated.Status {
		s.publishStatusChange(ctx, principal, id, before.Status, updated.Status)
	}
	return s.reload(ctx, id)
}

// ChangeStatus moves a candidate to any pipeline status.
func (s *CandidateService) ChangeStatus(ctx context.Context, principal *domain.Principal, id int64, rawStatus string) (*domain.Candidate, error) {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceCandidate); err != nil {
		return nil, err
	}
	status, ok := domain.ParseCandidateStatus(rawStatus)
	if !ok {
		return nil, invalidStatusError()
	}

	candidate, err := s.store.Candidates.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	if candidate.Status == status {
		return candidate, nil
	}

	previous := candidate.Status
	candidate.Status = status
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Candidates.UpdateStatus(ctx, id, status); err != nil {
			return persistenceError(err, "candidate")
		}
		return recordStatusChange(ctx, tx, principal.UserID, candidate, previous)
	})
	if err != nil {
		return nil, err
	}
	s.publishStatusChange(ctx, principal, id, previous, status)
	return s.reload(ctx, id)
}

// Delete removes a candidate from listings. Call history stays attached to the row.
func (s *CandidateService) Delete(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := authorize(s.logger, principal, auth.ActionDelete, auth.ResourceCandidate); err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		candidate, err := tx.Candidates.GetByID(ctx, id)
		if err != nil {
			return persistenceError(err, "candidate")
		}
		if err := tx.Candidates.Delete(ctx, id); err != nil {
			return persistenceError(err, "candidate")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionDelete,
			EntityType:  domain.EntityCandidate,
			EntityID:    id,
			Description: fmt.Sprintf("deleted candidate %s", candidate.FullName()),
		})
	})
}

func (s *CandidateService) publishStatusChange(ctx context.Context, principal *domain.Principal, id int64, from, to domain.CandidateStatus) {
	publish(ctx, s.events, s.logger, events.New(events.EventCandidateStatusChanged, principal.UserID, id, utcNow(),
		events.CandidateStatusChangedPayload{From: from, To: to}))
}

func (s *CandidateService) reload(ctx context.Context, id int64) (*domain.Candidate, error) {
	candidate, err := s.store.Candidates.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "candidate")
	}
	return candidate, nil
}

// checkReferences verifies the email is free and the recruiter may own candidates.
func (s *CandidateService) checkReferences(ctx context.Context, candidate *domain.Candidate, excludeID int64) error {
	taken, err := s.store.Candidates.EmailTaken(ctx, candidate.Email, excludeID)
	if err != nil {
		return persistenceError(err, "candidate")
	}
	if taken {
		return apperrors.NewConflict("a candidate with this email already exists", map[string]any{"field": "email"})
	}

	if candidate.RecruiterID != nil {
		return checkRecruiter(ctx, s.store, *candidate.RecruiterID)
	}
	return nil
}

// checkRecruiter verifies id names an active account allowed to own candidates.
func checkRecruiter(ctx context.Context, store *repository.Store, id int64) error {
	user, err := store.Users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewInvalidReference("recruiter_id", id)
		}
		return persistenceError(err, "user")
	}
	if !auth.CanOwnCandidates(user.Role) {
		return apperrors.NewValidationError("viewers cannot own candidates",
			map[string]any{"fields": map[string]any{"recruiter_id": "must be an admin or recruiter"}})
	}
	return nil
}

func applyCandidateInput(candidate *domain.Candidate, input CandidateInput) error {
	errs := fieldErrors{}

	candidate.FirstName = trimmed(input.FirstName)
	candidate.LastName = trimmed(input.LastName)
	candidate.Email = trimmed(input.Email)
	candidate.Phone = trimmed(input.Phone)
	candidate.Location = trimmed(input.Location)
	candidate.LinkedInURL = trimmed(input.LinkedInURL)
	candidate.CurrentRole = trimmed(input.CurrentRole)
	candidate.CurrentCompany = trimmed(input.CurrentCompany)
	candidate.YearsOfExperience = input.YearsOfExperience
	candidate.Skills = trimmed(input.Skills)
	candidate.Education = trimmed(input.Education)
	candidate.PositionApplied = trimmed(input.PositionApplied)
	candidate.RecruiterID = input.RecruiterID
	candidate.Source = trimmed(input.Source)
	candidate.SalaryExpectation = trimmed(input.SalaryExpectation)
	candidate.NoticePeriod = trimmed(input.NoticePeriod)
	candidate.ResumeURL = trimmed(input.ResumeURL)
	candidate.Notes = input.Notes

	errs.required("first_name", candidate.FirstName)
	errs.maxLen("first_name", candidate.FirstName, 50)
	errs.required("last_name", candidate.LastName)
	errs.maxLen("last_name", candidate.LastName, 50)
	errs.email("email", candidate.Email)
	errs.maxLen("email", candidate.Email, 100)
	errs.phone("phone", candidate.Phone)
	errs.url("linkedin_url", candidate.LinkedInURL)
	errs.url("resume_url", candidate.ResumeURL)
	errs.experience("years_of_experience", candidate.YearsOfExperience)
	errs.maxLen("source", candidate.Source, 50)

	if trimmed(input.Status) == "" {
		if candidate.Status == "" {
			candidate.Status = domain.StatusApplied
		}
	} else if status, ok := domain.ParseCandidateStatus(input.Status); ok {
		candidate.Status = status
	} else {
		errs.add("status", "must be one of Applied, Screening, Interview, Offer, Hired, Rejected")
	}

	return errs.err()
}

func impossibleCandidateFilter(filter repository.CandidateFilter) bool {
	if len(filter.Statuses) > 0 && !anyKnownStatus(filter.Statuses) {
		return true
	}
	if filter.MaxExperience != nil && *filter.MaxExperience < 0 {
		return true
	}
	if filter.MinExperience != nil && filter.MaxExperience != nil && *filter.MinExperience > *filter.MaxExperience {
		return true
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return true
	}
	return false
}

func anyKnownStatus(statuses []domain.CandidateStatus) bool {
	for _, status := range statuses {
		if status.Valid() {
			return true
		}
	}
	return false
}

func candidateChanges(before, after *domain.Candidate) map[string]any {
	changes := map[string]any{}
	diff := func(field string, prev, next any) {
		if prev != next {
			changes[field] = next
		}
	}
	diff("first_name", before.FirstName, after.FirstName)
	diff("last_name", before.LastName, after.LastName)
	diff("email", before.Email, after.Email)
	diff("phone", before.Phone, after.Phone)
	diff("location", before.Location, after.Location)
	diff("linkedin_url", before.LinkedInURL, after.LinkedInURL)
	diff("current_role", before.CurrentRole, after.CurrentRole)
	diff("current_company", before.CurrentCompany, after.CurrentCompany)
	diff("years_of_experience", derefInt(before.YearsOfExperience), derefInt(after.YearsOfExperience))
	diff("skills", before.Skills, after.Skills)
	diff("education", before.Education, after.Education)
	diff("status", string(before.Status), string(after.Status))
	diff("position_applied", before.PositionApplied, after.PositionApplied)
	diff("recruiter_id", derefInt64(before.RecruiterID), derefInt64(after.RecruiterID))
	diff("source", before.Source, after.Source)
	diff("salary_expectation", before.SalaryExpectation, after.SalaryExpectation)
	diff("notice_period", before.NoticePeriod, after.NoticePeriod)
	diff("resume_url", before.ResumeURL, after.ResumeURL)
	diff("notes", before.Notes, after.Notes)
	return changes
}

func recordStatusChange(ctx context.Context, store *repository.Store, userID int64, candidate *domain.Candidate, from domain.CandidateStatus) error {
	return recordActivity(ctx, store, userID, activityEntry{
		Action:      domain.ActionStatusChange,
		EntityType:  domain.EntityCandidate,
		EntityID:    candidate.ID,
		Description: fmt.Sprintf("%s moved from %s to %s", candidate.FullName(), from, candidate.Status),
		Details:     map[string]any{"from": string(from), "to": string(candidate.Status)},
	})
}

func candidateWriteError(err error) error {
	if repository.IsUniqueViolation(err) {
		return apperrors.NewConflict("a candidate with this email already exists", map[string]any{"field": "email"})
	}
	return persistenceError(err, "candidate")
}

func invalidStatusError() error {
	return apperrors.NewValidationError("invalid status",
		map[string]any{"allowed": domain.CandidateStatuses})
}

// derefInt returns nil for a nil pointer so optional values compare by content.
func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
