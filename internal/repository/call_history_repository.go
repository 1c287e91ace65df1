package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// CallFilter narrows call history listings.
type CallFilter struct {
	CandidateID *int64
	RecruiterID *int64
	CallType    *domain.CallType
	Outcome     *string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// CallHistoryRepository encapsulates call history persistence.
type CallHistoryRepository interface {
	Create(ctx context.Context, call *domain.CallHistory) error
	Update(ctx context.Context, call *domain.CallHistory) error
	GetByID(ctx context.Context, id int64) (*domain.CallHistory, error)
	List(ctx context.Context, filter CallFilter) ([]domain.CallHistory, int64, error)
	FollowUps(ctx context.Context, from time.Time, limit int) ([]domain.CallHistory, error)
	Delete(ctx context.Context, id int64) error
}

type callHistoryRepository struct {
	db *gorm.DB
}

// NewCallHistoryRepository instantiates repository.
func NewCallHistoryRepository(db *gorm.DB) CallHistoryRepository {
	return &callHistoryRepository{db: db}
}

func (r *callHistoryRepository) Create(ctx context.Context, call *domain.CallHistory) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *callHistoryRepository) Update(ctx context.Context, call *domain.CallHistory) error {
	res := r.db.WithContext(ctx).Model(call).
		Select("call_date", "call_type", "duration", "outcome", "notes", "next_action", "next_action_date").
		Updates(call)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *callHistoryRepository) GetByID(ctx context.Context, id int64) (*domain.CallHistory, error) {
	var call domain.CallHistory
	if err := r.withNames(r.db.WithContext(ctx)).Where("call_history.id = ?", id).First(&call).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callHistoryRepository) List(ctx context.Context, filter CallFilter) ([]domain.CallHistory, int64, error) {
	var total int64
	if err := applyCallFilter(r.activeCandidates(r.db.WithContext(ctx)), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	calls := []domain.CallHistory{}
	if total == 0 {
		return calls, 0, nil
	}

	query := applyCallFilter(r.withNames(r.db.WithContext(ctx)), filter).
		Order("call_history.call_date DESC, call_history.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&calls).Error; err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

func (r *callHistoryRepository) FollowUps(ctx context.Context, from time.Time, limit int) ([]domain.CallHistory, error) {
	calls := []domain.CallHistory{}
	query := r.withNames(r.db.WithContext(ctx)).
		Where("call_history.next_action_date IS NOT NULL AND call_history.next_action_date >= ?", from.UTC()).
		Order("call_history.next_action_date ASC, call_history.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *callHistoryRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.CallHistory{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// activeCandidates hides calls whose candidate was deleted.
func (r *callHistoryRepository) activeCandidates(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.CallHistory{}).
		Joins("JOIN candidates ON candidates.id = call_history.candidate_id AND candidates.deleted_at IS NULL")
}

func (r *callHistoryRepository) withNames(db *gorm.DB) *gorm.DB {
	return r.activeCandidates(db).
		Select("call_history.*, candidates.first_name || ' ' || candidates.last_name AS candidate_name, recruiters.full_name AS recruiter_name").
		Joins("LEFT JOIN users recruiters ON recruiters.id = call_history.recruiter_id")
}

func applyCallFilter(query *gorm.DB, filter CallFilter) *gorm.DB {
	if filter.CandidateID != nil {
		query = query.Where("call_history.candidate_id = ?", *filter.CandidateID)
	}
	if filter.RecruiterID != nil {
		query = query.Where("call_history.recruiter_id = ?", *filter.RecruiterID)
	}
	if filter.CallType != nil {
		query = query.Where("call_history.call_type = ?", *filter.CallType)
	}
	if filter.Outcome != nil && *filter.Outcome != "" {
		query = query.Where("LOWER(call_history.outcome) = LOWER(?)", *filter.Outcome)
	}
	if filter.From != nil {
		query = query.Where("call_history.call_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("call_history.call_date <= ?", filter.To.UTC())
	}
	return query
}
