package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// LabelCount is one bucket of a grouped count.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// RecruiterCount is the number of candidates assigned to one recruiter.
type RecruiterCount struct {
	RecruiterID int64  `json:"recruiter_id"`
	FullName    string `json:"full_name"`
	Count       int64  `json:"count"`
}

// AnalyticsRepository runs the aggregate queries behind the dashboard.
type AnalyticsRepository interface {
	CountCandidates(ctx context.Context) (int64, error)
	CandidatesByStatus(ctx context.Context) (map[domain.CandidateStatus]int64, error)
	CandidatesBySource(ctx context.Context) ([]LabelCount, error)
	CandidatesByRecruiter(ctx context.Context) ([]RecruiterCount, error)
	CandidatesCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountCalls(ctx context.Context) (int64, error)
	CallsByOutcome(ctx context.Context) ([]LabelCount, error)
	CallsByType(ctx context.Context) ([]LabelCount, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository instantiates repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountCandidates(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CandidatesByStatus(ctx context.Context) (map[domain.CandidateStatus]int64, error) {
	var rows []LabelCount
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.CandidateStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.CandidateStatus(row.Label)] = row.Count
	}
	return counts, nil
}

func (r *analyticsRepository) CandidatesBySource(ctx context.Context) ([]LabelCount, error) {
	rows := []LabelCount{}
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Select("source AS label, COUNT(*) AS count").
		Where("source IS NOT NULL AND source <> ''").
		Group("source").
		Order("count DESC, label ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CandidatesByRecruiter(ctx context.Context) ([]RecruiterCount, error) {
	rows := []RecruiterCount{}
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Select("recruiters.id AS recruiter_id, recruiters.full_name AS full_name, COUNT(candidates.id) AS count").
		Joins("JOIN users recruiters ON recruiters.id = candidates.recruiter_id").
		Group("recruiters.id, recruiters.full_name").
		Order("count DESC, full_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CandidatesCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Where("created_at >= ?", since.UTC()).
		Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountCalls(ctx context.Context) (int64, error) {
	var count int64
	err := r.calls(ctx).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CallsByOutcome(ctx context.Context) ([]LabelCount, error) {
	rows := []LabelCount{}
	err := r.calls(ctx).
		Select("call_history.outcome AS label, COUNT(*) AS count").
		Where("call_history.outcome <> ''").
		Group("call_history.outcome").
		Order("count DESC, label ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CallsByType(ctx context.Context) ([]LabelCount, error) {
	rows := []LabelCount{}
	err := r.calls(ctx).
		Select("call_history.call_type AS label, COUNT(*) AS count").
		Group("call_history.call_type").
		Order("count DESC, label ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) calls(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.CallHistory{}).
		Joins("JOIN candidates ON candidates.id = call_history.candidate_id AND candidates.deleted_at IS NULL")
}
