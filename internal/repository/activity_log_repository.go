package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// ActivityFilter narrows audit trail listings.
type ActivityFilter struct {
	UserID     *int64
	ActionType *domain.ActivityAction
	EntityType *string
	EntityID   *int64
	Limit      int
	Offset     int
}

// ActivityLogRepository appends and reads audit entries. Entries are never updated or removed.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository instantiates repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&domain.ActivityLog{})
		if filter.UserID != nil {
			query = query.Where("activity_log.user_id = ?", *filter.UserID)
		}
		if filter.ActionType != nil {
			query = query.Where("activity_log.action_type = ?", *filter.ActionType)
		}
		if filter.EntityType != nil && *filter.EntityType != "" {
			query = query.Where("activity_log.entity_type = ?", *filter.EntityType)
		}
		if filter.EntityID != nil {
			query = query.Where("activity_log.entity_id = ?", *filter.EntityID)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	entries := []domain.ActivityLog{}
	query := base().
		Select("activity_log.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = activity_log.user_id").
		Order("activity_log.created_at DESC, activity_log.id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
