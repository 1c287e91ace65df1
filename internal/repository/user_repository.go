package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role            *domain.Role
	IncludeInactive bool
}

// UserRepository defines persistence access for CRM users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDIncludingInactive(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Taken(ctx context.Context, username, email string, excludeID int64) (usernameTaken, emailTaken bool, err error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	Deactivate(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(user).
		Select("username", "email", "full_name", "role").
		Updates(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByIDIncludingInactive(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Unscoped().First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Taken(ctx context.Context, username, email string, excludeID int64) (bool, bool, error) {
	var rows []domain.User
	err := r.db.WithContext(ctx).Unscoped().
		Select("id", "username", "email").
		Where("(username = ? OR LOWER(email) = LOWER(?)) AND id <> ?", username, email, excludeID).
		Find(&rows).Error
	if err != nil {
		return false, false, err
	}

	var usernameTaken, emailTaken bool
	for _, row := range rows {
		if row.Username == username {
			usernameTaken = true
		}
		if strings.EqualFold(row.Email, email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := r.db.WithContext(ctx)
	if filter.IncludeInactive {
		query = query.Unscoped()
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	var users []domain.User
	if err := query.Order("full_name ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Reactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Unscoped().Model(&domain.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
