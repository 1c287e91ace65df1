package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// SeedAdmin creates the default administrator when the users table is empty.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg config.AuthConfig, logger *zap.Logger) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Unscoped().Model(&domain.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := auth.HashPassword(cfg.DefaultAdminPassword, cfg.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.User{
		Username:     cfg.DefaultAdminUsername,
		Email:        cfg.DefaultAdminEmail,
		PasswordHash: hash,
		FullName:     "System Administrator",
		Role:         domain.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	logger.Info("default admin created", zap.String("username", admin.Username))
	return true, nil
}
