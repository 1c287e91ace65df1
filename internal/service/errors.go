package service

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// persistenceError translates repository failures into domain errors for resource.
func persistenceError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case repository.IsNotFound(err):
		return apperrors.NewNotFound(resource, nil)
	case repository.IsUniqueViolation(err):
		return apperrors.NewConflict(resource+" already exists", nil)
	case repository.IsForeignKeyViolation(err):
		return apperrors.NewDomainError(apperrors.CodeInvalidReference,
			resource+" references an unknown record", http.StatusUnprocessableEntity, nil)
	}
	return apperrors.NewInternalError(err)
}

// authorize checks the permission table and logs denials with the actor and action.
func authorize(logger *zap.Logger, principal *domain.Principal, action auth.Action, resource auth.Resource) error {
	err := auth.Authorize(principal, action, resource)
	if err != nil && principal != nil {
		logger.Warn("permission denied",
			zap.Int64("user_id", principal.UserID),
			zap.String("role", string(principal.Role)),
			zap.String("action", string(action)),
			zap.String("resource", string(resource)),
		)
	}
	return err
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
