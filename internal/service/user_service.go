package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// UserService manages CRM accounts.
type UserService struct {
	store      *repository.Store
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	Store  *repository.Store
	Logger *zap.Logger
}

// UserCreateInput describes a new account.
type UserCreateInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Role     domain.Role
}

// UserUpdateInput carries optional profile changes. Nil fields are left untouched.
type UserUpdateInput struct {
	Email    *string
	FullName *string
	Role     *domain.Role
}

// UserListFilter narrows listings.
type UserListFilter struct {
	Role            *domain.Role
	IncludeInactive bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.AuthConfig, deps UserDependencies) *UserService {
	return &UserService{store: deps.Store, bcryptCost: cfg.BcryptCost, logger: loggerOrNop(deps.Logger)}
}

// Create adds an account. Duplicate usernames or emails yield CONFLICT and never overwrite.
func (s *UserService) Create(ctx context.Context, principal *domain.Principal, input UserCreateInput) (*domain.User, error) {
	if err := authorize(s.logger, principal, auth.ActionCreate, auth.ResourceUser); err != nil {
		return nil, err
	}

	input.Username = trimmed(input.Username)
	input.Email = trimmed(input.Email)
	input.FullName = trimmed(input.FullName)

	errs := fieldErrors{}
	errs.required("username", input.Username)
	errs.maxLen("username", input.Username, 50)
	if strings.ContainsAny(input.Username, " \t") {
		errs.add("username", "must not contain spaces")
	}
	errs.email("email", input.Email)
	errs.maxLen("email", input.Email, 100)
	errs.required("full_name", input.FullName)
	errs.maxLen("full_name", input.FullName, 100)
	errs.password("password", input.Password)
	if !input.Role.Valid() {
		errs.add("role", "must be one of admin, recruiter, viewer")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.ensureUnique(ctx, input.Username, input.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         input.Role,
	}
	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return userWriteError(err)
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionCreate,
			EntityType:  domain.EntityUser,
			EntityID:    user.ID,
			Description: fmt.Sprintf("created user %s", user.Username),
			Details:     map[string]any{"role": string(user.Role)},
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns an account, including deactivated ones for administrators.
func (s *UserService) Get(ctx context.Context, principal *domain.Principal, id int64) (*domain.User, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceUser); err != nil {
		return nil, err
	}
	var (
		user *domain.User
		err  error
	)
	if auth.HasPermission(principal.Role, auth.ActionManageUsers) {
		user, err = s.store.Users.GetByIDIncludingInactive(ctx, id)
	} else {
		user, err = s.store.Users.GetByID(ctx, id)
	}
	if err != nil {
		return nil, persistenceError(err, "user")
	}
	return user, nil
}

// List returns accounts ordered by name. Only administrators see deactivated accounts.
func (s *UserService) List(ctx context.Context, principal *domain.Principal, filter UserListFilter) ([]domain.User, error) {
	if err := authorize(s.logger, principal, auth.ActionView, auth.ResourceUser); err != nil {
		return nil, err
	}
	if filter.IncludeInactive {
		if err := authorize(s.logger, principal, auth.ActionManageUsers, auth.ResourceUser); err != nil {
			return nil, err
		}
	}
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": *filter.Role})
	}

	users, err := s.store.Users.List(ctx, repository.UserFilter{Role: filter.Role, IncludeInactive: filter.IncludeInactive})
	if err != nil {
		return nil, persistenceError(err, "user")
	}
	return users, nil
}

// ListRecruiters returns the active accounts candidates can be assigned to.
func (s *UserService) ListRecruiters(ctx context.Context, principal *domain.Principal) ([]domain.User, error) {
	users, err := s.List(ctx, principal, UserListFilter{})
	if err != nil {
		return nil, err
	}
	recruiters := make([]domain.User, 0, len(users))
	for _, user := range users {
		if auth.CanOwnCandidates(user.Role) {
			recruiters = append(recruiters, user)
		}
	}
	return recruiters, nil
}

// UpdateProfile changes account details. Users may edit their own email and name;
// role changes are administrative and administrators cannot change their own role.
func (s *UserService) UpdateProfile(ctx context.Context, principal *domain.Principal, id int64, input UserUpdateInput) (*domain.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !auth.CanEditProfile(principal, id) {
		return nil, authorize(s.logger, principal, auth.ActionEdit, auth.ResourceUser)
	}
	if input.Role != nil {
		if err := authorize(s.logger, principal, auth.ActionManageUsers, auth.ResourceUser); err != nil {
			return nil, err
		}
		if principal.UserID == id && *input.Role != principal.Role {
			return nil, apperrors.NewValidationError("administrators cannot change their own role", nil)
		}
	}

	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "user")
	}

	errs := fieldErrors{}
	changes := map[string]any{}
	if input.Email != nil {
		email := trimmed(*input.Email)
		errs.email("email", email)
		errs.maxLen("email", email, 100)
		if email != user.Email {
			changes["email"] = email
			user.Email = email
		}
	}
	if input.FullName != nil {
		name := trimmed(*input.FullName)
		errs.required("full_name", name)
		errs.maxLen("full_name", name, 100)
		if name != user.FullName {
			changes["full_name"] = name
			user.FullName = name
		}
	}
	oldRole := user.Role
	if input.Role != nil {
		if !input.Role.Valid() {
			errs.add("role", "must be one of admin, recruiter, viewer")
		} else if *input.Role != user.Role {
			changes["role"] = string(*input.Role)
			user.Role = *input.Role
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return user, nil
	}

	if _, ok := changes["email"]; ok {
		if err := s.ensureUnique(ctx, "", user.Email, user.ID); err != nil {
			return nil, err
		}
	}

	err = s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Update(ctx, user); err != nil {
			return userWriteError(err)
		}
		if user.Role != oldRole {
			if err := recordActivity(ctx, tx, principal.UserID, activityEntry{
				Action:      domain.ActionRoleChange,
				EntityType:  domain.EntityUser,
				EntityID:    user.ID,
				Description: fmt.Sprintf("role of %s changed from %s to %s", user.Username, oldRole, user.Role),
				Details:     map[string]any{"from": string(oldRole), "to": string(user.Role)},
			}); err != nil {
				return err
			}
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionUpdate,
			EntityType:  domain.EntityUser,
			EntityID:    user.ID,
			Description: fmt.Sprintf("updated user %s", user.Username),
			Details:     changes,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables an account. Its calls and audit entries keep their references.
func (s *UserService) Deactivate(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := authorize(s.logger, principal, auth.ActionDelete, auth.ResourceUser); err != nil {
		return err
	}
	if principal.UserID == id {
		return apperrors.NewValidationError("you cannot deactivate your own account", nil)
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(ctx, id)
		if err != nil {
			return persistenceError(err, "user")
		}
		if err := tx.Users.Deactivate(ctx, id); err != nil {
			return persistenceError(err, "user")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionDeactivate,
			EntityType:  domain.EntityUser,
			EntityID:    id,
			Description: fmt.Sprintf("deactivated user %s", user.Username),
		})
	})
}

// Reactivate re-enables a deactivated account.
func (s *UserService) Reactivate(ctx context.Context, principal *domain.Principal, id int64) error {
	if err := authorize(s.logger, principal, auth.ActionEdit, auth.ResourceUser); err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByIDIncludingInactive(ctx, id)
		if err != nil {
			return persistenceError(err, "user")
		}
		if user.Active() {
			return apperrors.NewConflict("user is already active", map[string]any{"id": id})
		}
		if err := tx.Users.Reactivate(ctx, id); err != nil {
			return persistenceError(err, "user")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionReactivate,
			EntityType:  domain.EntityUser,
			EntityID:    id,
			Description: fmt.Sprintf("reactivated user %s", user.Username),
		})
	})
}

// ResetPassword sets a new password for another account.
func (s *UserService) ResetPassword(ctx context.Context, principal *domain.Principal, id int64, password string) error {
	if err := authorize(s.logger, principal, auth.ActionManageUsers, auth.ResourceUser); err != nil {
		return err
	}
	errs := fieldErrors{}
	errs.password("password", password)
	if err := errs.err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return s.store.WithinTx(ctx, func(tx *repository.Store) error {
		if err := tx.Users.UpdatePassword(ctx, id, hash); err != nil {
			return persistenceError(err, "user")
		}
		return recordActivity(ctx, tx, principal.UserID, activityEntry{
			Action:      domain.ActionPasswordChange,
			EntityType:  domain.EntityUser,
			EntityID:    id,
			Description: "password reset by administrator",
		})
	})
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string, excludeID int64) error {
	usernameTaken, emailTaken, err := s.store.Users.Taken(ctx, username, email, excludeID)
	if err != nil {
		return persistenceError(err, "user")
	}
	switch {
	case usernameTaken:
		return apperrors.NewConflict("username already exists", map[string]any{"field": "username"})
	case emailTaken:
		return apperrors.NewConflict("email already exists", map[string]any{"field": "email"})
	}
	return nil
}

func userWriteError(err error) error {
	if repository.IsUniqueViolation(err) {
		return apperrors.NewConflict("username or email already exists", nil)
	}
	return persistenceError(err, "user")
}
