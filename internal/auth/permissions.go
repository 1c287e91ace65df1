package auth

import (
	"fmt"

	"github.com/spec-kit/recruitment-crm/internal/domain"
	apperrors "github.com/spec-kit/recruitment-crm/pkg/util/errorutil"
)

// Action is an operation a role may be allowed to perform.
type Action string

const (
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionEdit        Action = "edit"
	ActionDelete      Action = "delete"
	ActionExport      Action = "export"
	ActionManageUsers Action = "manage_users"
)

// Resource is the kind of record an action targets.
type Resource string

const (
	ResourceCandidate   Resource = "candidate"
	ResourceCall        Resource = "call"
	ResourceUser        Resource = "user"
	ResourceActivityLog Resource = "activity_log"
	ResourceAnalytics   Resource = "analytics"
)

var rolePermissions = map[domain.Role]map[Action]bool{
	domain.RoleAdmin: {
		ActionView:        true,
		ActionCreate:      true,
		ActionEdit:        true,
		ActionDelete:      true,
		ActionExport:      true,
		ActionManageUsers: true,
	},
	domain.RoleRecruiter: {
		ActionView:   true,
		ActionCreate: true,
		ActionEdit:   true,
		ActionDelete: true,
		ActionExport: true,
	},
	domain.RoleViewer: {
		ActionView:   true,
		ActionExport: true,
	},
}

// HasPermission reports whether role carries action in the static permission table.
func HasPermission(role domain.Role, action Action) bool {
	return rolePermissions[role][action]
}

// Can reports whether role may perform action on resource. Mutating users and
// reading the audit trail are administrative and require manage_users.
func Can(role domain.Role, action Action, resource Resource) bool {
	switch {
	case resource == ResourceUser && action != ActionView:
		return HasPermission(role, ActionManageUsers)
	case resource == ResourceActivityLog:
		return HasPermission(role, ActionManageUsers)
	}
	return HasPermission(role, action)
}

// CanEditProfile allows users to edit themselves; administrators may edit anyone.
func CanEditProfile(principal *domain.Principal, userID int64) bool {
	return CanChangeOwned(principal, userID)
}

// CanChangeOwned allows the owner of a record, or an administrator, to change it.
func CanChangeOwned(principal *domain.Principal, ownerID int64) bool {
	if principal == nil {
		return false
	}
	return principal.UserID == ownerID || HasPermission(principal.Role, ActionManageUsers)
}

// CanOwnCandidates reports whether accounts with role may be a candidate's recruiter.
func CanOwnCandidates(role domain.Role) bool {
	return HasPermission(role, ActionEdit)
}

// Authorize returns a FORBIDDEN error when principal may not perform action on resource.
func Authorize(principal *domain.Principal, action Action, resource Resource) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !Can(principal.Role, action, resource) {
		return apperrors.NewForbidden(fmt.Sprintf("role %s may not %s %s", principal.Role, action, resource))
	}
	return nil
}
