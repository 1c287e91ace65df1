package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityAction classifies audit entries.
type ActivityAction string

const (
	ActionCreate         ActivityAction = "CREATE"
	ActionUpdate         ActivityAction = "UPDATE"
	ActionDelete         ActivityAction = "DELETE"
	ActionExport         ActivityAction = "EXPORT"
	ActionLogin          ActivityAction = "LOGIN"
	ActionLogout         ActivityAction = "LOGOUT"
	ActionStatusChange   ActivityAction = "STATUS_CHANGE"
	ActionRoleChange     ActivityAction = "ROLE_CHANGE"
	ActionDeactivate     ActivityAction = "DEACTIVATE"
	ActionReactivate     ActivityAction = "REACTIVATE"
	ActionPasswordChange ActivityAction = "PASSWORD_CHANGE"
)

// Entity types referenced by activity entries.
const (
	EntityUser      = "user"
	EntityCandidate = "candidate"
	EntityCall      = "call"
)

// ActivityLog is an immutable audit trail entry.
type ActivityLog struct {
	ID          int64 `gorm:"primaryKey"`
	UserID      int64
	ActionType  ActivityAction
	EntityType  string
	EntityID    *int64
	Description string
	Details     datatypes.JSONMap
	CreatedAt   time.Time

	Username string `gorm:"->;-:migration"`
}

// TableName keeps the singular table name used by the schema.
func (ActivityLog) TableName() string {
	return "activity_log"
}
