package domain

import "time"

// Principal is the authenticated caller, scoped to a single request.
type Principal struct {
	UserID    int64
	Username  string
	FullName  string
	Role      Role
	SessionID string
}

// Session is the server-side record behind an issued token.
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Expired reports whether the session has been idle longer than timeout at now.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastSeenAt) > timeout
}
