// Package session keeps the server-side state behind issued login tokens.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// ErrNotFound is returned when a session id is unknown or already removed.
var ErrNotFound = errors.New("session not found")

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
