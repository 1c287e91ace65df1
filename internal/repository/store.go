package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one database handle.
type Store struct {
	db         *gorm.DB
	Users      UserRepository
	Candidates CandidateRepository
	Calls      CallHistoryRepository
	Activity   ActivityLogRepository
	Analytics  AnalyticsRepository
}

// NewStore builds every repository on top of db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Candidates: NewCandidateRepository(db),
		Calls:      NewCallHistoryRepository(db),
		Activity:   NewActivityLogRepository(db),
		Analytics:  NewAnalyticsRepository(db),
	}
}

// WithinTx runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
