package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &domain.Session{ID: "a", UserID: 1, CreatedAt: now, LastSeenAt: now}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.UserID)

	later := now.Add(30 * time.Minute)
	require.NoError(t, store.Touch(ctx, "a", later))
	got, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, later, got.LastSeenAt)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Touch(ctx, "a", later), ErrNotFound)
}

func TestMemoryStorePrunesIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &domain.Session{ID: "old", CreatedAt: start, LastSeenAt: start}))
	next := start.Add(2 * time.Hour)
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "new", CreatedAt: next, LastSeenAt: next}))

	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}
