package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/persistence"
	"github.com/spec-kit/recruitment-crm/internal/repository"
	"github.com/spec-kit/recruitment-crm/internal/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store      *repository.Store
	clock      *fakeClock
	auth       *AuthService
	users      *UserService
	candidates *CandidateService
	calls      *CallService
	analytics  *AnalyticsService
	exports    *ExportService
	activity   *ActivityService
	admin      *domain.Principal
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := persistence.OpenTestDB(t)
	store := repository.NewStore(db.DB)
	logger := zap.NewNop()
	clock := &fakeClock{now: time.Now().UTC()}
	cfg := config.AuthConfig{JWTSecret: "test-secret", SessionTimeoutHours: 24, BcryptCost: bcrypt.MinCost}

	env := &testEnv{
		store: store,
		clock: clock,
		auth: NewAuthService(cfg, AuthDependencies{
			Store: store, Sessions: session.NewMemoryStore(cfg.SessionTimeout()), Logger: logger, Clock: clock.Now,
		}),
		users:      NewUserService(cfg, UserDependencies{Store: store, Logger: logger}),
		candidates: NewCandidateService(CandidateDependencies{Store: store, PageSize: 50, Logger: logger}),
		calls:      NewCallService(CallDependencies{Store: store, Logger: logger, Clock: clock.Now}),
		analytics:  NewAnalyticsService(AnalyticsDependencies{Store: store, Logger: logger, Clock: clock.Now}),
		exports:    NewExportService(ExportDependencies{Store: store, Logger: logger, Clock: clock.Now}),
		activity:   NewActivityService(ActivityDependencies{Store: store, Logger: logger}),
	}
	env.admin = env.login(t, "admin", persistence.TestAdminPassword)
	return env
}

func (e *testEnv) login(t *testing.T, username, password string) *domain.Principal {
	t.Helper()
	ctx := context.Background()
	result, err := e.auth.Login(ctx, username, password)
	require.NoError(t, err)
	principal, err := e.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	return principal
}

func (e *testEnv) createUser(t *testing.T, username string, role domain.Role) *domain.Principal {
	t.Helper()
	_, err := e.users.Create(context.Background(), e.admin, UserCreateInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "User " + username,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return e.login(t, username, "password123")
}

func (e *testEnv) createCandidate(t *testing.T, principal *domain.Principal, first, last, email string) *domain.Candidate {
	t.Helper()
	c, err := e.candidates.Create(context.Background(), principal, CandidateInput{
		FirstName: first, LastName: last, Email: email,
	})
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
