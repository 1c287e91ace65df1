package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/recruitment-crm/internal/auth"
	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	db := OpenTestDB(t)

	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))

	version, err := SchemaVersion(context.Background(), db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	for _, table := range []string{"users", "candidates", "call_history", "activity_log"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestSeedAdminOnlyOnEmptyTable(t *testing.T) {
	db := OpenTestDB(t)
	ctx := context.Background()

	var admin domain.User
	require.NoError(t, db.DB.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, "admin@recruitment-crm.com", admin.Email)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, TestAdminPassword))

	created, err := SeedAdmin(ctx, db.DB, config.AuthConfig{
		BcryptCost:           bcrypt.MinCost,
		DefaultAdminUsername: "other",
		DefaultAdminPassword: "secret123",
		DefaultAdminEmail:    "other@example.com",
	}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.DB.Model(&domain.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSeedAdminHashesWithSharedPolicy(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "seed.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, RunMigrations(ctx, db, zap.NewNop()))

	created, err := SeedAdmin(ctx, db.DB, config.AuthConfig{
		BcryptCost:           0,
		DefaultAdminUsername: "root",
		DefaultAdminPassword: "changeme1",
		DefaultAdminEmail:    "root@example.com",
	}, zap.NewNop())
	require.NoError(t, err)
	require.True(t, created)

	var admin domain.User
	require.NoError(t, db.DB.Where("username = ?", "root").First(&admin).Error)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "changeme1"))
	cost, err := bcrypt.Cost([]byte(admin.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost, "out-of-range costs fall back to the default")
}

func TestNewDatabaseCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "crm.db")
	db, err := NewDatabase(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}
