package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/recruitment-crm/internal/config"
)

// TestAdminPassword is the password of the admin seeded by OpenTestDB.
const TestAdminPassword = "admin123"

// OpenTestDB returns a migrated and seeded SQLite database in a temporary directory.
// The database is closed when the test ends.
func OpenTestDB(t testing.TB) *Database {
	t.Helper()

	logger := zap.NewNop()
	db, err := NewDatabase(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "crm_test.db"),
	}, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(db.Close)

	ctx := context.Background()
	if err := RunMigrations(ctx, db, logger); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if _, err := SeedAdmin(ctx, db.DB, config.AuthConfig{
		BcryptCost:           bcrypt.MinCost,
		DefaultAdminUsername: "admin",
		DefaultAdminPassword: TestAdminPassword,
		DefaultAdminEmail:    "admin@recruitment-crm.com",
	}, logger); err != nil {
		t.Fatalf("seed test database: %v", err)
	}
	return db
}
