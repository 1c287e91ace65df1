package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

var gooseDialects = map[string]string{
	config.DriverSQLite:   "sqlite3",
	config.DriverPostgres: "postgres",
}

// RunMigrations applies every pending embedded migration for the database dialect.
// Already applied versions are skipped, so the call is safe on every start.
func RunMigrations(ctx context.Context, db *Database, logger *zap.Logger) error {
	sqlDB, err := prepareGoose(db)
	if err != nil {
		return err
	}

	dir := path.Join("migrations", db.Driver)
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", zap.String("driver", db.Driver), zap.Int64("version", version))
	return nil
}

// SchemaVersion reports the latest applied migration version.
func SchemaVersion(ctx context.Context, db *Database) (int64, error) {
	sqlDB, err := prepareGoose(db)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

func prepareGoose(db *Database) (*sql.DB, error) {
	dialect, ok := gooseDialects[db.Driver]
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", db.Driver)
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return nil, err
	}
	return sqlDB, nil
}
