package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/recruitment-crm/internal/config"
	"github.com/spec-kit/recruitment-crm/internal/domain"
	"github.com/spec-kit/recruitment-crm/internal/observability"
	"github.com/spec-kit/recruitment-crm/internal/persistence"
	"github.com/spec-kit/recruitment-crm/internal/repository"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crmctl",
		Short:         "Administrative tasks for the recruitment CRM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newUsersCommand())
	cmd.AddCommand(newExportCommand())
	return cmd
}

// cliEnv holds what every subcommand needs: configuration, a logger and an open store.
type cliEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *persistence.Database
	store  *repository.Store
}

func openEnv(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// stdout carries command output
	if cfg.Logger.Output == "" || cfg.Logger.Output == "stdout" {
		cfg.Logger.Output = "stderr"
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := persistence.NewDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.RunMigrations {
		if err := persistence.RunMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
		if _, err := persistence.SeedAdmin(ctx, db.DB, cfg.Auth, logger); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &cliEnv{cfg: cfg, logger: logger, db: db, store: repository.NewStore(db.DB)}, nil
}

func (e *cliEnv) Close() {
	e.db.Close()
	_ = e.logger.Sync()
}

// actor resolves the account a command acts as. The CLI has no session, so the
// account's current role decides what it may do.
func (e *cliEnv) actor(ctx context.Context, username string) (*domain.Principal, error) {
	user, err := e.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("actor %q not found or inactive", username)
		}
		return nil, err
	}
	return &domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and seed the default administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Database.RunMigrations = false
			if cfg.Logger.Output == "" || cfg.Logger.Output == "stdout" {
				cfg.Logger.Output = "stderr"
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return err
			}
			db, err := persistence.NewDatabase(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := persistence.RunMigrations(ctx, db, logger); err != nil {
				return err
			}
			version, err := persistence.SchemaVersion(ctx, db)
			if err != nil {
				return err
			}
			seeded, err := persistence.SeedAdmin(ctx, db.DB, cfg.Auth, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s schema version %d\n", db.Driver, version)
			if seeded {
				fmt.Fprintf(out, "seeded administrator %q\n", cfg.Auth.DefaultAdminUsername)
			}
			return nil
		},
	}
}
