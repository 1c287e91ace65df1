package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("AUTH_SESSION_TIMEOUT_HOURS", "")
	t.Setenv("APP_PAGE_SIZE", "")
	t.Setenv("DEFAULT_ADMIN_USERNAME", "")
	t.Setenv("DEFAULT_ADMIN_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/recruitment.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTimeout())
	assert.Equal(t, "admin", cfg.Auth.DefaultAdminUsername)
	assert.Equal(t, "admin123", cfg.Auth.DefaultAdminPassword)
	assert.Equal(t, 50, cfg.App.PageSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_DSN", "postgres://crm@localhost/crm")
	t.Setenv("AUTH_SESSION_TIMEOUT_HOURS", "8")
	t.Setenv("APP_PAGE_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTimeout())
	assert.Equal(t, 50, cfg.App.PageSize, "invalid ints fall back to the default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "sqlite ok", mutate: func(*Config) {}},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Auth.SessionTimeoutHours = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{Driver: DriverSQLite, Path: "crm.db"},
				Auth:     AuthConfig{SessionTimeoutHours: 24},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
