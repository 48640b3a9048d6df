package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("FRONTEND_URL", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "Europe/Rome", cfg.App.Timezone)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.FrontendURL)
	assert.Equal(t, 8, cfg.Ledger.MaxEditableHours)
	assert.Equal(t, 3, cfg.Ledger.SyncRetries)
	assert.Equal(t, 15*time.Minute, cfg.Cron.SweepInterval)
	assert.Equal(t, 30*time.Second, cfg.Kiosk.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.Kiosk.RescanWindow)
	assert.Equal(t, "Europe/Rome", cfg.App.Location().String())
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid APP_PORT")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Timezone: "UTC"},
			Database: DatabaseConfig{Driver: DriverPostgres, Password: "pw"},
			JWT:      JWTConfig{Secret: "s"},
			Storage:  StorageConfig{Type: "local"},
			Ledger:   LedgerConfig{MaxEditableHours: 8, SyncRetries: 3},
			Cron:     CronConfig{SweepInterval: time.Hour},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"DB_PASSWORD":    func(c *Config) { c.Database.Password = "" },
		"DB_DRIVER":      func(c *Config) { c.Database.Driver = "sqlite" },
		"JWT_SECRET_KEY": func(c *Config) { c.JWT.Secret = "" },
		"APP_TIMEZONE":   func(c *Config) { c.App.Timezone = "Mars/Olympus" },
		"STORAGE_TYPE":   func(c *Config) { c.Storage.Type = "s3" },
		"LEDGER_MAX":     func(c *Config) { c.Ledger.MaxEditableHours = 0 },
		"CRON":           func(c *Config) { c.Cron.SweepInterval = time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	c := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "ts", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@db:5432/ts?sslmode=disable", c.DatabaseURL())
}
