package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app@localhost/homechef")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("CHECKOUT_ROTI_CUTOFF_HOUR", "18")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres://app@localhost/homechef", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 18, cfg.Checkout.RotiCutoffHour)
	assert.Equal(t, 15*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ChefLookupTimeout)
	assert.Equal(t, "Roti", cfg.Checkout.RotiCategory)
}

func TestLoadConfig_ReadsAppEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	content := "DATABASE_URL=postgres://file@localhost/db\nSERVER_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres://file@localhost/db", cfg.DatabaseURL)
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestCheckoutConfig_LocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, CheckoutConfig{Timezone: "Not/AZone"}.Location())
}
