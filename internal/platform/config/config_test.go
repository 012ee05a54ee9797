package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Holds.CheckoutTTLMinutes)
	assert.Equal(t, 1440, cfg.Holds.AdminBlockTTLMinutes)
	assert.Equal(t, 30, cfg.Holds.WaitlistOfferTTLMinutes)
	assert.Equal(t, 5, cfg.Holds.MaxActivePerSession)
	assert.Equal(t, 10, cfg.Availability.LowStockThreshold)
	assert.Equal(t, 5, cfg.Availability.CriticalStockThreshold)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[holds]
checkout_ttl_minutes = 10
sweep_interval_seconds = 15

[availability]
low_stock_threshold = 25

[server]
addr = ":9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Holds.CheckoutTTLMinutes)
	assert.Equal(t, 15*time.Second, cfg.SweepInterval())
	assert.Equal(t, 25, cfg.Availability.LowStockThreshold)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	// Untouched keys keep their defaults.
	assert.Equal(t, 1440, cfg.Holds.AdminBlockTTLMinutes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[holds]
checkout_ttl_minutes = 10
`)
	t.Setenv("HOLD_CHECKOUT_TTL_MINUTES", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Holds.CheckoutTTLMinutes)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero ttl", "[holds]\ncheckout_ttl_minutes = 0\n"},
		{"negative sweep interval", "[holds]\nsweep_interval_seconds = -1\n"},
		{"zero batch size", "[holds]\nsweep_batch_size = 0\n"},
		{"critical above low", "[availability]\nlow_stock_threshold = 3\ncritical_stock_threshold = 8\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedTOMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, "holds = not toml"))
	assert.Error(t, err)
}

func TestHoldTTL_PerType(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15*time.Minute, cfg.HoldTTL("checkout"))
	assert.Equal(t, 24*time.Hour, cfg.HoldTTL("admin-block"))
	assert.Equal(t, 30*time.Minute, cfg.HoldTTL("waitlist-offer"))
	assert.Equal(t, 15*time.Minute, cfg.HoldTTL(""))
}

func TestSampleConfig_ParsesCleanly(t *testing.T) {
	cfg, err := Load(writeConfig(t, SampleConfig()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
