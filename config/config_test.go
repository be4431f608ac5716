package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/maintenance-engine/config"
	"github.com/warp/maintenance-engine/fleet"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "./fleet.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.PolicyOverrides())
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
database:
  path: "/var/lib/fleet/fleet.db"
logging:
  level: debug
  pretty: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/var/lib/fleet/fleet.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: verbose
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestPolicyOverrides_MergeIntoDefaults(t *testing.T) {
	// GIVEN: A config shortening the oil change interval and adding a new type
	// WHEN: Merging into the built-in table
	// THEN: The override wins for OIL_CHANGE; unlisted types keep defaults

	path := writeConfig(t, `
policies:
  oil_change:
    interval_days: 90
    interval_miles: 12000
  coolant_flush:
    interval_days: 730
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	policies := fleet.DefaultPolicies().Merge(cfg.PolicyOverrides())

	oil := policies.IntervalFor("OIL_CHANGE")
	assert.Equal(t, 90, oil.IntervalDays)
	assert.True(t, oil.IntervalMiles.Equal(decimal.NewFromInt(12000)))

	// New type with only days set keeps the default mileage interval.
	coolant := policies.IntervalFor("COOLANT_FLUSH")
	assert.Equal(t, 730, coolant.IntervalDays)
	assert.True(t, coolant.IntervalMiles.Equal(decimal.NewFromInt(20000)))

	// Untouched entry.
	tires := policies.IntervalFor("TIRE_ROTATION")
	assert.Equal(t, 90, tires.IntervalDays)
	assert.True(t, tires.IntervalMiles.Equal(decimal.NewFromInt(10000)))
}

func TestValidate_NegativeInterval(t *testing.T) {
	path := writeConfig(t, `
policies:
  oil_change:
    interval_days: -5
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}
