package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.68, cfg.Threshold)
	assert.Equal(t, 365, cfg.LookbackDays)
	assert.Empty(t, cfg.RefreshSchedule)
	assert.False(t, cfg.DevMode)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORRELATION_THRESHOLD", "0.5")
	t.Setenv("LOOKBACK_DAYS", "90")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("REFRESH_SCHEDULE", "0 6 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 0.5, cfg.Threshold)
	assert.Equal(t, 90, cfg.LookbackDays)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "0 6 * * *", cfg.RefreshSchedule)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "threshold at lower bound",
			mutate: func(c *Config) { c.Threshold = -1 },
		},
		{
			name:   "threshold at upper bound",
			mutate: func(c *Config) { c.Threshold = 1 },
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Threshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "threshold below minus one",
			mutate:  func(c *Config) { c.Threshold = -1.01 },
			wantErr: true,
		},
		{
			name:    "lookback too short",
			mutate:  func(c *Config) { c.LookbackDays = 1 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.DatabasePath = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				DatabasePath: "./data/test.db",
				Threshold:    0.68,
				LookbackDays: 365,
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
