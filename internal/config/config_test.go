package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 14, cfg.Defaults.BinCount)
	assert.Equal(t, 0.85, cfg.Defaults.CorrelationThreshold)
	assert.Equal(t, 0.0, cfg.Defaults.ThresholdTolerance)
	assert.Equal(t, "min_max", cfg.Defaults.NormalizationMethod)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COMBOSELECT_SERVER_PORT", "9090")
	t.Setenv("COMBOSELECT_DEFAULTS_NORMALIZATION_METHOD", "wosel")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "wosel", cfg.Defaults.NormalizationMethod)
}

func TestLoadRejectsBadValues(t *testing.T) {

	tests := []struct {
		key, value string
	}{
		{"COMBOSELECT_SERVER_PORT", "-1"},
		{"COMBOSELECT_DEFAULTS_BIN_COUNT", "0"},
		{"COMBOSELECT_DEFAULTS_CORRELATION_THRESHOLD", "1.5"},
		{"COMBOSELECT_DEFAULTS_NORMALIZATION_METHOD", "banana"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
