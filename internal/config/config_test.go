package config

import (
	"testing"
	"time"

	"github.com/futig/ba-assistant/internal/completeness"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreCfg.Driver)
	assert.Equal(t, completeness.DraftThresholds(), cfg.DraftThresholds)
	assert.Equal(t, completeness.FallbackThresholds(), cfg.FallbackThresholds)
	assert.Equal(t, uint(3), cfg.Continuation.MaxAttempts)
	assert.Equal(t, uint(1), cfg.Continuation.ExtraAttempts)
	assert.Equal(t, 2*time.Hour, cfg.SessionCfg.TTL)
	assert.Equal(t, "/v1/chat/completions", cfg.LLMConnectorCfg.ChatEndpoint)
	assert.False(t, cfg.ConfluenceCfg.Enabled())
	assert.LessOrEqual(t, cfg.ExportCfg.CacheTTL, cfg.ExportCfg.ArtifactTTL)
}

func TestParseThresholdOverrides(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("FALLBACK_MIN_SECTIONS", "4")
	t.Setenv("DRAFT_BAD_TABLE_RATIO", "0.5")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, completeness.Thresholds{MinSections: 4, BadTableRatio: 0.6}, cfg.FallbackThresholds)
	assert.Equal(t, completeness.Thresholds{MinSections: 3, BadTableRatio: 0.5}, cfg.DraftThresholds)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown driver",
			env:  map[string]string{"ENABLE_MOCKS": "true", "STORE_DRIVER": "redis"},
			want: "STORE_DRIVER",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"ENABLE_MOCKS": "true", "STORE_DRIVER": "postgres"},
			want: "STORE_DATABASE_URL",
		},
		{
			name: "llm url required",
			env:  map[string]string{"ENABLE_MOCKS": "false", "LLM_SERVICE_URL": ""},
			want: "LLM_SERVICE_URL",
		},
		{
			name: "no continuation attempts",
			env:  map[string]string{"ENABLE_MOCKS": "true", "CONTINUATION_MAX_ATTEMPTS": "0", "CONTINUATION_EXTRA_ATTEMPTS": "0"},
			want: "CONTINUATION_MAX_ATTEMPTS",
		},
		{
			name: "ratio out of range",
			env:  map[string]string{"ENABLE_MOCKS": "true", "FALLBACK_BAD_TABLE_RATIO": "1.5"},
			want: "FALLBACK_BAD_TABLE_RATIO",
		},
		{
			name: "cache outlives artifacts",
			env:  map[string]string{"ENABLE_MOCKS": "true", "EXPORT_CACHE_TTL": "2h", "EXPORT_ARTIFACT_TTL": "1h"},
			want: "EXPORT_CACHE_TTL",
		},
		{
			name: "non-positive artifact ttl",
			env:  map[string]string{"ENABLE_MOCKS": "true", "EXPORT_CACHE_TTL": "0s", "EXPORT_ARTIFACT_TTL": "0s"},
			want: "EXPORT_ARTIFACT_TTL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfluenceEnabled(t *testing.T) {
	c := ConfluenceConfig{
		HTTPClientConfig: HTTPClientConfig{Url: "https://wiki.example.com"},
		Username:         "ba@example.com",
		APIToken:         "secret",
		SpaceKey:         "BA",
	}
	assert.True(t, c.Enabled())

	c.SpaceKey = ""
	assert.False(t, c.Enabled())
}
