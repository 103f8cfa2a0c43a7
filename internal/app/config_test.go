package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprout-backend/internal/modules/garden/sequence"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, sequence.PolicyHead, cfg.Policy)
	assert.Equal(t, 5, cfg.RecommendationLimit)
	assert.False(t, cfg.MetricsEnabled)
	assert.Empty(t, cfg.CORSOrigins())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "DEV")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("REMEDIATION_INSERT_POLICY", "append")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.Equal(t, AuthModeDev, cfg.AuthMode)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, sequence.PolicyAppend, cfg.Policy)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"auth_mode: dev\nport: \"7000\"\nrecommendation_limit: 3\ndb_driver: sqlite\n"), 0o600))
	t.Setenv("RECOMMENDATION_LIMIT", "4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 4, cfg.RecommendationLimit)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"provider":         {"AUTH_MODE": "dev", "AI_PROVIDER": "mystery"},
		"auth mode":        {"AUTH_MODE": "none"},
		"firebase project": {"AUTH_MODE": "firebase"},
		"policy":           {"AUTH_MODE": "dev", "REMEDIATION_INSERT_POLICY": "middle"},
		"limit":            {"AUTH_MODE": "dev", "RECOMMENDATION_LIMIT": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
