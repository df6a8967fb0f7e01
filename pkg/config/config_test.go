package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmcode/neuropath/pkg/llm"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"NEUROPATH_API_KEY", "LOVABLE_API_KEY", "NEUROPATH_PROVIDER", "NEUROPATH_MODEL",
		"NEUROPATH_UPSTREAM_URL", "NEUROPATH_UPSTREAM_TIMEOUT", "NEUROPATH_LISTEN_ADDR",
		"NEUROPATH_RATE_LIMIT_RPS", "NEUROPATH_RATE_LIMIT_BURST", "NEUROPATH_LOG_LEVEL", "NEUROPATH_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.EqualError(t, cfg.Validate(), "NEUROPATH_API_KEY (or LOVABLE_API_KEY) is not configured")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "neuropath.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_key: from-file
provider: claude
model: file-model
upstream_timeout: 30s
rate_limit_rps: 2
listen_addr: ":9000"
`), 0o600))

	t.Setenv("NEUROPATH_MODEL", "env-model")
	t.Setenv("NEUROPATH_RATE_LIMIT_BURST", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 2.0, cfg.RateLimitRPS)
	assert.Equal(t, 9, cfg.RateLimitBurst)
	assert.Equal(t, ":9000", cfg.ListenAddr)

	s := cfg.LLMSettings()
	assert.Equal(t, llm.ProviderClaude, s.Provider)
	assert.Equal(t, "env-model", s.Model)
}

func TestLoad_LegacyKeyName(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOVABLE_API_KEY", "legacy")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.APIKey)

	t.Setenv("NEUROPATH_API_KEY", "primary")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.APIKey)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: [unterminated"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.APIKey = "k"
	require.NoError(t, base.Validate())

	bad := base
	bad.Provider = "bard"
	assert.Error(t, bad.Validate())

	bad = base
	bad.UpstreamTimeout = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.RateLimitRPS = -1
	assert.Error(t, bad.Validate())

	bad = base
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())
}
