package configloader

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
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearKeys(t *testing.T) {
	t.Helper()
	for _, key := range []string{"COVALENT_API_KEY", "MORALIS_API_KEY", "ALCHEMY_API_KEY", "OPENAI_API_KEY", "SERVER_PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearKeys(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 25*time.Second, cfg.Analysis.Deadline())
	assert.Equal(t, 10*time.Second, cfg.Analysis.SummaryTimeout())
	assert.Equal(t, 5, cfg.Analysis.MaxConcurrentChains)
	assert.Equal(t, DefaultChains, cfg.Analysis.Chains)

	assert.Equal(t, 100, cfg.Providers.Covalent.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.Providers.Moralis.Window())
	assert.Equal(t, 5, cfg.Providers.Alchemy.RateLimit.Requests)
	assert.Equal(t, time.Second, cfg.Providers.Alchemy.Window())
	assert.Equal(t, 15*time.Second, cfg.Providers.Covalent.Timeout())
	assert.Equal(t, []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second},
		cfg.Providers.Covalent.Delays())
	assert.Equal(t, 5*time.Minute, cfg.Providers.Covalent.Cooldown())
	assert.Equal(t, 3, cfg.Providers.Covalent.CircuitBreaker.Threshold)

	assert.Equal(t, "gpt-4o", cfg.Summary.Model)
	assert.Equal(t, 24, cfg.Chains.CacheTTLHours)
	assert.Empty(t, cfg.Providers.Covalent.APIKey)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearKeys(t)
	path := writeConfig(t, `
server:
  port: "9090"
analysis:
  deadlineSeconds: 20
  chains: [1, 137]
providers:
  covalent:
    apiKey: from-file
    rateLimit:
      requests: 10
      windowMillis: 1000
  moralis:
    apiKey: from-file
`)
	t.Setenv("MORALIS_API_KEY", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Analysis.DeadlineSeconds)
	assert.Equal(t, []uint64{1, 137}, cfg.Analysis.Chains)
	assert.Equal(t, "from-file", cfg.Providers.Covalent.APIKey)
	assert.Equal(t, "from-env", cfg.Providers.Moralis.APIKey)
	assert.Equal(t, "sk-env", cfg.Summary.OpenAIKey)
	assert.Equal(t, 10, cfg.Providers.Covalent.RateLimit.Requests)
	assert.Equal(t, time.Second, cfg.Providers.Covalent.Window())
}

func TestLoad_Validation(t *testing.T) {
	clearKeys(t)

	t.Run("deadline clamped below host limit", func(t *testing.T) {
		for _, configured := range []string{"90", "30"} {
			cfg, err := Load(writeConfig(t, "analysis:\n  deadlineSeconds: "+configured+"\n"))
			require.NoError(t, err)
			assert.Equal(t, 29, cfg.Analysis.DeadlineSeconds)
			assert.Less(t, cfg.Analysis.Deadline(), maxDeadlineSeconds*time.Second)
		}

		cfg, err := Load(writeConfig(t, "analysis:\n  deadlineSeconds: 29\n"))
		require.NoError(t, err)
		assert.Equal(t, 29, cfg.Analysis.DeadlineSeconds)
	})

	t.Run("summary timeout must fit in deadline", func(t *testing.T) {
		_, err := Load(writeConfig(t, "analysis:\n  deadlineSeconds: 8\n  summaryTimeoutSeconds: 10\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})
}
