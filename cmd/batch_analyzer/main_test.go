package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_PATH", "COVALENT_API_KEY", "MORALIS_API_KEY", "ALCHEMY_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestRun_RequiresTarget(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	assert.Equal(t, 2, run(nil, &out))
	assert.Empty(t, out.String())
}

func TestRun_ReturnsFailureCodeWhenEveryWalletFails(t *testing.T) {
	clearEnv(t)
	var out bytes.Buffer
	code := run([]string{
		"-config", filepath.Join(t.TempDir(), "missing.yml"),
		"-address", "0x12",
		"-json",
	}, &out)

	require.Equal(t, 1, code)
	assert.Contains(t, out.String(), `"address": "0x12"`)
	assert.Contains(t, out.String(), `"error"`)
}
