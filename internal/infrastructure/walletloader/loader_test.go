package walletloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whale_analyzer/internal/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchList = `# whales
0x742ccf2e36aebe0ad95a00c7cc1d8cb9abbdbfe4, Treasury
0x0000000000000000000000000000000000000001	cold storage

not-an-address
0x742CCF2e36AeBE0ad95A00c7cc1d8CB9aBBDBfE4 duplicate
0x1234
`

func TestParseWallets(t *testing.T) {
	wallets, skipped, err := ParseWallets(strings.NewReader(watchList))
	require.NoError(t, err)

	require.Len(t, wallets, 2)
	assert.Equal(t, utils.ChecksumAddress("0x742ccf2e36aebe0ad95a00c7cc1d8cb9abbdbfe4"), wallets[0].Address)
	assert.Equal(t, "Treasury", wallets[0].Label)
	assert.Equal(t, "cold storage", wallets[1].Label)

	require.Len(t, skipped, 2)
	assert.Equal(t, 5, skipped[0].Line)
	assert.Equal(t, "not-an-address", skipped[0].Content)
	assert.Equal(t, 7, skipped[1].Line)
}

func TestLoadWallets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte(watchList), 0o600))

	wallets, _, err := LoadWallets(path)
	require.NoError(t, err)
	assert.Len(t, wallets, 2)

	_, _, err = LoadWallets(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open wallet file")
}
