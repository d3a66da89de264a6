package networkdefinition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"whale_analyzer/internal/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainsBody = `{
  "data": {"items": [
    {"name": "eth-mainnet", "chain_id": "1", "is_testnet": false, "label": "Ethereum",
     "logo_url": "https://logos/eth.png", "native_token": {"contract_ticker_symbol": "ETH", "contract_decimals": 18}},
    {"name": "eth-sepolia", "chain_id": "11155111", "is_testnet": true, "label": "Sepolia"},
    {"name": "zora-mainnet", "chain_id": "7777777", "is_testnet": false, "label": "Zora",
     "white_logo_url": "https://logos/zora-white.png"},
    {"name": "broken", "chain_id": "not-a-number", "is_testnet": false, "label": "Broken"}
  ]},
  "error": false
}`

func chainsServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/chains/", r.URL.Path)
		assert.Equal(t, "Bearer ck-test", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestCache(srv *httptest.Server, apiKey string) *metadataCache {
	cfg := CacheConfig{APIKey: apiKey, BaseURL: srv.URL, Timeout: time.Second}
	return NewMetadataCache(cfg, resty.NewWithClient(srv.Client()), logger.NewNop()).(*metadataCache)
}

func TestStaticDefinitions(t *testing.T) {
	defs := StaticDefinitions()
	require.Len(t, defs, 10)
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].ChainID, defs[i].ChainID)
	}

	eth, ok := StaticDefinition(1)
	require.True(t, ok)
	assert.Equal(t, "#627EEA", eth.Color)
	assert.Equal(t, "https://etherscan.io", eth.BlockExplorerURL)

	eth.FallbackRPCURLs[0] = "mutated"
	again, _ := StaticDefinition(1)
	assert.NotEqual(t, "mutated", again.FallbackRPCURLs[0])

	_, ok = StaticDefinition(999)
	assert.False(t, ok)
}

func TestMetadataCache_RemoteRefresh(t *testing.T) {
	srv, hits := chainsServer(t, http.StatusOK, chainsBody)
	c := newTestCache(srv, "ck-test")
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	eth, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Ethereum", eth.DisplayName)
	assert.Equal(t, "eth-mainnet", eth.Name)
	assert.Equal(t, "https://logos/eth.png", eth.LogoURL)
	assert.Equal(t, "https://ethereum-rpc.publicnode.com", eth.PrimaryRPCURL, "static RPC fills the gap")
	assert.Equal(t, "#627EEA", eth.Color)

	zora, ok := c.Get(ctx, 7777777)
	require.True(t, ok)
	assert.Equal(t, "https://logos/zora-white.png", zora.LogoURL)
	assert.Equal(t, "ETH", zora.NativeSymbol)
	assert.Equal(t, defaultChainColor, zora.Color)

	_, ok = c.Get(ctx, 11155111)
	assert.False(t, ok, "testnets are skipped")

	all := c.All(ctx)
	assert.Len(t, all, 11, "static table plus zora")
	assert.Equal(t, int32(1), hits.Load(), "served from cache after the first refresh")
}

func TestMetadataCache_FallbackOnFailure(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _ := chainsServer(t, http.StatusInternalServerError, `{}`)
		c := newTestCache(srv, "ck-test")

		require.Error(t, c.Refresh(context.Background()))
		polygon, ok := c.Get(context.Background(), 137)
		require.True(t, ok)
		assert.Equal(t, "Polygon PoS", polygon.DisplayName)
	})

	t.Run("error envelope", func(t *testing.T) {
		srv, _ := chainsServer(t, http.StatusOK, `{"error": true, "error_message": "bad key"}`)
		c := newTestCache(srv, "ck-test")

		err := c.Refresh(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad key")
		assert.Len(t, c.All(context.Background()), 10)
	})

	t.Run("missing key skips the network", func(t *testing.T) {
		srv, hits := chainsServer(t, http.StatusOK, chainsBody)
		c := newTestCache(srv, "")

		require.NoError(t, c.Refresh(context.Background()))
		assert.Len(t, c.All(context.Background()), 10)
		assert.Zero(t, hits.Load())
	})
}

func TestMetadataCache_UnknownChainPlaceholder(t *testing.T) {
	srv, _ := chainsServer(t, http.StatusOK, chainsBody)
	c := newTestCache(srv, "")

	meta, ok := c.Get(context.Background(), 424242)
	assert.False(t, ok)
	assert.Equal(t, "Chain 424242", meta.DisplayName)
	assert.Equal(t, uint64(424242), meta.ChainID)
}

func TestMetadataCache_MissServesStaticWhileRefreshing(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		_, _ = w.Write([]byte(chainsBody))
	}))
	t.Cleanup(srv.Close)
	var once sync.Once
	unblock := func() { once.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	c := newTestCache(srv, "ck-test")
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	eth, ok := c.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Ethereum Mainnet", eth.DisplayName, "static entry while the remote list loads")
	_, ok = c.Get(ctx, 7777777)
	assert.False(t, ok)
	assert.Len(t, c.All(ctx), 10)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.NoError(t, ctx.Err(), "lookups do not consume the caller's deadline")

	unblock()
	assert.Eventually(t, func() bool {
		zora, ok := c.Get(context.Background(), 7777777)
		return ok && zora.DisplayName == "Zora"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), hits.Load(), "concurrent misses share one refresh")
}

func TestMetadataCache_FailedRefreshKeepsLastKnownTable(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(chainsBody))
	}))
	t.Cleanup(srv.Close)
	c := newTestCache(srv, "ck-test")
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	fail.Store(true)
	require.Error(t, c.Refresh(ctx))

	zora, ok := c.Get(ctx, 7777777)
	require.True(t, ok)
	assert.Equal(t, "Zora", zora.DisplayName)
	assert.Len(t, c.All(ctx), 11)
}

type countingLimiter struct {
	calls atomic.Int32
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.calls.Add(1)
	return l.err
}

func TestMetadataCache_SharesProviderLimiter(t *testing.T) {
	t.Run("refresh claims a slot", func(t *testing.T) {
		srv, hits := chainsServer(t, http.StatusOK, chainsBody)
		c := newTestCache(srv, "ck-test")
		limiter := &countingLimiter{}
		c.cfg.Limiter = limiter

		require.NoError(t, c.Refresh(context.Background()))
		assert.Equal(t, int32(1), limiter.calls.Load())
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("limiter error skips the request", func(t *testing.T) {
		srv, hits := chainsServer(t, http.StatusOK, chainsBody)
		c := newTestCache(srv, "ck-test")
		c.cfg.Limiter = &countingLimiter{err: context.DeadlineExceeded}

		err := c.Refresh(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, hits.Load())
		assert.Len(t, c.All(context.Background()), 10)
	})
}
