package dataprovider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x742CCF2e36AeBE0ad95A00c7cc1d8CB9aBBDBfE4"

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func settings(baseURL string) Settings {
	return Settings{APIKey: "test-key", BaseURL: baseURL, Timeout: 2 * time.Second}
}

func TestCovalent_GetTokenBalances(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/eth-mainnet/address/"+testAddress+"/balances_v2/", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"items":[
			{"contract_decimals":6,"contract_name":"USD Coin","contract_ticker_symbol":"USDC","contract_address":"0xa0b8","balance":"2500000000","quote":2500,"quote_rate":1},
			{"contract_decimals":null,"contract_name":"","contract_ticker_symbol":"","contract_address":"0xdead","balance":"1000000000000000000","quote":null},
			{"contract_decimals":18,"contract_ticker_symbol":"BAD","balance":"not-a-number"}
		]},"error":false}`)
	})

	p := NewCovalentProvider(settings(srv.URL), nil, nil)
	tokens, err := p.GetTokenBalances(context.Background(), testAddress, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.InDelta(t, 2500.0, tokens[0].Balance, 1e-9)
	assert.InDelta(t, 2500.0, tokens[0].ValueUSD, 1e-9)
	assert.Equal(t, uint64(1), tokens[0].ChainID)

	assert.Equal(t, "UNKNOWN", tokens[1].Symbol)
	assert.InDelta(t, 1.0, tokens[1].Balance, 1e-9, "missing decimals default to 18")
	assert.Zero(t, tokens[1].ValueUSD)
}

func TestCovalent_VendorErrorEnvelope(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":null,"error":true,"error_message":"Invalid address","error_code":400}`)
	})

	p := NewCovalentProvider(settings(srv.URL), nil, nil)
	_, err := p.GetTokenBalances(context.Background(), testAddress, 1)
	require.Error(t, err)

	var provErr *entity.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, entity.ProviderCovalent, provErr.Provider)
	assert.Contains(t, err.Error(), "Invalid address")
}

func TestCovalent_PortfolioValueAndTransactions(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/portfolio_v2/"):
			_, _ = io.WriteString(w, `{"data":{"total_quote":1234.5},"error":false}`)
		case strings.HasSuffix(r.URL.Path, "/transactions_v2/"):
			assert.Equal(t, "100", r.URL.Query().Get("page-size"))
			_, _ = io.WriteString(w, `{"data":{"items":[
				{"tx_hash":"0x1","from_address":"0xa","to_address":"0xb","value":"2000000000000000000","block_signed_at":"2024-05-01T10:00:00Z","gas_spent":"21000"}
			]},"error":false}`)
		default:
			http.NotFound(w, r)
		}
	})

	p := NewCovalentProvider(settings(srv.URL), nil, nil)

	value, err := p.GetPortfolioValue(context.Background(), testAddress, 137)
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, value, 1e-9)

	txs, err := p.GetTransactionHistory(context.Background(), testAddress, 1, 500)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.InDelta(t, 2.0, txs[0].Value, 1e-9)
	assert.Equal(t, uint64(21000), txs[0].GasUsed)
	assert.Equal(t, 2024, txs[0].Timestamp.Year())
}

func TestMoralis_FiltersSpamAndZeroBalances(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "polygon", r.URL.Query().Get("chain"))
		_, _ = io.WriteString(w, `[
			{"token_address":"0x1","symbol":"WETH","name":"Wrapped Ether","decimals":"18","balance":"500000000000000000","usd_price":3000,"usd_value":1500},
			{"token_address":"0x2","symbol":"SCAM","name":"Free Money","decimals":18,"balance":"1000000000000000000000","possible_spam":true},
			{"token_address":"0x3","symbol":"DUST","name":"Dust","decimals":18,"balance":"0"}
		]`)
	})

	p := NewMoralisProvider(settings(srv.URL), nil, nil)
	tokens, err := p.GetTokenBalances(context.Background(), testAddress, 137)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "WETH", tokens[0].Symbol)
	assert.InDelta(t, 0.5, tokens[0].Balance, 1e-9)

	total, err := p.GetPortfolioValue(context.Background(), testAddress, 137)
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, total, 1e-9)
}

func TestAlchemy_BalancesWithMetadata(t *testing.T) {
	var metadataCalls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eth-mainnet/test-key", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var req rpcRequest
		assert.NoError(t, json.Unmarshal(body, &req))

		switch req.Method {
		case "alchemy_getTokenBalances":
			_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"address":"x","tokenBalances":[
				{"contractAddress":"0xusdc","tokenBalance":"0x0000000000000000000000000000000000000000000000000000000005f5e100"},
				{"contractAddress":"0xzero","tokenBalance":"0x0000000000000000000000000000000000000000000000000000000000000000"},
				{"contractAddress":"0xbroken","tokenBalance":"0x01"}
			]}}`)
		case "alchemy_getTokenMetadata":
			metadataCalls.Add(1)
			if req.Params[0] == "0xbroken" {
				_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"bad token"}}`)
				return
			}
			_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"decimals":6,"symbol":"USDC","name":"USD Coin","logo":""}}`)
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
	})

	p := NewAlchemyProvider(settings(srv.URL+"/{network}"), nil, nil)
	tokens, err := p.GetTokenBalances(context.Background(), testAddress, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.InDelta(t, 100.0, tokens[0].Balance, 1e-9)
	assert.Zero(t, tokens[0].ValueUSD, "alchemy serves no prices")
	assert.Equal(t, int32(2), metadataCalls.Load(), "zero balances are skipped before the metadata lookup")
}

func TestAlchemy_TransactionsAndRPCError(t *testing.T) {
	var fail atomic.Bool
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"maxCount":"0x19"`)
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"transfers":[
			{"hash":"0xabc","from":"0xa","to":"0xb","value":1.5,"asset":"ETH","metadata":{"blockTimestamp":"2024-06-01T12:00:00.000Z"}}
		]}}`)
	})

	p := NewAlchemyProvider(settings(srv.URL+"/{network}"), nil, nil)
	txs, err := p.GetTransactionHistory(context.Background(), testAddress, 8453, 25)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "0xabc", txs[0].Hash)
	assert.InDelta(t, 1.5, txs[0].Value, 1e-9)
	assert.Equal(t, time.June, txs[0].Timestamp.Month())

	fail.Store(true)
	_, err = p.GetTransactionHistory(context.Background(), testAddress, 8453, 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	value, err := p.GetPortfolioValue(context.Background(), testAddress, 8453)
	require.NoError(t, err)
	assert.Zero(t, value)
}

func TestProviders_RejectUnsupportedChainAndMissingKey(t *testing.T) {
	p := NewAlchemyProvider(Settings{APIKey: "k"}, nil, nil)
	_, err := p.GetTokenBalances(context.Background(), testAddress, 250)
	assert.ErrorIs(t, err, entity.ErrUnsupportedChain)

	unconfigured := NewMoralisProvider(Settings{}, nil, nil)
	assert.False(t, unconfigured.IsAvailable())
	_, err = unconfigured.GetTokenBalances(context.Background(), testAddress, 1)
	assert.ErrorIs(t, err, entity.ErrProviderNotConfigured)
}

func TestProviders_StaticCapabilities(t *testing.T) {
	cov := NewCovalentProvider(Settings{APIKey: "k"}, nil, nil)
	mor := NewMoralisProvider(Settings{APIKey: "k"}, nil, nil)
	alc := NewAlchemyProvider(Settings{APIKey: "k"}, nil, nil)

	assert.Equal(t, 1, cov.Priority())
	assert.Equal(t, 2, mor.Priority())
	assert.Equal(t, 3, alc.Priority())

	assert.True(t, cov.SupportsChain(100))
	assert.False(t, mor.SupportsChain(100))
	assert.Equal(t, []uint64{1, 10, 56, 137, 8453, 42161}, alc.SupportedChains())
}

func TestCovalent_BreakerStopsNetworkCalls(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	breaker := resilience.NewCircuitBreaker(3, 5*time.Minute)
	exec := resilience.NewExecutor("covalent", nil, breaker, resilience.RetryPolicy{MaxAttempts: 1}, nil)
	p := NewCovalentProvider(settings(srv.URL), exec, nil)

	for i := 0; i < 3; i++ {
		_, err := p.GetTokenBalances(context.Background(), testAddress, 1)
		require.Error(t, err)
	}
	require.Equal(t, int32(3), hits.Load())

	_, err := p.GetTokenBalances(context.Background(), testAddress, 1)
	assert.ErrorIs(t, err, entity.ErrCircuitOpen)
	assert.Equal(t, int32(3), hits.Load())
}

func TestAlchemy_RateLimitInRPCEnvelopeIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"error":{"code":429,"message":"Your app has exceeded its compute units per second capacity"}}`)
	})

	breaker := resilience.NewCircuitBreaker(1, 5*time.Minute)
	retry := resilience.RetryPolicy{MaxAttempts: 3, Delays: []time.Duration{time.Millisecond}}
	exec := resilience.NewExecutor("alchemy", nil, breaker, retry, nil)
	p := NewAlchemyProvider(settings(srv.URL+"/{network}"), exec, nil)

	_, err := p.GetTransactionHistory(context.Background(), testAddress, 1, 10)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Equal(t, int32(3), calls.Load(), "every attempt sees the rate limit")

	_, err = p.GetTransactionHistory(context.Background(), testAddress, 1, 10)
	assert.ErrorIs(t, err, entity.ErrCircuitOpen, "the failed call counts against the breaker")
	assert.Equal(t, int32(3), calls.Load())
}
