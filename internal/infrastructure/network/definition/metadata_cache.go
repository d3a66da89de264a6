package networkdefinition

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"
	"whale_analyzer/internal/pkg/metrics"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	defaultChainsBaseURL = "https://api.covalenthq.com"
	defaultMetadataTTL   = 24 * time.Hour
	defaultRetryTTL      = 10 * time.Minute
	chainsCacheKey       = "chains"
	lastKnownKey         = "chains:last"
	defaultChainColor    = "#6B7280"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CacheConfig configures the chain metadata cache.
type CacheConfig struct {
	APIKey  string
	BaseURL string
	TTL     time.Duration
	// RetryTTL is how long the static fallback is served after a failed refresh.
	RetryTTL time.Duration
	Timeout  time.Duration
	// Limiter is the Covalent account limiter shared with the data provider.
	Limiter resilience.Limiter
}

type covalentChainsResponse struct {
	Data struct {
		Items []covalentChain `json:"items"`
	} `json:"data"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
}

type covalentChain struct {
	Name         string `json:"name"`
	ChainID      string `json:"chain_id"`
	IsTestnet    bool   `json:"is_testnet"`
	Label        string `json:"label"`
	LogoURL      string `json:"logo_url"`
	WhiteLogoURL string `json:"white_logo_url"`
	BlackLogoURL string `json:"black_logo_url"`
	NativeToken  *struct {
		ContractTickerSymbol string `json:"contract_ticker_symbol"`
		ContractDecimals     int32  `json:"contract_decimals"`
	} `json:"native_token"`
}

type metadataCache struct {
	cfg    CacheConfig
	client *resty.Client
	store  *cache.Cache
	group  singleflight.Group
	logger port.Logger
}

// NewMetadataCache returns a chain metadata provider that refreshes from the
// Covalent chains endpoint and serves the static table until a refresh succeeds.
// A nil client gets a default resty client.
func NewMetadataCache(cfg CacheConfig, client *resty.Client, logger port.Logger) port.ChainMetadataProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultChainsBaseURL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultMetadataTTL
	}
	if cfg.RetryTTL <= 0 {
		cfg.RetryTTL = defaultRetryTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = resty.New()
	}
	client.SetTimeout(cfg.Timeout)

	return &metadataCache{
		cfg:    cfg,
		client: client,
		store:  cache.New(cfg.TTL, time.Hour),
		logger: logger.With("component", "chain_metadata"),
	}
}

func (c *metadataCache) Get(_ context.Context, chainID uint64) (entity.ChainMetadata, bool) {
	chains := c.load()
	if def, ok := chains[chainID]; ok {
		return cloneMetadata(def), true
	}
	return Placeholder(chainID), false
}

func (c *metadataCache) All(_ context.Context) []entity.ChainMetadata {
	chains := c.load()
	defs := make([]entity.ChainMetadata, 0, len(chains))
	for _, def := range chains {
		defs = append(defs, cloneMetadata(def))
	}
	sortByChainID(defs)
	return defs
}

// Refresh fetches the remote chain list and blocks until it is done. On
// failure the last known table is kept for RetryTTL and the error is returned.
func (c *metadataCache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do(chainsCacheKey, func() (any, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

// load never waits on the network. An expired table is served while a
// background refresh, bounded by the cache's own timeout, replaces it.
func (c *metadataCache) load() map[uint64]entity.ChainMetadata {
	if cached, ok := c.store.Get(chainsCacheKey); ok {
		return cached.(map[uint64]entity.ChainMetadata)
	}
	c.refreshInBackground()
	return c.lastKnown()
}

func (c *metadataCache) refreshInBackground() {
	c.group.DoChan(chainsCacheKey, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
		defer cancel()
		err := c.refresh(ctx)
		if err != nil {
			c.logger.Debug("Background chain metadata refresh failed", "error", err)
		}
		return nil, err
	})
}

func (c *metadataCache) lastKnown() map[uint64]entity.ChainMetadata {
	if last, ok := c.store.Get(lastKnownKey); ok {
		return last.(map[uint64]entity.ChainMetadata)
	}
	return staticTable()
}

func (c *metadataCache) refresh(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		metrics.ChainMetadataRefresh.WithLabelValues("skipped").Inc()
		c.store.Set(chainsCacheKey, staticTable(), c.cfg.TTL)
		c.logger.Warn("Covalent API key not configured, using static chain metadata")
		return nil
	}

	remote, err := c.fetch(ctx)
	if err != nil {
		metrics.ChainMetadataRefresh.WithLabelValues("error").Inc()
		c.store.Set(chainsCacheKey, c.lastKnown(), c.cfg.RetryTTL)
		c.logger.Warn("Chain metadata refresh failed, keeping last known table", "error", err)
		return err
	}

	merged := staticTable()
	for id, def := range remote {
		merged[id] = mergeStatic(def)
	}
	c.store.Set(chainsCacheKey, merged, c.cfg.TTL)
	c.store.Set(lastKnownKey, merged, cache.NoExpiration)
	metrics.ChainMetadataRefresh.WithLabelValues("success").Inc()
	c.logger.Info("Chain metadata refreshed", "remoteChains", len(remote), "totalChains", len(merged))
	return nil
}

func (c *metadataCache) fetch(ctx context.Context) (map[uint64]entity.ChainMetadata, error) {
	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.APIKey).
		SetHeader("Accept", "application/json").
		Get(strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chains/")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("chains request failed with status %d", resp.StatusCode())
	}

	var body covalentChainsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode chains response: %w", err)
	}
	if body.Error {
		return nil, fmt.Errorf("covalent chains error: %s", body.ErrorMessage)
	}

	chains := make(map[uint64]entity.ChainMetadata, len(body.Data.Items))
	for _, item := range body.Data.Items {
		if item.IsTestnet || item.ChainID == "" {
			continue
		}
		id, err := strconv.ParseUint(item.ChainID, 10, 64)
		if err != nil {
			continue
		}
		chains[id] = fromCovalent(id, item)
	}
	if len(chains) == 0 {
		return nil, fmt.Errorf("chains response contained no mainnet chains")
	}
	return chains, nil
}

func fromCovalent(id uint64, item covalentChain) entity.ChainMetadata {
	def := entity.ChainMetadata{
		ChainID:      id,
		Name:         item.Name,
		DisplayName:  item.Label,
		NativeSymbol: "ETH",
		Decimals:     18,
		LogoURL:      firstNonEmpty(item.LogoURL, item.WhiteLogoURL, item.BlackLogoURL),
	}
	if def.DisplayName == "" {
		def.DisplayName = item.Name
	}
	if item.NativeToken != nil {
		if item.NativeToken.ContractTickerSymbol != "" {
			def.NativeSymbol = item.NativeToken.ContractTickerSymbol
		}
		if item.NativeToken.ContractDecimals > 0 {
			def.Decimals = item.NativeToken.ContractDecimals
		}
	}
	return def
}

// mergeStatic fills in what the remote list does not carry.
func mergeStatic(def entity.ChainMetadata) entity.ChainMetadata {
	static, ok := allKnownDefinitions[def.ChainID]
	if !ok {
		if def.Color == "" {
			def.Color = defaultChainColor
		}
		return def
	}
	if def.PrimaryRPCURL == "" {
		def.PrimaryRPCURL = static.PrimaryRPCURL
	}
	if len(def.FallbackRPCURLs) == 0 && len(static.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = append([]string(nil), static.FallbackRPCURLs...)
	}
	if def.BlockExplorerURL == "" {
		def.BlockExplorerURL = static.BlockExplorerURL
	}
	if def.Color == "" {
		def.Color = static.Color
	}
	return def
}

func staticTable() map[uint64]entity.ChainMetadata {
	table := make(map[uint64]entity.ChainMetadata, len(allKnownDefinitions))
	for id, def := range allKnownDefinitions {
		table[id] = cloneMetadata(def)
	}
	return table
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
