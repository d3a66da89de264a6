// Package bootstrap assembles the analysis core from configuration. Both the
// HTTP service and the batch CLI build their dependencies here.
package bootstrap

import (
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/app/provider"
	"whale_analyzer/internal/app/service"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/configloader"
	"whale_analyzer/internal/infrastructure/dataprovider"
	networkdefinition "whale_analyzer/internal/infrastructure/network/definition"
	"whale_analyzer/internal/infrastructure/resilience"
	"whale_analyzer/internal/infrastructure/summary"

	"go.uber.org/zap"
)

// Components is the wired analysis core.
type Components struct {
	Registry  port.ProviderRegistry
	ChainMeta port.ChainMetadataProvider
	Analysis  port.WalletAnalysisService
	Defi      port.DefiAnalysisService
	Summary   port.SummaryService
}

type providerFactory func(dataprovider.Settings, *resilience.Executor, *zap.Logger) port.DataProvider

// Build constructs providers, their resilience stacks, the registry, the
// chain metadata cache, the summary generators and the services on top.
// Limiters and breakers are created once here and live for the process.
func Build(cfg *configloader.Config, zapLogger *zap.Logger, logger port.Logger) *Components {
	vendors := []struct {
		id      entity.ProviderID
		cfg     configloader.ProviderConfig
		factory providerFactory
	}{
		{entity.ProviderCovalent, cfg.Providers.Covalent, dataprovider.NewCovalentProvider},
		{entity.ProviderMoralis, cfg.Providers.Moralis, dataprovider.NewMoralisProvider},
		{entity.ProviderAlchemy, cfg.Providers.Alchemy, dataprovider.NewAlchemyProvider},
	}

	limiters := make(map[entity.ProviderID]resilience.Limiter, len(vendors))
	providers := make([]port.DataProvider, 0, len(vendors))
	for _, v := range vendors {
		limiters[v.id] = newLimiter(string(v.id), v.cfg)
		providers = append(providers, v.factory(
			dataprovider.Settings{APIKey: v.cfg.APIKey, BaseURL: v.cfg.BaseURL, Timeout: v.cfg.Timeout()},
			newExecutor(string(v.id), v.cfg, limiters[v.id], zapLogger),
			zapLogger,
		))
	}
	registry := provider.NewProviderRegistry(logger, providers...)

	chainMeta := networkdefinition.NewMetadataCache(networkdefinition.CacheConfig{
		APIKey:  cfg.Providers.Covalent.APIKey,
		BaseURL: cfg.Chains.RefreshBaseURL,
		TTL:     time.Duration(cfg.Chains.CacheTTLHours) * time.Hour,
		Timeout: time.Duration(cfg.Chains.RequestTimeoutSeconds) * time.Second,
		Limiter: limiters[entity.ProviderCovalent],
	}, nil, logger)

	var primary port.SummaryGenerator
	if cfg.Summary.OpenAIKey != "" {
		primary = summary.NewOpenAIGenerator(summary.OpenAIConfig{
			APIKey:            cfg.Summary.OpenAIKey,
			BaseURL:           cfg.Summary.BaseURL,
			Model:             cfg.Summary.Model,
			MaxTokens:         cfg.Summary.MaxTokens,
			Temperature:       cfg.Summary.Temperature,
			RequestsPerSecond: cfg.Summary.RequestsPerSecond,
		}, logger)
	}

	fallback := summary.NewFallbackGenerator()
	aggregator := service.NewAggregator(registry, cfg.Analysis.MaxConcurrentChains, logger)
	analysis := service.NewWalletAnalysisService(
		aggregator,
		chainMeta,
		primary,
		fallback,
		service.AnalysisOptions{
			Chains:           cfg.Analysis.Chains,
			Deadline:         cfg.Analysis.Deadline(),
			SummaryTimeout:   cfg.Analysis.SummaryTimeout(),
			TransactionLimit: cfg.Analysis.TransactionLimit,
		},
		logger,
	)

	return &Components{
		Registry:  registry,
		ChainMeta: chainMeta,
		Analysis:  analysis,
		Defi:      service.NewDefiAnalysisService(aggregator, cfg.Analysis.Deadline(), logger),
		Summary:   service.NewSummaryService(primary, fallback, cfg.Analysis.SummaryTimeout(), logger),
	}
}

// newLimiter creates the account-wide limiter of one vendor. The chain
// metadata refresh shares Covalent's.
func newLimiter(name string, pc configloader.ProviderConfig) resilience.Limiter {
	return resilience.NewSlidingWindowLimiter(name, pc.RateLimit.Requests, pc.Window())
}

func newExecutor(name string, pc configloader.ProviderConfig, limiter resilience.Limiter, zapLogger *zap.Logger) *resilience.Executor {
	return resilience.NewExecutor(
		name,
		limiter,
		resilience.NewCircuitBreaker(pc.CircuitBreaker.Threshold, pc.Cooldown()),
		resilience.RetryPolicy{MaxAttempts: pc.Retry.MaxAttempts, Delays: pc.Delays()},
		zapLogger,
	)
}
