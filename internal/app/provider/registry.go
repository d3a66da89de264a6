package provider

import (
	"context"
	"sort"
	"sync"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

// HealthCheckAddress is a well-known funded wallet used to probe providers.
const HealthCheckAddress = "0x742CCF2e36AeBE0ad95A00c7cc1d8CB9aBBDBfE4"

const healthCheckChainID uint64 = 1

// CommonChains are the chains reported by the status snapshot.
var CommonChains = []uint64{1, 137, 56, 43114, 42161, 10, 8453, 250, 25}

type providerRegistryImpl struct {
	providers []port.DataProvider
	logger    port.Logger
}

// NewProviderRegistry creates a registry over a fixed set of adapters. The set
// and its priority order never change after construction.
func NewProviderRegistry(logger port.Logger, providers ...port.DataProvider) port.ProviderRegistry {
	ordered := make([]port.DataProvider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	for _, p := range ordered {
		if !p.IsAvailable() {
			logger.Warn("Provider not configured, it will be skipped", "provider", p.ID())
			continue
		}
		logger.Info("Provider registered", "provider", p.ID(), "priority", p.Priority(), "chains", len(p.SupportedChains()))
	}

	return &providerRegistryImpl{providers: ordered, logger: logger}
}

// AvailableProvidersForChain returns configured providers supporting chainID, best first.
func (r *providerRegistryImpl) AvailableProvidersForChain(chainID uint64) []port.DataProvider {
	var out []port.DataProvider
	for _, p := range r.providers {
		if p.IsAvailable() && p.SupportsChain(chainID) {
			out = append(out, p)
		}
	}
	return out
}

func (r *providerRegistryImpl) BestProviderForChain(chainID uint64) (port.DataProvider, bool) {
	available := r.AvailableProvidersForChain(chainID)
	if len(available) == 0 {
		return nil, false
	}
	return available[0], true
}

func (r *providerRegistryImpl) StatusSnapshot() map[entity.ProviderID]entity.ProviderStatus {
	status := make(map[entity.ProviderID]entity.ProviderStatus, len(r.providers))
	for _, p := range r.providers {
		chains := make([]uint64, 0, len(CommonChains))
		for _, id := range CommonChains {
			if p.SupportsChain(id) {
				chains = append(chains, id)
			}
		}
		status[p.ID()] = entity.ProviderStatus{
			Available:       p.IsAvailable(),
			Priority:        p.Priority(),
			SupportedChains: chains,
		}
	}
	return status
}

// HealthCheck probes every provider concurrently with a live balances call.
func (r *providerRegistryImpl) HealthCheck(ctx context.Context) map[entity.ProviderID]entity.ProviderHealth {
	var (
		mu     sync.Mutex
		report = make(map[entity.ProviderID]entity.ProviderHealth, len(r.providers))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range r.providers {
		g.Go(func() error {
			health := r.probe(gctx, p)
			mu.Lock()
			report[p.ID()] = health
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (r *providerRegistryImpl) probe(ctx context.Context, p port.DataProvider) entity.ProviderHealth {
	if !p.IsAvailable() {
		return entity.ProviderHealth{Status: entity.HealthUnhealthy, Error: "API key not configured"}
	}
	if !p.SupportsChain(healthCheckChainID) {
		return entity.ProviderHealth{Status: entity.HealthUnhealthy, Error: "Test chain not supported"}
	}
	if _, err := p.GetTokenBalances(ctx, HealthCheckAddress, healthCheckChainID); err != nil {
		r.logger.Warn("Provider health check failed", "provider", p.ID(), "error", err)
		return entity.ProviderHealth{Status: entity.HealthUnhealthy, Error: err.Error()}
	}
	return entity.ProviderHealth{Status: entity.HealthHealthy}
}
