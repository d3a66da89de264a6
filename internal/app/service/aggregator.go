package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

type aggregatorImpl struct {
	registry      port.ProviderRegistry
	maxConcurrent int
	logger        port.Logger
}

// NewAggregator creates the multi-provider aggregator. Chains are fetched in
// parallel (at most maxConcurrent at once); providers within a chain are tried
// one after another in priority order.
func NewAggregator(registry port.ProviderRegistry, maxConcurrent int, logger port.Logger) port.Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &aggregatorImpl{registry: registry, maxConcurrent: maxConcurrent, logger: logger}
}

func (a *aggregatorImpl) TokenBalances(ctx context.Context, address string, chains []uint64) ([]entity.TokenBalance, []port.ChainOutcome[[]entity.TokenBalance]) {
	outcomes := fanOut(ctx, chains, a.maxConcurrent, func(ctx context.Context, chainID uint64) (entity.ProviderResult[[]entity.TokenBalance], error) {
		return fetchWithFallback(ctx, a, entity.CapabilityBalances, chainID,
			func(ctx context.Context, p port.DataProvider) ([]entity.TokenBalance, error) {
				return p.GetTokenBalances(ctx, address, chainID)
			})
	})

	var all []entity.TokenBalance
	for _, o := range outcomes {
		if o.Err == nil {
			all = append(all, o.Result.Data...)
		}
	}
	return MergeTokenBalances(all), outcomes
}

func (a *aggregatorImpl) Transactions(ctx context.Context, address string, chains []uint64, limit int) ([]entity.Transaction, []port.ChainOutcome[[]entity.Transaction]) {
	pageSize := perChainPageSize(limit, len(chains))
	outcomes := fanOut(ctx, chains, a.maxConcurrent, func(ctx context.Context, chainID uint64) (entity.ProviderResult[[]entity.Transaction], error) {
		return fetchWithFallback(ctx, a, entity.CapabilityTransactions, chainID,
			func(ctx context.Context, p port.DataProvider) ([]entity.Transaction, error) {
				return p.GetTransactionHistory(ctx, address, chainID, pageSize)
			})
	})

	var all []entity.Transaction
	for _, o := range outcomes {
		if o.Err == nil {
			all = append(all, o.Result.Data...)
		}
	}
	return MergeTransactions(all, limit), outcomes
}

func (a *aggregatorImpl) PortfolioValue(ctx context.Context, address string, chains []uint64, tokens []entity.TokenBalance) (float64, []port.ChainOutcome[float64]) {
	outcomes := fanOut(ctx, chains, a.maxConcurrent, func(ctx context.Context, chainID uint64) (entity.ProviderResult[float64], error) {
		return fetchWithFallback(ctx, a, entity.CapabilityPortfolioValue, chainID,
			func(ctx context.Context, p port.DataProvider) (float64, error) {
				return p.GetPortfolioValue(ctx, address, chainID)
			})
	})

	total := 0.0
	for _, o := range outcomes {
		if o.Err == nil {
			total += o.Result.Data
		}
	}
	return resolvePortfolioTotal(total, tokens), outcomes
}

// fetchWithFallback tries the chain's providers in priority order and returns
// the first success together with the errors of the providers tried before it.
func fetchWithFallback[T any](
	ctx context.Context,
	a *aggregatorImpl,
	capability entity.Capability,
	chainID uint64,
	call func(ctx context.Context, p port.DataProvider) (T, error),
) (entity.ProviderResult[T], error) {
	providers := a.registry.AvailableProvidersForChain(chainID)
	if len(providers) == 0 {
		return entity.ProviderResult[T]{}, &entity.AggregateProviderError{
			Capability: capability,
			ChainID:    chainID,
			Cause:      entity.ErrNoProviderForChain,
		}
	}

	prior := make(map[entity.ProviderID]string)
	var lastErr error
	for _, p := range providers {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		data, err := call(ctx, p)
		if err == nil {
			result := entity.ProviderResult[T]{Data: data, ProviderUsed: p.ID()}
			if len(prior) > 0 {
				result.PriorErrors = prior
				a.logger.Info("Served by fallback provider",
					"capability", capability, "chainId", chainID, "provider", p.ID(), "failed", len(prior))
			}
			return result, nil
		}
		a.logger.Debug("Provider failed, trying next",
			"capability", capability, "chainId", chainID, "provider", p.ID(), "error", err)
		prior[p.ID()] = err.Error()
		lastErr = err
	}

	a.logger.Warn("All providers failed",
		"capability", capability, "chainId", chainID, "providers", len(providers))
	return entity.ProviderResult[T]{}, &entity.AggregateProviderError{
		Capability: capability,
		ChainID:    chainID,
		Errors:     prior,
		Cause:      lastErr,
	}
}

// fanOut runs fetch for every chain with at most limit in flight. A chain's
// failure never aborts the others. When ctx ends first, fanOut returns at once:
// chains still in flight are reported with ctx's error and their late results
// are discarded.
func fanOut[T any](
	ctx context.Context,
	chains []uint64,
	limit int,
	fetch func(ctx context.Context, chainID uint64) (entity.ProviderResult[T], error),
) []port.ChainOutcome[T] {
	var (
		mu       sync.Mutex
		outcomes = make([]port.ChainOutcome[T], len(chains))
		finished = make([]bool, len(chains))
	)

	g := new(errgroup.Group)
	g.SetLimit(limit)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, chainID := range chains {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				result, err := fetch(ctx, chainID)
				mu.Lock()
				outcomes[i] = port.ChainOutcome[T]{ChainID: chainID, Result: result, Err: err}
				finished[i] = true
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]port.ChainOutcome[T], len(chains))
	for i, chainID := range chains {
		if finished[i] {
			out[i] = outcomes[i]
			continue
		}
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		out[i] = port.ChainOutcome[T]{ChainID: chainID, Err: fmt.Errorf("chain %d abandoned: %w", chainID, cause)}
	}
	return out
}

// isNoProvider reports whether err only says that no provider serves the chain.
func isNoProvider(err error) bool {
	var aggErr *entity.AggregateProviderError
	return errors.As(err, &aggErr) && len(aggErr.Errors) == 0 && errors.Is(aggErr.Cause, entity.ErrNoProviderForChain)
}
