package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"whale_analyzer/internal/domain/entity"
)

var errUpstream = errors.New("upstream unavailable")

// fakeProvider serves canned per-chain data. Chains listed in failChains fail
// every capability; block makes every call wait for ctx.
type fakeProvider struct {
	id         entity.ProviderID
	priority   int
	chains     map[uint64]bool
	tokens     map[uint64][]entity.TokenBalance
	txs        map[uint64][]entity.Transaction
	values     map[uint64]float64
	failChains map[uint64]bool
	block      bool

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeProvider) ID() entity.ProviderID { return f.id }
func (f *fakeProvider) Priority() int         { return f.priority }
func (f *fakeProvider) IsAvailable() bool     { return true }

func (f *fakeProvider) SupportsChain(chainID uint64) bool { return f.chains[chainID] }

func (f *fakeProvider) SupportedChains() []uint64 {
	ids := make([]uint64, 0, len(f.chains))
	for id := range f.chains {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeProvider) record(op string, chainID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[fmt.Sprintf("%s@%d", op, chainID)]++
}

func (f *fakeProvider) callCount(op string, chainID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[fmt.Sprintf("%s@%d", op, chainID)]
}

func (f *fakeProvider) check(ctx context.Context, op string, chainID uint64) error {
	f.record(op, chainID)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.failChains[chainID] {
		return &entity.ProviderError{Provider: f.id, Operation: op, ChainID: chainID, Err: errUpstream}
	}
	return nil
}

func (f *fakeProvider) GetTokenBalances(ctx context.Context, _ string, chainID uint64) ([]entity.TokenBalance, error) {
	if err := f.check(ctx, "balances", chainID); err != nil {
		return nil, err
	}
	return append([]entity.TokenBalance(nil), f.tokens[chainID]...), nil
}

func (f *fakeProvider) GetTransactionHistory(ctx context.Context, _ string, chainID uint64, _ int) ([]entity.Transaction, error) {
	if err := f.check(ctx, "transactions", chainID); err != nil {
		return nil, err
	}
	return append([]entity.Transaction(nil), f.txs[chainID]...), nil
}

func (f *fakeProvider) GetPortfolioValue(ctx context.Context, _ string, chainID uint64) (float64, error) {
	if err := f.check(ctx, "portfolio", chainID); err != nil {
		return 0, err
	}
	return f.values[chainID], nil
}

func chainSet(ids ...uint64) map[uint64]bool {
	m := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

type fakeSummary struct {
	err      error
	analysis entity.AIAnalysis
	calls    int
}

func (f *fakeSummary) GenerateAnalysis(context.Context, *entity.PortfolioSnapshot, entity.WhaleMetrics, entity.LiquidationRisk) (entity.AIAnalysis, error) {
	f.calls++
	if f.err != nil {
		return entity.AIAnalysis{}, f.err
	}
	return f.analysis, nil
}

type fakeChainMeta struct{}

func (fakeChainMeta) Get(_ context.Context, chainID uint64) (entity.ChainMetadata, bool) {
	switch chainID {
	case 1:
		return entity.ChainMetadata{ChainID: 1, DisplayName: "Ethereum", NativeSymbol: "ETH"}, true
	case 137:
		return entity.ChainMetadata{ChainID: 137, DisplayName: "Polygon", NativeSymbol: "MATIC"}, true
	}
	return entity.ChainMetadata{ChainID: chainID, DisplayName: fmt.Sprintf("Chain %d", chainID)}, false
}

func (f fakeChainMeta) All(ctx context.Context) []entity.ChainMetadata {
	a, _ := f.Get(ctx, 1)
	b, _ := f.Get(ctx, 137)
	return []entity.ChainMetadata{a, b}
}

func (fakeChainMeta) Refresh(context.Context) error { return nil }
