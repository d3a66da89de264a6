package port

import (
	"context"

	"whale_analyzer/internal/domain/entity"
)

// DataProvider normalizes one vendor's wallet-data endpoints into domain types.
// Every method either returns a valid (possibly empty) result or an error.
type DataProvider interface {
	ID() entity.ProviderID
	// Priority orders providers; lower is preferred.
	Priority() int
	// IsAvailable reports whether credentials are configured. No I/O.
	IsAvailable() bool
	SupportsChain(chainID uint64) bool
	SupportedChains() []uint64

	GetTokenBalances(ctx context.Context, address string, chainID uint64) ([]entity.TokenBalance, error)
	GetTransactionHistory(ctx context.Context, address string, chainID uint64, pageSize int) ([]entity.Transaction, error)
	// GetPortfolioValue returns 0 when the vendor has no data and an error on hard failure.
	GetPortfolioValue(ctx context.Context, address string, chainID uint64) (float64, error)
}

// ProviderRegistry hands out usable providers in priority order.
type ProviderRegistry interface {
	AvailableProvidersForChain(chainID uint64) []DataProvider
	BestProviderForChain(chainID uint64) (DataProvider, bool)
	StatusSnapshot() map[entity.ProviderID]entity.ProviderStatus
	HealthCheck(ctx context.Context) map[entity.ProviderID]entity.ProviderHealth
}
