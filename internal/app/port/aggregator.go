package port

import (
	"context"

	"whale_analyzer/internal/domain/entity"
)

// ChainOutcome is the per-chain result of one capability: either a ProviderResult or an error.
type ChainOutcome[T any] struct {
	ChainID uint64
	Result  entity.ProviderResult[T]
	Err     error
}

// Aggregator fetches one capability across chains, falling back between providers within a chain.
type Aggregator interface {
	TokenBalances(ctx context.Context, address string, chains []uint64) ([]entity.TokenBalance, []ChainOutcome[[]entity.TokenBalance])
	Transactions(ctx context.Context, address string, chains []uint64, limit int) ([]entity.Transaction, []ChainOutcome[[]entity.Transaction])
	PortfolioValue(ctx context.Context, address string, chains []uint64, tokens []entity.TokenBalance) (float64, []ChainOutcome[float64])
}
