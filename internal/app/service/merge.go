package service

import (
	"sort"
	"strings"

	"whale_analyzer/internal/domain/entity"
)

// MergeTokenBalances folds balances sharing an identity key (contract or
// symbol, scoped to the chain) by summing balance and value, and orders the
// result by value descending. Merging an already merged list is a no-op.
func MergeTokenBalances(tokens []entity.TokenBalance) []entity.TokenBalance {
	merged := make([]entity.TokenBalance, 0, len(tokens))
	index := make(map[string]int, len(tokens))
	for _, t := range tokens {
		key := t.Key()
		if i, ok := index[key]; ok {
			merged[i].Balance += t.Balance
			merged[i].ValueUSD += t.ValueUSD
			if merged[i].PriceUSD == 0 {
				merged[i].PriceUSD = t.PriceUSD
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, t)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].ValueUSD != merged[j].ValueUSD {
			return merged[i].ValueUSD > merged[j].ValueUSD
		}
		return merged[i].Key() < merged[j].Key()
	})
	return merged
}

// MergeTransactions drops repeated hashes, orders newest first and keeps at
// most limit entries (no limit when limit <= 0).
func MergeTransactions(txs []entity.Transaction, limit int) []entity.Transaction {
	seen := make(map[string]struct{}, len(txs))
	merged := make([]entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Hash != "" {
			key := strings.ToLower(tx.Hash)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		merged = append(merged, tx)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Timestamp.Equal(merged[j].Timestamp) {
			return merged[i].Timestamp.After(merged[j].Timestamp)
		}
		return merged[i].Hash < merged[j].Hash
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// sumTokenValues is the portfolio total implied by token-level prices.
func sumTokenValues(tokens []entity.TokenBalance) float64 {
	total := 0.0
	for _, t := range tokens {
		total += t.ValueUSD
	}
	return total
}

// resolvePortfolioTotal substitutes the token-level total when providers
// reported no priced portfolio data but token balances exist.
func resolvePortfolioTotal(reported float64, tokens []entity.TokenBalance) float64 {
	if reported == 0 && len(tokens) > 0 {
		return sumTokenValues(tokens)
	}
	return reported
}

// perChainPageSize splits a transaction limit evenly across chains.
func perChainPageSize(limit, chains int) int {
	if limit <= 0 || chains <= 0 {
		return limit
	}
	return (limit + chains - 1) / chains
}
