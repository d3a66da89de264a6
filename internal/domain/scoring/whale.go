// Package scoring holds the pure heuristics computed over a merged wallet snapshot.
package scoring

import (
	"strings"

	"whale_analyzer/internal/domain/entity"
)

const (
	// NativeUSDPrice approximates the USD price of one native unit when sizing transactions.
	NativeUSDPrice = 3000.0

	largeTransactionUSD = 100_000.0
	maxWhaleScore       = 100
)

var stakingSymbols = []string{"steth", "reth", "cbeth", "sfrxeth"}

type tier struct {
	min    float64
	points int
}

var (
	valueTiers     = []tier{{10_000_000, 40}, {5_000_000, 35}, {1_000_000, 25}, {500_000, 15}, {100_000, 5}}
	largeTxTiers   = []tier{{50, 20}, {20, 15}, {10, 10}, {5, 5}}
	defiTiers      = []tier{{500_000, 20}, {100_000, 15}, {50_000, 10}, {10_000, 5}}
	diversityTiers = []tier{{50, 10}, {30, 8}, {20, 6}, {10, 4}, {5, 2}}
	avgTxTiers     = []tier{{100_000, 10}, {50_000, 8}, {10_000, 6}, {5_000, 4}, {1_000, 2}}
)

func points(tiers []tier, v float64) int {
	for _, t := range tiers {
		if v >= t.min {
			return t.points
		}
	}
	return 0
}

// CalculateWhaleMetrics derives the whale metrics, score, level and badges from
// merged balances and transactions. The score is an integer in [0, 100].
func CalculateWhaleMetrics(tokens []entity.TokenBalance, txs []entity.Transaction) entity.WhaleMetrics {
	m := entity.WhaleMetrics{UniqueTokens: len(tokens)}

	for _, t := range tokens {
		m.TotalValue += t.ValueUSD
		if IsStakingToken(t.Symbol) {
			m.StakingValue += t.ValueUSD
		}
		if IsLendingToken(t.Symbol) {
			m.LendingValue += t.ValueUSD
		}
		if strings.Contains(t.Symbol, "NFT") || strings.Contains(t.Name, "NFT") {
			m.NFTValue += t.ValueUSD
		}
	}

	var txTotal float64
	for _, tx := range txs {
		txTotal += tx.Value
		if tx.Value*NativeUSDPrice > largeTransactionUSD {
			m.LargeTransactions++
		}
	}
	if len(txs) > 0 {
		m.AverageTransactionSize = txTotal / float64(len(txs))
	}

	m.Score = WhaleScore(m)
	m.Level = WhaleLevel(m.Score)
	m.Badges = WhaleBadges(m)
	return m
}

// WhaleScore is the capped sum of the value, large-transaction, DeFi, diversity
// and average-transaction sub-scores.
func WhaleScore(m entity.WhaleMetrics) int {
	score := points(valueTiers, m.TotalValue) +
		points(largeTxTiers, float64(m.LargeTransactions)) +
		points(defiTiers, m.StakingValue+m.LendingValue) +
		points(diversityTiers, float64(m.UniqueTokens)) +
		points(avgTxTiers, m.AverageTransactionSize*NativeUSDPrice)
	if score > maxWhaleScore {
		return maxWhaleScore
	}
	return score
}

func WhaleLevel(score int) string {
	switch {
	case score >= 80:
		return "LEGENDARY WHALE"
	case score >= 60:
		return "MEGA WHALE"
	case score >= 40:
		return "WHALE"
	case score >= 20:
		return "DOLPHIN"
	default:
		return "FISH"
	}
}

func WhaleBadges(m entity.WhaleMetrics) []string {
	badges := []string{}
	if m.TotalValue >= 10_000_000 {
		badges = append(badges, "MEGA WHALE")
	}
	if m.TotalValue >= 1_000_000 {
		badges = append(badges, "WHALE")
	}
	if m.LargeTransactions >= 20 {
		badges = append(badges, "BIG SPENDER")
	}
	if m.StakingValue >= 100_000 {
		badges = append(badges, "STAKING MASTER")
	}
	if m.LendingValue >= 100_000 {
		badges = append(badges, "DEFI DEGEN")
	}
	if m.UniqueTokens >= 50 {
		badges = append(badges, "TOKEN COLLECTOR")
	}
	if m.NFTValue >= 100_000 {
		badges = append(badges, "NFT WHALE")
	}
	return badges
}

// IsStakingToken matches liquid staking derivatives such as stETH or rETH.
func IsStakingToken(symbol string) bool {
	s := strings.ToLower(symbol)
	for _, st := range stakingSymbols {
		if strings.Contains(s, st) {
			return true
		}
	}
	return false
}

// IsLendingToken matches Aave aTokens and Compound cTokens by their symbol prefix.
func IsLendingToken(symbol string) bool {
	return strings.HasPrefix(symbol, "a") || strings.HasPrefix(symbol, "c")
}
