package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
)

var chainPalette = []string{"#3B82F6", "#EF4444", "#10B981", "#F59E0B", "#8B5CF6", "#F97316", "#06B6D4", "#84CC16"}

// isDefiToken tags liquidity-pool positions.
func isDefiToken(symbol string) bool {
	return strings.Contains(symbol, "LP") || strings.Contains(symbol, "Pool")
}

// isStakedToken tags staking receipts such as stETH or "Staked AVAX".
func isStakedToken(symbol string) bool {
	return strings.Contains(symbol, "st") || strings.Contains(symbol, "Staked")
}

// BuildChainSnapshots folds tokens and transactions into one snapshot per
// chain in chainIDs. Totals are always recomputed from the tokens. The result
// is ordered by value descending, then chain id.
func BuildChainSnapshots(ctx context.Context, chainIDs []uint64, tokens []entity.TokenBalance, txs []entity.Transaction, meta port.ChainMetadataProvider) []entity.ChainSnapshot {
	byChain := make(map[uint64]*entity.ChainSnapshot, len(chainIDs))
	snapshots := make([]*entity.ChainSnapshot, 0, len(chainIDs))
	for _, id := range chainIDs {
		if _, dup := byChain[id]; dup {
			continue
		}
		s := &entity.ChainSnapshot{ChainID: id, ChainName: fmt.Sprintf("Chain %d", id)}
		if meta != nil {
			m, _ := meta.Get(ctx, id)
			s.ChainName = m.DisplayName
			s.NativeCurrency = m.NativeSymbol
			s.LogoURL = m.LogoURL
			s.ExplorerURL = m.BlockExplorerURL
		}
		byChain[id] = s
		snapshots = append(snapshots, s)
	}

	for _, t := range tokens {
		s, ok := byChain[t.ChainID]
		if !ok {
			continue
		}
		s.TotalValue += t.ValueUSD
		s.TokenCount++
		if isDefiToken(t.Symbol) {
			s.DefiValue += t.ValueUSD
		}
		if isStakedToken(t.Symbol) {
			s.StakingValue += t.ValueUSD
		}
	}
	for _, tx := range txs {
		if s, ok := byChain[tx.ChainID]; ok {
			s.TransactionCount++
		}
	}

	out := make([]entity.ChainSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		s.IsActive = s.TokenCount > 0 || s.TransactionCount > 0
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalValue != out[j].TotalValue {
			return out[i].TotalValue > out[j].TotalValue
		}
		return out[i].ChainID < out[j].ChainID
	})
	return out
}

// BuildCrossChainMetrics computes the dominant chain, the per-chain value
// distribution and the multi-chain score over the active chains.
func BuildCrossChainMetrics(chains []entity.ChainSnapshot) entity.CrossChainMetrics {
	metrics := entity.CrossChainMetrics{ChainDistribution: []entity.ChainDistribution{}}

	var active []entity.ChainSnapshot
	total := 0.0
	for _, c := range chains {
		if c.IsActive {
			active = append(active, c)
			total += c.TotalValue
		}
	}
	metrics.TotalChains = len(active)
	if len(active) == 0 {
		return metrics
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].TotalValue != active[j].TotalValue {
			return active[i].TotalValue > active[j].TotalValue
		}
		return active[i].ChainID < active[j].ChainID
	})
	metrics.DominantChain = active[0].ChainName
	metrics.DominantChainID = active[0].ChainID

	values := make([]float64, 0, len(active))
	for i, c := range active {
		pct := 0.0
		if total > 0 {
			pct = c.TotalValue / total * 100
		}
		metrics.ChainDistribution = append(metrics.ChainDistribution, entity.ChainDistribution{
			ChainID:    c.ChainID,
			ChainName:  c.ChainName,
			Percentage: pct,
			Value:      c.TotalValue,
			Color:      chainPalette[i%len(chainPalette)],
		})
		values = append(values, c.TotalValue)
	}

	metrics.MultiChainScore = multiChainScore(values)
	return metrics
}

// multiChainScore rewards spreading value over several chains: 20 points per
// active chain up to 100, scaled by 0.5 + 0.5 × evenness. One chain scores 0.
func multiChainScore(values []float64) int {
	n := len(values)
	if n <= 1 {
		return 0
	}
	base := math.Min(100, float64(n*20))
	return int(math.Round(base * (0.5 + 0.5*evenness(values))))
}

// evenness is the Shannon entropy of the value shares normalized to [0, 1].
func evenness(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 || len(values) < 2 {
		return 0
	}
	entropy := 0.0
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := v / total
		entropy -= p * math.Log(p)
	}
	return entropy / math.Log(float64(len(values)))
}
