package summary

import (
	"context"
	"fmt"
	"math"
	"strings"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/pkg/utils"
)

const (
	maxKeyFindings     = 8
	maxRiskFactors     = 6
	maxRecommendations = 8
)

type fallbackGenerator struct{}

// NewFallbackGenerator returns the offline generator. It is deterministic and
// never returns an error.
func NewFallbackGenerator() port.SummaryGenerator {
	return fallbackGenerator{}
}

func (fallbackGenerator) GenerateAnalysis(_ context.Context, snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) (entity.AIAnalysis, error) {
	if snapshot == nil {
		snapshot = &entity.PortfolioSnapshot{}
	}
	findings := []string{}
	risks := []string{}
	recs := []string{}

	switch {
	case whale.Score >= 80:
		findings = append(findings,
			fmt.Sprintf("Legendary whale status with exceptional portfolio size (%s)", utils.FormatUSD(whale.TotalValue)),
			"Institutional-level trading patterns with significant market influence")
	case whale.Score >= 60:
		findings = append(findings,
			fmt.Sprintf("Significant whale activity with large holdings (%s)", utils.FormatUSD(whale.TotalValue)),
			"Strong market position with substantial trading volume")
	case whale.Score >= 40:
		findings = append(findings,
			"Moderate whale characteristics with growing portfolio",
			"Active trading strategy with regular large transactions")
	case whale.Score >= 20:
		findings = append(findings, "Active trader with consistent transaction patterns")
	default:
		findings = append(findings, "Standard retail wallet with basic trading activity")
	}

	switch {
	case whale.UniqueTokens >= 50:
		findings = append(findings, fmt.Sprintf("Extremely diversified portfolio across %d different tokens", whale.UniqueTokens))
		recs = append(recs, "Consider portfolio optimization to reduce complexity")
	case whale.UniqueTokens >= 30:
		findings = append(findings, "Highly diversified portfolio with good risk distribution")
	case whale.UniqueTokens >= 15:
		findings = append(findings, "Well-diversified holdings across multiple sectors")
	case whale.UniqueTokens >= 5:
		findings = append(findings, "Moderate diversification with room for improvement")
		recs = append(recs, "Consider diversifying into more token categories")
	default:
		findings = append(findings, "Limited diversification, holdings are concentrated")
		risks = append(risks, "High concentration risk due to limited token variety")
		recs = append(recs, "Diversify holdings to reduce concentration risk")
	}

	switch {
	case whale.LargeTransactions >= 10:
		findings = append(findings, "Frequent large transactions indicate sophisticated trading behavior")
	case whale.LargeTransactions >= 5:
		findings = append(findings, "Regular large transactions showing active management")
	case whale.LargeTransactions >= 1:
		findings = append(findings, "Occasional large transactions detected")
	}

	switch {
	case whale.StakingValue > 100_000:
		findings = append(findings,
			fmt.Sprintf("Major staking participation with %s staked", utils.FormatUSD(whale.StakingValue)),
			"Strong commitment to a long-term holding strategy")
	case whale.StakingValue > 10_000:
		findings = append(findings, fmt.Sprintf("Active staking with %s earning rewards", utils.FormatUSD(whale.StakingValue)))
	case whale.StakingValue > 0:
		findings = append(findings, "Moderate staking activity detected")
		recs = append(recs, "Consider increasing staking exposure for passive income")
	}

	switch {
	case whale.LendingValue > 50_000:
		findings = append(findings, fmt.Sprintf("Significant DeFi lending activity with %s supplied", utils.FormatUSD(whale.LendingValue)))
	case whale.LendingValue > 10_000:
		findings = append(findings, "Active DeFi lending participation")
	case whale.LendingValue > 0:
		findings = append(findings, "Some DeFi lending exposure detected")
	}

	switch {
	case risk.RiskLevel == entity.RiskCritical:
		risks = append(risks, "CRITICAL liquidation risk, positions may be liquidated soon", "Health factor below safe levels")
		recs = append(recs, "URGENT: add collateral or repay debt immediately", "Consider closing some leveraged positions")
	case risk.RiskLevel == entity.RiskHigh:
		risks = append(risks, "High liquidation risk in current market conditions", "Vulnerable to market volatility")
		recs = append(recs, "Monitor positions closely and prepare emergency funds", "Consider reducing leverage ratios")
	case risk.RiskLevel == entity.RiskMedium:
		risks = append(risks, "Moderate DeFi exposure with manageable risk")
		recs = append(recs, "Keep monitoring health factors regularly")
	case risk.TotalBorrowed > 0:
		findings = append(findings, "Conservative DeFi strategy with low liquidation risk")
	}

	if snapshot.TotalValueUSD > 1_000_000 {
		risks = append(risks, "Large portfolio value exposed to market volatility")
		recs = append(recs, "Consider implementing a systematic profit-taking strategy")
	}
	if whale.UniqueTokens < 5 {
		risks = append(risks, "Concentration risk due to limited diversification")
	}

	switch {
	case whale.Score >= 60:
		recs = append(recs,
			"Consider implementing advanced risk management strategies",
			"Explore institutional-grade DeFi protocols",
			"Monitor market impact of large transactions")
	case whale.Score >= 30:
		recs = append(recs,
			"Continue building a diversified portfolio",
			"Explore additional DeFi yield opportunities")
	default:
		recs = append(recs,
			"Focus on dollar-cost averaging and gradual accumulation",
			"Start with low-risk DeFi protocols to learn")
	}
	recs = append(recs,
		"Set up price alerts for major holdings",
		"Keep updated on regulatory developments",
		"Never invest more than you can afford to lose")

	return entity.AIAnalysis{
		Summary:         fallbackSummary(snapshot, whale, risk),
		KeyFindings:     limit(findings, maxKeyFindings),
		RiskFactors:     limit(risks, maxRiskFactors),
		Recommendations: limit(recs, maxRecommendations),
		Confidence:      fallbackConfidence(snapshot, whale, risk),
		Generator:       entity.GeneratorFallback,
	}, nil
}

// fallbackConfidence starts at 0.7 and grows with the amount of data behind the analysis.
func fallbackConfidence(snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) float64 {
	c := 0.7
	if len(snapshot.TokenBalances) > 10 {
		c += 0.1
	}
	if len(snapshot.Transactions) > 50 {
		c += 0.1
	}
	if len(risk.Positions) > 0 {
		c += 0.05
	}
	if whale.StakingValue > 0 || whale.LendingValue > 0 {
		c += 0.05
	}
	return math.Min(c, 1.0)
}

func fallbackSummary(snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) string {
	var b strings.Builder
	level := risk.RiskLevel
	if level == "" {
		level = entity.RiskLow
	}
	fmt.Fprintf(&b, "This %s wallet manages a %s portfolio across %d tokens with %s DeFi risk exposure. ",
		whaleTier(whale.Score), utils.FormatUSD(snapshot.TotalValueUSD), len(snapshot.TokenBalances), strings.ToLower(string(level)))

	if whale.StakingValue > 1000 {
		fmt.Fprintf(&b, "Significant staking activity (%s) demonstrates a long-term investment strategy. ", utils.FormatUSD(whale.StakingValue))
	}
	if whale.LargeTransactions > 0 {
		fmt.Fprintf(&b, "%d large transactions indicate active trading behavior. ", whale.LargeTransactions)
	}
	if risk.TotalBorrowed > 1000 {
		fmt.Fprintf(&b, "Active DeFi participation with %s borrowed and a %.2f health factor. ", utils.FormatUSD(risk.TotalBorrowed), risk.HealthFactor)
	}

	switch {
	case level == entity.RiskCritical || level == entity.RiskHigh:
		b.WriteString("Immediate risk management required to prevent liquidation losses.")
	case whale.Score >= 60:
		b.WriteString("Consider implementing advanced portfolio management and risk hedging strategies.")
	case whale.Score >= 30:
		b.WriteString("Continue building diversified positions while exploring additional DeFi opportunities.")
	default:
		b.WriteString("Focus on gradual accumulation and learning DeFi fundamentals.")
	}
	return b.String()
}

func whaleTier(score int) string {
	switch {
	case score >= 80:
		return "legendary whale"
	case score >= 60:
		return "major whale"
	case score >= 40:
		return "moderate whale"
	case score >= 20:
		return "active trader"
	default:
		return "standard retail"
	}
}

func limit(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, s := range items {
		if len(out) == n {
			break
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
