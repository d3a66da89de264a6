package scoring

import "whale_analyzer/internal/domain/entity"

const (
	estimatedBorrowShare     = 0.3
	estimatedCollateralShare = 0.8
)

var riskScores = map[entity.RiskLevel]int{
	entity.RiskLow:      10,
	entity.RiskMedium:   50,
	entity.RiskHigh:     80,
	entity.RiskCritical: 95,
}

// AssessLiquidation classifies a collateral/borrowed pair. Nothing borrowed is
// always LOW with a zero health factor.
func AssessLiquidation(collateral, borrowed float64) entity.LiquidationRisk {
	risk := entity.LiquidationRisk{
		TotalBorrowed:   borrowed,
		TotalCollateral: collateral,
		Positions:       []entity.LendingPosition{},
	}
	if borrowed <= 0 {
		risk.TotalBorrowed = 0
		risk.RiskLevel = entity.RiskLow
		risk.RiskScore = riskScores[entity.RiskLow]
		return risk
	}

	ratio := collateral / borrowed
	risk.HealthFactor = ratio
	switch {
	case ratio > 2.5:
		risk.RiskLevel = entity.RiskLow
	case ratio > 1.5:
		risk.RiskLevel = entity.RiskMedium
	case ratio > 1.2:
		risk.RiskLevel = entity.RiskHigh
	default:
		risk.RiskLevel = entity.RiskCritical
	}
	risk.RiskScore = riskScores[risk.RiskLevel]
	return risk
}

// EstimateLiquidationRisk derives a rough borrow position from the chain
// breakdown: a wallet with DeFi-tagged value on any chain is assumed to borrow
// 30% of its total against 80% as collateral.
func EstimateLiquidationRisk(chains []entity.ChainSnapshot, totalValue float64) entity.LiquidationRisk {
	hasDefi := false
	for _, c := range chains {
		if c.DefiValue > 0 {
			hasDefi = true
			break
		}
	}

	collateral := totalValue * estimatedCollateralShare
	if !hasDefi || totalValue <= 0 {
		return AssessLiquidation(collateral, 0)
	}

	borrowed := totalValue * estimatedBorrowShare
	risk := AssessLiquidation(collateral, borrowed)
	risk.Positions = append(risk.Positions, entity.LendingPosition{
		Protocol:     "estimated",
		Asset:        "portfolio",
		Supplied:     collateral,
		Borrowed:     borrowed,
		HealthFactor: risk.HealthFactor,
	})
	return risk
}
