package port

import (
	"context"

	"whale_analyzer/internal/domain/entity"
)

// SummaryGenerator produces the natural-language analysis of a snapshot.
type SummaryGenerator interface {
	GenerateAnalysis(ctx context.Context, snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) (entity.AIAnalysis, error)
}
