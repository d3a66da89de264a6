package port

import (
	"context"

	"whale_analyzer/internal/domain/entity"
)

// WalletAnalysisService is the single entry point of the analysis core.
// AnalyzeWallet returns *entity.ValidationError, *entity.AcquisitionError or *entity.TimeoutError on failure.
type WalletAnalysisService interface {
	AnalyzeWallet(ctx context.Context, address string) (*entity.PortfolioSnapshot, error)
}

// DefiAnalysisService reports the protocol positions of a wallet on one chain.
// Errors follow WalletAnalysisService.
type DefiAnalysisService interface {
	AnalyzeDefi(ctx context.Context, address string, chainID uint64) (*entity.DefiAnalysis, error)
}

// SummaryService summarizes wallet data supplied by the caller. It falls back
// to the offline generator and only fails on invalid input.
type SummaryService interface {
	Summarize(ctx context.Context, snapshot *entity.PortfolioSnapshot) (entity.AIAnalysis, error)
}
