package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/domain/scoring"
	"whale_analyzer/internal/pkg/metrics"
	"whale_analyzer/internal/pkg/utils"

	"github.com/google/uuid"
)

// summarizer runs the primary generator within its own timeout and falls back
// to the offline generator on any failure. A nil primary always falls back.
type summarizer struct {
	primary  port.SummaryGenerator
	fallback port.SummaryGenerator
	timeout  time.Duration
}

// run reports whether the fallback produced the analysis.
func (s summarizer) run(ctx context.Context, log port.Logger, snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) (entity.AIAnalysis, bool) {
	reason := "not_configured"
	if s.primary != nil {
		budget := s.timeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline) - assemblyHeadroom; remaining < budget {
				budget = remaining
			}
		}
		if budget > 0 {
			sctx, cancel := context.WithTimeout(ctx, budget)
			analysis, err := s.primary.GenerateAnalysis(sctx, snapshot, whale, risk)
			cancel()
			if err == nil {
				return analysis, false
			}
			reason = "error"
			if errors.Is(err, context.DeadlineExceeded) {
				reason = "timeout"
			}
			log.Warn("Summary generator failed, using fallback", "reason", reason, "error", err)
		} else {
			reason = "no_time_left"
		}
	}
	metrics.SummaryFallbacks.WithLabelValues(reason).Inc()

	if s.fallback != nil {
		if analysis, err := s.fallback.GenerateAnalysis(ctx, snapshot, whale, risk); err == nil {
			return analysis, true
		}
	}
	return minimalAnalysis(snapshot, whale), true
}

func minimalAnalysis(snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics) entity.AIAnalysis {
	return entity.AIAnalysis{
		Summary: fmt.Sprintf("Portfolio worth %s across %d chains with %d tokens. Whale score %d/100 (%s).",
			utils.FormatUSD(snapshot.TotalValueUSD), len(snapshot.Chains), len(snapshot.TokenBalances), whale.Score, whale.Level),
		KeyFindings:     []string{},
		RiskFactors:     []string{},
		Recommendations: []string{},
		Confidence:      0.5,
		Generator:       entity.GeneratorFallback,
	}
}

type summaryServiceImpl struct {
	summarizer summarizer
	logger     port.Logger
}

// NewSummaryService summarizes caller-supplied wallet data with the same
// generators and fallback rules as a full analysis.
func NewSummaryService(primary, fallback port.SummaryGenerator, timeout time.Duration, logger port.Logger) port.SummaryService {
	if timeout <= 0 {
		timeout = DefaultAnalysisOptions().SummaryTimeout
	}
	return &summaryServiceImpl{
		summarizer: summarizer{primary: primary, fallback: fallback, timeout: timeout},
		logger:     logger,
	}
}

// Summarize scores the posted data where the caller left the scores out and
// returns the generated analysis. The snapshot is not modified.
func (s *summaryServiceImpl) Summarize(ctx context.Context, posted *entity.PortfolioSnapshot) (entity.AIAnalysis, error) {
	if posted == nil {
		return entity.AIAnalysis{}, &entity.ValidationError{Field: "body", Reason: "wallet data is required"}
	}
	address := strings.TrimSpace(posted.Address)
	if !utils.IsValidEVMAddress(address) {
		return entity.AIAnalysis{}, &entity.ValidationError{Field: "address", Value: address, Reason: "expected a 0x-prefixed 20-byte hex address"}
	}

	snapshot := *posted
	snapshot.Address = utils.ChecksumAddress(address)
	snapshot.TotalValueUSD = resolvePortfolioTotal(snapshot.TotalValueUSD, snapshot.TokenBalances)

	whale := scoring.CalculateWhaleMetrics(snapshot.TokenBalances, snapshot.Transactions)
	snapshot.WhaleScore = whale.Score
	snapshot.WhaleMetrics = whale
	risk := snapshot.LiquidationRisk
	if risk.RiskLevel == "" {
		risk = scoring.EstimateLiquidationRisk(snapshot.Chains, snapshot.TotalValueUSD)
	}

	requestID, ok := utils.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	log := s.logger.With("requestId", requestID, "address", snapshot.Address)

	analysis, usedFallback := s.summarizer.run(ctx, log, &snapshot, whale, risk)
	log.Info("Wallet data summarized", "generator", analysis.Generator, "fallback", usedFallback)
	return analysis, nil
}
