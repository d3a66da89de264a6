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
	"golang.org/x/sync/errgroup"
)

// DefaultDefiChainID is analyzed when the caller names no chain.
const DefaultDefiChainID = 1

type defiAnalysisServiceImpl struct {
	aggregator port.Aggregator
	deadline   time.Duration
	logger     port.Logger
	now        func() time.Time
}

// NewDefiAnalysisService detects protocol positions from the balances and
// recent transactions the aggregator serves for a single chain.
func NewDefiAnalysisService(aggregator port.Aggregator, deadline time.Duration, logger port.Logger) port.DefiAnalysisService {
	if deadline <= 0 {
		deadline = DefaultAnalysisOptions().Deadline
	}
	return &defiAnalysisServiceImpl{
		aggregator: aggregator,
		deadline:   deadline,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *defiAnalysisServiceImpl) AnalyzeDefi(ctx context.Context, address string, chainID uint64) (result *entity.DefiAnalysis, err error) {
	defer func() {
		metrics.DefiAnalyses.WithLabelValues(outcomeLabel(err)).Inc()
	}()

	address = strings.TrimSpace(address)
	if !utils.IsValidEVMAddress(address) {
		return nil, &entity.ValidationError{Field: "address", Value: address, Reason: "expected a 0x-prefixed 20-byte hex address"}
	}
	address = utils.ChecksumAddress(address)
	if chainID == 0 {
		chainID = DefaultDefiChainID
	}

	requestID, ok := utils.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	log := s.logger.With("requestId", requestID, "address", address, "chainId", chainID)

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	chains := []uint64{chainID}
	var acq acquisition
	var g errgroup.Group
	g.Go(func() error {
		acq.tokens, acq.tokenOut = s.aggregator.TokenBalances(ctx, address, chains)
		return nil
	})
	g.Go(func() error {
		acq.txs, acq.txOut = s.aggregator.Transactions(ctx, address, chains, scoring.DefiTransactionWindow)
		return nil
	})
	_ = g.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Warn("Deadline reached during DeFi acquisition")
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, &entity.TimeoutError{Stage: "defi acquisition", Deadline: s.deadline}
		}
		return nil, &entity.AcquisitionError{Address: address, Err: fmt.Errorf("defi analysis interrupted: %w", ctxErr)}
	}

	classified := classifyOutcomes(acq)
	if len(classified.chains) == 0 {
		log.Error("No usable data for DeFi analysis", "failures", len(classified.failures))
		return nil, &entity.AcquisitionError{Address: address, Failures: classified.failures}
	}

	positions := scoring.DetectDefiPositions(address, chainID, acq.tokens, acq.txs)
	risk := scoring.AssessDefiPositions(positions)

	result = &entity.DefiAnalysis{
		Address:          address,
		ChainID:          chainID,
		Positions:        positions,
		TotalSuppliedUSD: risk.TotalCollateral,
		TotalBorrowedUSD: risk.TotalBorrowed,
		NetWorthUSD:      risk.TotalCollateral - risk.TotalBorrowed,
		LiquidationRisk:  risk,
		Protocols:        scoring.DefiProtocols(positions),
		Recommendations:  scoring.DefiRecommendations(positions, risk),
		DataSources:      classified.sources,
		ChainErrors:      classified.failures,
		RequestID:        requestID,
		GeneratedAt:      s.now().UTC(),
	}

	log.Info("DeFi analysis completed",
		"positions", len(positions),
		"protocols", len(result.Protocols),
		"riskLevel", risk.RiskLevel)
	return result, nil
}
