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

// assemblyHeadroom is reserved at the end of the deadline for building the response.
const assemblyHeadroom = 500 * time.Millisecond

// AnalysisOptions bound one analysis run.
type AnalysisOptions struct {
	Chains           []uint64
	Deadline         time.Duration
	SummaryTimeout   time.Duration
	TransactionLimit int
}

// DefaultAnalysisOptions keeps the analysis under a 30s host request limit.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		Chains:           []uint64{1, 137, 56, 43114, 42161, 10, 8453, 250, 25},
		Deadline:         25 * time.Second,
		SummaryTimeout:   10 * time.Second,
		TransactionLimit: 100,
	}
}

type walletAnalysisServiceImpl struct {
	aggregator port.Aggregator
	chainMeta  port.ChainMetadataProvider
	summarizer summarizer
	opts       AnalysisOptions
	logger     port.Logger
	now        func() time.Time
}

// NewWalletAnalysisService creates the orchestrator. summary may be nil, in
// which case every analysis uses the fallback generator.
func NewWalletAnalysisService(
	aggregator port.Aggregator,
	chainMeta port.ChainMetadataProvider,
	summary port.SummaryGenerator,
	fallback port.SummaryGenerator,
	opts AnalysisOptions,
	logger port.Logger,
) port.WalletAnalysisService {
	defaults := DefaultAnalysisOptions()
	if len(opts.Chains) == 0 {
		opts.Chains = defaults.Chains
	}
	if opts.Deadline <= 0 {
		opts.Deadline = defaults.Deadline
	}
	if opts.SummaryTimeout <= 0 {
		opts.SummaryTimeout = defaults.SummaryTimeout
	}
	if opts.TransactionLimit <= 0 {
		opts.TransactionLimit = defaults.TransactionLimit
	}
	return &walletAnalysisServiceImpl{
		aggregator: aggregator,
		chainMeta:  chainMeta,
		summarizer: summarizer{primary: summary, fallback: fallback, timeout: opts.SummaryTimeout},
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// acquisition is what the parallel acquire stage collected.
type acquisition struct {
	tokens       []entity.TokenBalance
	tokenOut     []port.ChainOutcome[[]entity.TokenBalance]
	txs          []entity.Transaction
	txOut        []port.ChainOutcome[[]entity.Transaction]
	reported     float64
	portfolioOut []port.ChainOutcome[float64]
}

// AnalyzeWallet validates the address, acquires every capability across the
// configured chains, scores and summarizes the result, all under the outer deadline.
func (s *walletAnalysisServiceImpl) AnalyzeWallet(ctx context.Context, address string) (snapshot *entity.PortfolioSnapshot, err error) {
	start := s.now()
	defer func() {
		metrics.WalletAnalyses.WithLabelValues(outcomeLabel(err)).Inc()
		metrics.WalletAnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	address = strings.TrimSpace(address)
	if !utils.IsValidEVMAddress(address) {
		return nil, &entity.ValidationError{Field: "address", Value: address, Reason: "expected a 0x-prefixed 20-byte hex address"}
	}
	address = utils.ChecksumAddress(address)

	requestID, ok := utils.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	log := s.logger.With("requestId", requestID, "address", address)
	log.Info("Starting wallet analysis", "chains", len(s.opts.Chains))

	ctx, cancel := context.WithTimeout(ctx, s.opts.Deadline)
	defer cancel()

	acq := s.acquire(ctx, address)
	if ctx.Err() != nil {
		log.Warn("Deadline reached during acquisition")
		return nil, s.interrupted(ctx, "acquisition")
	}

	classified := classifyOutcomes(acq)
	if len(classified.chains) == 0 {
		log.Error("No usable data from any provider", "failures", len(classified.failures))
		return nil, &entity.AcquisitionError{Address: address, Failures: classified.failures}
	}

	chains := BuildChainSnapshots(ctx, classified.chains, acq.tokens, acq.txs, s.chainMeta)
	whale := scoring.CalculateWhaleMetrics(acq.tokens, acq.txs)
	total := resolvePortfolioTotal(acq.reported, acq.tokens)
	risk := scoring.EstimateLiquidationRisk(chains, total)

	snapshot = &entity.PortfolioSnapshot{
		RequestID:       requestID,
		Address:         address,
		TotalValueUSD:   total,
		TokenBalances:   nonNil(acq.tokens),
		Transactions:    nonNil(acq.txs),
		Chains:          chains,
		CrossChain:      BuildCrossChainMetrics(chains),
		WhaleScore:      whale.Score,
		WhaleMetrics:    whale,
		LiquidationRisk: risk,
		DataSources:     classified.sources,
		ChainErrors:     classified.failures,
	}

	analysis, usedFallback := s.summarizer.run(ctx, log, snapshot, whale, risk)
	if ctx.Err() != nil {
		log.Warn("Deadline reached during summary")
		return nil, s.interrupted(ctx, "summary")
	}

	snapshot.Analysis = &analysis
	snapshot.AISummary = analysis.Summary
	snapshot.SummaryFallback = usedFallback
	snapshot.Degraded = usedFallback || classified.degraded
	snapshot.GeneratedAt = s.now().UTC()

	log.Info("Wallet analysis completed",
		"totalValue", snapshot.TotalValueUSD,
		"tokens", len(snapshot.TokenBalances),
		"chains", len(snapshot.Chains),
		"whaleScore", snapshot.WhaleScore,
		"degraded", snapshot.Degraded,
		"duration", time.Since(start))
	return snapshot, nil
}

// acquire runs the three capabilities in parallel. Each returns by the deadline.
func (s *walletAnalysisServiceImpl) acquire(ctx context.Context, address string) acquisition {
	var acq acquisition
	var g errgroup.Group
	g.Go(func() error {
		acq.tokens, acq.tokenOut = s.aggregator.TokenBalances(ctx, address, s.opts.Chains)
		return nil
	})
	g.Go(func() error {
		acq.txs, acq.txOut = s.aggregator.Transactions(ctx, address, s.opts.Chains, s.opts.TransactionLimit)
		return nil
	})
	g.Go(func() error {
		// token totals are applied after all three finish
		acq.reported, acq.portfolioOut = s.aggregator.PortfolioValue(ctx, address, s.opts.Chains, nil)
		return nil
	})
	_ = g.Wait()
	return acq
}

// interrupted maps an ended context to the caller-facing error.
func (s *walletAnalysisServiceImpl) interrupted(ctx context.Context, stage string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &entity.TimeoutError{Stage: stage, Deadline: s.opts.Deadline}
	}
	return &entity.AcquisitionError{Err: fmt.Errorf("analysis interrupted during %s: %w", stage, ctx.Err())}
}

// classifiedOutcomes is the per-chain verdict of the acquire stage.
type classifiedOutcomes struct {
	chains   []uint64 // chains that served at least one capability
	sources  []entity.DataSource
	failures []entity.ChainError
	// degraded is set by fallback providers and by real failures. Chains that
	// simply have no provider do not count.
	degraded bool
}

func classifyOutcomes(acq acquisition) classifiedOutcomes {
	var (
		out       = classifiedOutcomes{sources: []entity.DataSource{}}
		order     []uint64
		succeeded = make(map[uint64]bool)
	)
	note := func(chainID uint64, capability entity.Capability, provider entity.ProviderID, prior int, err error) {
		if _, seen := succeeded[chainID]; !seen {
			succeeded[chainID] = false
			order = append(order, chainID)
		}
		if err == nil {
			succeeded[chainID] = true
			out.sources = append(out.sources, entity.DataSource{ChainID: chainID, Capability: capability, Provider: provider, Fallback: prior > 0})
			out.degraded = out.degraded || prior > 0
			return
		}
		ce := entity.ChainError{ChainID: chainID, Capability: capability, Message: err.Error()}
		var aggErr *entity.AggregateProviderError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			ce.ProviderErrors = aggErr.Errors
		}
		out.failures = append(out.failures, ce)
		out.degraded = out.degraded || !isNoProvider(err)
	}

	for _, o := range acq.tokenOut {
		note(o.ChainID, entity.CapabilityBalances, o.Result.ProviderUsed, len(o.Result.PriorErrors), o.Err)
	}
	for _, o := range acq.txOut {
		note(o.ChainID, entity.CapabilityTransactions, o.Result.ProviderUsed, len(o.Result.PriorErrors), o.Err)
	}
	for _, o := range acq.portfolioOut {
		note(o.ChainID, entity.CapabilityPortfolioValue, o.Result.ProviderUsed, len(o.Result.PriorErrors), o.Err)
	}

	for _, id := range order {
		if succeeded[id] {
			out.chains = append(out.chains, id)
		}
	}
	return out
}

func outcomeLabel(err error) string {
	var (
		validationErr  *entity.ValidationError
		timeoutErr     *entity.TimeoutError
		acquisitionErr *entity.AcquisitionError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &validationErr):
		return "invalid"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &acquisitionErr):
		return "acquisition_failed"
	default:
		return "error"
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
