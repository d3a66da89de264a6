package service

import (
	"context"
	"testing"
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/app/provider"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefiService(deadline time.Duration, providers ...port.DataProvider) port.DefiAnalysisService {
	log := logger.NewNop()
	reg := provider.NewProviderRegistry(log, providers...)
	return NewDefiAnalysisService(NewAggregator(reg, 4, log), deadline, log)
}

func TestAnalyzeDefi_DetectsPositionsAndRisk(t *testing.T) {
	p := &fakeProvider{
		id: entity.ProviderCovalent, priority: 1, chains: chainSet(1),
		tokens: map[uint64][]entity.TokenBalance{1: {
			{Symbol: "aUSDC", ContractAddress: "0xBcCA60bB61934080951369a648Fb03DF4F96263C", ChainID: 1, Balance: 13_000, ValueUSD: 13_000},
			{Symbol: "variableDebtUSDC", ContractAddress: "0x72E95b8931767C79bA4EeE721354d6E99a61D004", ChainID: 1, Balance: 10_000, ValueUSD: 10_000},
			{Symbol: "LINK", ContractAddress: "0x514910771AF9Ca656af840dff83E8264EcF986CA", ChainID: 1, Balance: 10, ValueUSD: 150},
		}},
		txs: map[uint64][]entity.Transaction{1: {
			{Hash: "0x1", To: "0xC36442b4a4522E871399CD717aBDD847Ab11FE88", Value: 1, ChainID: 1},
		}},
	}
	svc := newDefiService(5*time.Second, p)

	result, err := svc.AnalyzeDefi(context.Background(), walletAddress, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(DefaultDefiChainID), result.ChainID)
	require.Len(t, result.Positions, 3)
	assert.InDelta(t, 13_000.0, result.TotalSuppliedUSD, 1e-9)
	assert.InDelta(t, 10_000.0, result.TotalBorrowedUSD, 1e-9)
	assert.InDelta(t, 3_000.0, result.NetWorthUSD, 1e-9)
	assert.Equal(t, entity.RiskHigh, result.LiquidationRisk.RiskLevel)
	assert.InDelta(t, 1.3, result.LiquidationRisk.HealthFactor, 1e-9)
	assert.Equal(t, []entity.DefiProtocol{entity.ProtocolAave, entity.ProtocolUniswapV3}, result.Protocols)
	assert.Contains(t, result.Recommendations, "Add more collateral or repay debt to avoid liquidation.")
	assert.NotEmpty(t, result.RequestID)
	assert.Len(t, result.DataSources, 2)
}

func TestAnalyzeDefi_NoPositions(t *testing.T) {
	p := &fakeProvider{id: entity.ProviderMoralis, priority: 2, chains: chainSet(137)}
	svc := newDefiService(5*time.Second, p)

	result, err := svc.AnalyzeDefi(context.Background(), walletAddress, 137)
	require.NoError(t, err)
	assert.Empty(t, result.Positions)
	assert.Equal(t, entity.RiskLow, result.LiquidationRisk.RiskLevel)
	assert.Equal(t, "No active DeFi positions detected. Consider exploring DeFi opportunities.",
		result.Recommendations[len(result.Recommendations)-1])
}

func TestAnalyzeDefi_Errors(t *testing.T) {
	t.Run("invalid address", func(t *testing.T) {
		svc := newDefiService(time.Second)
		_, err := svc.AnalyzeDefi(context.Background(), "0x12", 1)
		var validationErr *entity.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("every provider fails", func(t *testing.T) {
		p := &fakeProvider{id: entity.ProviderCovalent, priority: 1, chains: chainSet(1), failChains: chainSet(1)}
		svc := newDefiService(time.Second, p)
		_, err := svc.AnalyzeDefi(context.Background(), walletAddress, 1)
		var acqErr *entity.AcquisitionError
		require.ErrorAs(t, err, &acqErr)
		assert.Len(t, acqErr.Failures, 2)
	})

	t.Run("deadline", func(t *testing.T) {
		p := &fakeProvider{id: entity.ProviderCovalent, priority: 1, chains: chainSet(1), block: true}
		svc := newDefiService(50*time.Millisecond, p)
		_, err := svc.AnalyzeDefi(context.Background(), walletAddress, 1)
		var timeoutErr *entity.TimeoutError
		assert.ErrorAs(t, err, &timeoutErr)
	})
}
