package scoring

import (
	"testing"

	"whale_analyzer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defiUser = "0x742CCF2e36AeBE0ad95A00c7cc1d8CB9aBBDBfE4"

func TestDetectDefiPositions(t *testing.T) {
	tokens := []entity.TokenBalance{
		{Symbol: "aUSDC", Name: "Aave USDC", ContractAddress: "0xBcCA60bB61934080951369a648Fb03DF4F96263C", ChainID: 1, Balance: 10_000, ValueUSD: 10_000},
		{Symbol: "variableDebtUSDT", ContractAddress: "0x531842cEbbdD378f8ee36D171d6cC9C4fcf475Ec", ChainID: 1, Balance: 4_000, ValueUSD: 4_000},
		{Symbol: "cDAI", ContractAddress: "0x5d3a536E4D6DbD6114cc1Ead35777bAB948E3643", ChainID: 1, Balance: 500, ValueUSD: 11},
		{Symbol: "cbETH", ContractAddress: "0xbe9895146f7af43049ca1c1ae358b0541ea49704", ChainID: 1, Balance: 1, ValueUSD: 3_000},
		{Symbol: "USDC", ContractAddress: "0xa0b8", ChainID: 1, Balance: 50, ValueUSD: 50},
		{Symbol: "aWETH", ContractAddress: "0xother", ChainID: 137, Balance: 1, ValueUSD: 3_000},
	}
	txs := []entity.Transaction{
		{Hash: "0x1", To: "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2", Value: 2, ChainID: 1},
		{Hash: "0x2", To: "0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9", Value: 1, ChainID: 1},
		{Hash: "0x3", To: "0xC36442b4a4522E871399CD717aBDD847Ab11FE88", Value: 0.5, ChainID: 1},
	}

	positions := DetectDefiPositions(defiUser, 1, tokens, txs)
	require.Len(t, positions, 5)

	assert.Equal(t, entity.ProtocolAave, positions[0].Protocol)
	assert.Equal(t, "USDC", positions[0].Asset.Symbol)
	assert.InDelta(t, 10_000.0, positions[0].SuppliedUSD, 1e-9)
	assert.Equal(t, "balance", positions[0].Source)

	assert.Equal(t, "USDT", positions[1].Asset.Symbol)
	assert.InDelta(t, 4_000.0, positions[1].BorrowedUSD, 1e-9)
	assert.Zero(t, positions[1].SuppliedUSD)

	assert.Equal(t, entity.ProtocolCompound, positions[2].Protocol)
	assert.Equal(t, "DAI", positions[2].Asset.Symbol)

	assert.Equal(t, entity.ProtocolAave, positions[3].Protocol, "first aave pool call")
	assert.Equal(t, "transaction", positions[3].Source)
	assert.InDelta(t, 2.0, positions[3].Supplied, 1e-9)
	assert.Equal(t, entity.ProtocolUniswapV3, positions[4].Protocol)
}

func TestDetectDefiPositions_TransactionWindow(t *testing.T) {
	txs := make([]entity.Transaction, DefiTransactionWindow+1)
	txs[DefiTransactionWindow] = entity.Transaction{To: "0xC36442b4a4522E871399CD717aBDD847Ab11FE88", Value: 1}
	assert.Empty(t, DetectDefiPositions(defiUser, 1, nil, txs))

	txs[0] = txs[DefiTransactionWindow]
	assert.Len(t, DetectDefiPositions(defiUser, 1, nil, txs), 1)
	assert.Empty(t, DetectDefiPositions(defiUser, 137, nil, txs), "contract table is per chain")
}

func TestAssessDefiPositions(t *testing.T) {
	tests := []struct {
		name     string
		supplied float64
		borrowed float64
		want     entity.RiskLevel
	}{
		{name: "no debt", supplied: 10_000, want: entity.RiskLow},
		{name: "well collateralized", supplied: 30_000, borrowed: 10_000, want: entity.RiskLow},
		{name: "medium", supplied: 20_000, borrowed: 10_000, want: entity.RiskMedium},
		{name: "high", supplied: 13_000, borrowed: 10_000, want: entity.RiskHigh},
		{name: "critical", supplied: 11_000, borrowed: 10_000, want: entity.RiskCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := []entity.DefiPosition{{Protocol: entity.ProtocolAave, SuppliedUSD: tt.supplied}}
			if tt.borrowed > 0 {
				positions = append(positions, entity.DefiPosition{Protocol: entity.ProtocolAave, BorrowedUSD: tt.borrowed})
			}
			risk := AssessDefiPositions(positions)
			assert.Equal(t, tt.want, risk.RiskLevel)
			assert.InDelta(t, tt.supplied, risk.TotalCollateral, 1e-9)
			assert.Len(t, risk.Positions, len(positions))
		})
	}
}

func TestDefiRecommendations(t *testing.T) {
	none := DefiRecommendations(nil, AssessDefiPositions(nil))
	assert.Equal(t, []string{
		"No borrowed positions detected. Risk is minimal.",
		"No active DeFi positions detected. Consider exploring DeFi opportunities.",
	}, none)

	positions := []entity.DefiPosition{
		{Protocol: entity.ProtocolAave, SuppliedUSD: 11_000},
		{Protocol: entity.ProtocolCompound, BorrowedUSD: 10_000},
		{Protocol: entity.ProtocolMakerDAO},
	}
	recs := DefiRecommendations(positions, AssessDefiPositions(positions))
	assert.Contains(t, recs, "CRITICAL: Immediate action required to avoid liquidation.")
	assert.Contains(t, recs, "Monitor Aave interest rates and consider rate switching if beneficial.")
	assert.Contains(t, recs, "Track Compound governance proposals that may affect your positions.")
	assert.Equal(t, "Consider consolidating positions to reduce gas costs and complexity.", recs[len(recs)-1])
	assert.Equal(t, []entity.DefiProtocol{entity.ProtocolAave, entity.ProtocolCompound, entity.ProtocolMakerDAO}, DefiProtocols(positions))
}
