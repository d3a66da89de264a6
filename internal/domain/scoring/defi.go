package scoring

import (
	"strings"

	"whale_analyzer/internal/domain/entity"
)

// DefiTransactionWindow is how many of the most recent transactions are
// scanned for protocol contract calls.
const DefiTransactionWindow = 20

const wethAddress = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"

// protocolContracts maps lower-cased contract addresses to their protocol, per chain.
var protocolContracts = map[uint64]map[string]entity.DefiProtocol{
	1: {
		"0x87870bca3f3fd6335c3f4ce8392d69350b4fa4e2": entity.ProtocolAave, // v3 pool
		"0x7b4eb56e7cd4b454ba8ff71e4518426369a138a3": entity.ProtocolAave, // v3 pool data provider
		"0x7d2768de32b0b80b7a3454c06bdac94a69ddc7a9": entity.ProtocolAave, // v2 lending pool
		"0xc3d688b66703497daa19211eedff47f25384cdc3": entity.ProtocolCompound,
		"0xa17581a9e3356d9a858b789d68b4d866e593ae94": entity.ProtocolCompound,
		"0x39aa39c021dfbae8fac545936693ac917d5e7563": entity.ProtocolCompound, // cUSDC
		"0x4ddc2d193948926d02f9b1fe9e1daa0718270ed5": entity.ProtocolCompound, // cETH
		"0x5d3a536e4d6dbd6114cc1ead35777bab948e3643": entity.ProtocolCompound, // cDAI
		"0x9759a6ac90977b93b58547b4a71c78317f391a28": entity.ProtocolMakerDAO, // DaiJoin
		"0x5ef30b9986345249bc32d8928b7ee64de9435e39": entity.ProtocolMakerDAO, // CDP manager
		"0xc36442b4a4522e871399cd717abdd847ab11fe88": entity.ProtocolUniswapV3,
	},
}

var riskRecommendations = map[entity.RiskLevel][]string{
	entity.RiskLow: {"Good collateralization ratio. Monitor market conditions."},
	entity.RiskMedium: {
		"Consider increasing collateral or reducing debt.",
		"Monitor price movements of collateral assets.",
	},
	entity.RiskHigh: {
		"HIGH RISK: Consider immediate action to improve health factor.",
		"Add more collateral or repay debt to avoid liquidation.",
		"Monitor positions closely for price volatility.",
	},
	entity.RiskCritical: {
		"CRITICAL: Immediate action required to avoid liquidation.",
		"Repay debt or add collateral immediately.",
		"Consider closing risky positions.",
	},
}

// DetectDefiPositions finds protocol positions from receipt tokens held
// (aTokens, cTokens, Aave debt tokens) and from recent calls to known protocol
// contracts. txs are expected newest first. Positions are deduplicated by
// protocol and asset, first detection wins.
func DetectDefiPositions(address string, chainID uint64, tokens []entity.TokenBalance, txs []entity.Transaction) []entity.DefiPosition {
	positions := make([]entity.DefiPosition, 0)
	seen := make(map[string]bool)
	add := func(p entity.DefiPosition) {
		key := string(p.Protocol) + "-" + p.Asset.Address
		if seen[key] {
			return
		}
		seen[key] = true
		positions = append(positions, p)
	}

	for _, t := range tokens {
		if t.ChainID != chainID || t.ContractAddress == "" {
			continue
		}
		if p, ok := positionFromToken(address, t); ok {
			add(p)
		}
	}

	contracts := protocolContracts[chainID]
	for i, tx := range txs {
		if i == DefiTransactionWindow {
			break
		}
		to := strings.ToLower(tx.To)
		protocol, ok := contracts[to]
		if !ok {
			continue
		}
		add(entity.DefiPosition{
			ID:       address + "-" + to + "-detected",
			Protocol: protocol,
			User:     address,
			ChainID:  chainID,
			Asset:    entity.DefiAsset{Symbol: "ETH", Name: "Ethereum", Address: wethAddress, Decimals: 18},
			Supplied: tx.Value,
			Source:   "transaction",
		})
	}
	return positions
}

func positionFromToken(address string, t entity.TokenBalance) (entity.DefiPosition, bool) {
	contract := strings.ToLower(t.ContractAddress)
	p := entity.DefiPosition{
		User:    address,
		ChainID: t.ChainID,
		Asset:   entity.DefiAsset{Name: t.Name, Address: contract, Decimals: 18},
		Source:  "balance",
	}

	switch sym := t.Symbol; {
	case IsStakingToken(sym):
		return p, false
	case strings.HasPrefix(sym, "variableDebt"), strings.HasPrefix(sym, "stableDebt"):
		p.Protocol = entity.ProtocolAave
		p.Asset.Symbol = strings.TrimPrefix(strings.TrimPrefix(sym, "variableDebt"), "stableDebt")
		p.Borrowed, p.BorrowedUSD = t.Balance, t.ValueUSD
	case len(sym) > 1 && sym[0] == 'a':
		p.Protocol = entity.ProtocolAave
		p.Asset.Symbol = sym[1:]
		p.Supplied, p.SuppliedUSD = t.Balance, t.ValueUSD
	case len(sym) > 1 && sym[0] == 'c':
		p.Protocol = entity.ProtocolCompound
		p.Asset.Symbol = sym[1:]
		p.Supplied, p.SuppliedUSD = t.Balance, t.ValueUSD
	default:
		return p, false
	}
	if p.Asset.Name == "" {
		p.Asset.Name = t.Symbol
	}
	p.ID = address + "-" + contract + "-" + string(p.Protocol)
	return p, true
}

// AssessDefiPositions tiers the detected supplied and borrowed USD totals.
func AssessDefiPositions(positions []entity.DefiPosition) entity.LiquidationRisk {
	var supplied, borrowed float64
	for _, p := range positions {
		supplied += p.SuppliedUSD
		borrowed += p.BorrowedUSD
	}
	risk := AssessLiquidation(supplied, borrowed)
	for _, p := range positions {
		risk.Positions = append(risk.Positions, entity.LendingPosition{
			Protocol:     string(p.Protocol),
			Asset:        p.Asset.Symbol,
			Supplied:     p.SuppliedUSD,
			Borrowed:     p.BorrowedUSD,
			HealthFactor: risk.HealthFactor,
		})
	}
	return risk
}

// DefiProtocols lists the protocols of positions in order of first appearance.
func DefiProtocols(positions []entity.DefiPosition) []entity.DefiProtocol {
	protocols := make([]entity.DefiProtocol, 0)
	seen := make(map[entity.DefiProtocol]bool)
	for _, p := range positions {
		if !seen[p.Protocol] {
			seen[p.Protocol] = true
			protocols = append(protocols, p.Protocol)
		}
	}
	return protocols
}

// DefiRecommendations combines risk-tier advice with protocol-specific notes.
func DefiRecommendations(positions []entity.DefiPosition, risk entity.LiquidationRisk) []string {
	var recs []string
	if risk.TotalBorrowed <= 0 {
		recs = append(recs, "No borrowed positions detected. Risk is minimal.")
	} else {
		recs = append(recs, riskRecommendations[risk.RiskLevel]...)
	}

	if len(positions) == 0 {
		return append(recs, "No active DeFi positions detected. Consider exploring DeFi opportunities.")
	}

	protocols := DefiProtocols(positions)
	for _, p := range protocols {
		switch p {
		case entity.ProtocolAave:
			recs = append(recs, "Monitor Aave interest rates and consider rate switching if beneficial.")
		case entity.ProtocolCompound:
			recs = append(recs, "Track Compound governance proposals that may affect your positions.")
		}
	}
	if len(protocols) > 2 {
		recs = append(recs, "Consider consolidating positions to reduce gas costs and complexity.")
	}
	return recs
}
