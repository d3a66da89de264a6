package networkdefinition

import (
	"fmt"
	"sort"

	"whale_analyzer/internal/domain/entity"
)

// Static chain definitions used whenever remote metadata is unavailable.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainMetadata{
		ChainID:          1,
		Name:             "eth-mainnet",
		DisplayName:      "Ethereum Mainnet",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
		Color:            "#627EEA",
	}
	Polygon = entity.ChainMetadata{
		ChainID:          137,
		Name:             "matic-mainnet",
		DisplayName:      "Polygon PoS",
		NativeSymbol:     "MATIC",
		Decimals:         18,
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
		Color:            "#8247E5",
	}
	BSC = entity.ChainMetadata{
		ChainID:          56,
		Name:             "bsc-mainnet",
		DisplayName:      "BNB Smart Chain",
		NativeSymbol:     "BNB",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/bnb",
		FallbackRPCURLs:  []string{"https://bsc-dataseed2.binance.org/", "https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
		Color:            "#F3BA2F",
	}
	Avalanche = entity.ChainMetadata{
		ChainID:          43114,
		Name:             "avalanche-mainnet",
		DisplayName:      "Avalanche C-Chain",
		NativeSymbol:     "AVAX",
		Decimals:         18,
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
		Color:            "#E84142",
	}
	Arbitrum = entity.ChainMetadata{
		ChainID:          42161,
		Name:             "arbitrum-mainnet",
		DisplayName:      "Arbitrum One",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
		Color:            "#2D374B",
	}
	Optimism = entity.ChainMetadata{
		ChainID:          10,
		Name:             "optimism-mainnet",
		DisplayName:      "OP Mainnet",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://op-pokt.nodies.app",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
		Color:            "#FF0420",
	}
	Base = entity.ChainMetadata{
		ChainID:          8453,
		Name:             "base-mainnet",
		DisplayName:      "Base Mainnet",
		NativeSymbol:     "ETH",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/base",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
		Color:            "#0052FF",
	}
	Fantom = entity.ChainMetadata{
		ChainID:          250,
		Name:             "fantom-mainnet",
		DisplayName:      "Fantom Opera",
		NativeSymbol:     "FTM",
		Decimals:         18,
		PrimaryRPCURL:    "https://1rpc.io/ftm",
		FallbackRPCURLs:  []string{"https://fantom.publicnode.com", "https://rpc.ankr.com/fantom"},
		BlockExplorerURL: "https://ftmscan.com",
		Color:            "#1969FF",
	}
	Cronos = entity.ChainMetadata{
		ChainID:          25,
		Name:             "cronos-mainnet",
		DisplayName:      "Cronos",
		NativeSymbol:     "CRO",
		Decimals:         18,
		PrimaryRPCURL:    "https://evm.cronos.org",
		BlockExplorerURL: "https://cronoscan.com",
		Color:            "#003D6B",
	}
	Gnosis = entity.ChainMetadata{
		ChainID:          100,
		Name:             "gnosis-mainnet",
		DisplayName:      "Gnosis Chain",
		NativeSymbol:     "xDAI",
		Decimals:         18,
		PrimaryRPCURL:    "https://0xrpc.io/gno",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/gnosis", "https://gnosis.publicnode.com"},
		BlockExplorerURL: "https://gnosisscan.io",
		Color:            "#04795B",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[uint64]entity.ChainMetadata{
	Ethereum.ChainID:  Ethereum,
	Polygon.ChainID:   Polygon,
	BSC.ChainID:       BSC,
	Avalanche.ChainID: Avalanche,
	Arbitrum.ChainID:  Arbitrum,
	Optimism.ChainID:  Optimism,
	Base.ChainID:      Base,
	Fantom.ChainID:    Fantom,
	Cronos.ChainID:    Cronos,
	Gnosis.ChainID:    Gnosis,
}

// StaticDefinition returns the hardcoded definition for chainID.
func StaticDefinition(chainID uint64) (entity.ChainMetadata, bool) {
	def, ok := allKnownDefinitions[chainID]
	if !ok {
		return entity.ChainMetadata{}, false
	}
	return cloneMetadata(def), true
}

// StaticDefinitions returns every hardcoded definition ordered by chain id.
func StaticDefinitions() []entity.ChainMetadata {
	defs := make([]entity.ChainMetadata, 0, len(allKnownDefinitions))
	for _, def := range allKnownDefinitions {
		defs = append(defs, cloneMetadata(def))
	}
	sortByChainID(defs)
	return defs
}

// Placeholder is what callers get for a chain nobody knows about.
func Placeholder(chainID uint64) entity.ChainMetadata {
	return entity.ChainMetadata{
		ChainID:      chainID,
		Name:         fmt.Sprintf("chain-%d", chainID),
		DisplayName:  fmt.Sprintf("Chain %d", chainID),
		NativeSymbol: "ETH",
		Decimals:     18,
	}
}

func cloneMetadata(def entity.ChainMetadata) entity.ChainMetadata {
	if def.FallbackRPCURLs != nil {
		def.FallbackRPCURLs = append([]string(nil), def.FallbackRPCURLs...)
	}
	return def
}

func sortByChainID(defs []entity.ChainMetadata) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
}
