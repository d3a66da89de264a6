package entity

import "time"

// ChainSnapshot is the aggregated view of one chain within an analysis.
// TotalValue is always the sum of the chain's token values.
type ChainSnapshot struct {
	ChainID          uint64  `json:"chainId"`
	ChainName        string  `json:"chainName"`
	NativeCurrency   string  `json:"nativeCurrency"`
	LogoURL          string  `json:"logoUrl,omitempty"`
	ExplorerURL      string  `json:"explorerUrl,omitempty"`
	TotalValue       float64 `json:"totalValue"`
	TokenCount       int     `json:"tokenCount"`
	TransactionCount int     `json:"transactionCount"`
	DefiValue        float64 `json:"defiValue"`
	StakingValue     float64 `json:"stakingValue"`
	IsActive         bool    `json:"isActive"`
}

// ChainDistribution is one chain's share of the portfolio.
type ChainDistribution struct {
	ChainID    uint64  `json:"chainId"`
	ChainName  string  `json:"chainName"`
	Percentage float64 `json:"percentage"`
	Value      float64 `json:"value"`
	Color      string  `json:"color"`
}

// CrossChainMetrics summarizes how a portfolio is spread across chains.
type CrossChainMetrics struct {
	TotalChains       int                 `json:"totalChains"`
	DominantChain     string              `json:"dominantChain"`
	DominantChainID   uint64              `json:"dominantChainId"`
	ChainDistribution []ChainDistribution `json:"chainDistribution"`
	MultiChainScore   int                 `json:"multiChainScore"`
}

// DataSource records which provider served a capability for a chain.
type DataSource struct {
	ChainID    uint64     `json:"chainId"`
	Capability Capability `json:"capability"`
	Provider   ProviderID `json:"provider"`
	Fallback   bool       `json:"fallback"`
}

// ChainError records a capability that no provider could serve for a chain.
type ChainError struct {
	ChainID        uint64                `json:"chainId"`
	Capability     Capability            `json:"capability"`
	Message        string                `json:"message"`
	ProviderErrors map[ProviderID]string `json:"providerErrors,omitempty"`
}

// PortfolioSnapshot is the complete result of one wallet analysis.
type PortfolioSnapshot struct {
	RequestID       string            `json:"requestId"`
	Address         string            `json:"address"`
	TotalValueUSD   float64           `json:"totalBalance"`
	TokenBalances   []TokenBalance    `json:"tokenBalances"`
	Transactions    []Transaction     `json:"transactions"`
	Chains          []ChainSnapshot   `json:"chains"`
	CrossChain      CrossChainMetrics `json:"crossChainMetrics"`
	WhaleScore      int               `json:"whaleScore"`
	WhaleMetrics    WhaleMetrics      `json:"whaleMetrics"`
	LiquidationRisk LiquidationRisk   `json:"liquidationRisk"`
	AISummary       string            `json:"aiSummary,omitempty"`
	Analysis        *AIAnalysis       `json:"aiAnalysis,omitempty"`
	DataSources     []DataSource      `json:"dataSources"`
	ChainErrors     []ChainError      `json:"chainErrors,omitempty"`
	Degraded        bool              `json:"degraded"`
	SummaryFallback bool              `json:"summaryFallback"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}
