package entity

import "time"

// DefiProtocol names a lending or liquidity protocol a position was detected on.
type DefiProtocol string

const (
	ProtocolAave      DefiProtocol = "aave"
	ProtocolCompound  DefiProtocol = "compound"
	ProtocolMakerDAO  DefiProtocol = "makerdao"
	ProtocolUniswapV3 DefiProtocol = "uniswap-v3"
	ProtocolOther     DefiProtocol = "other"
)

// DefiAsset is the asset a position is denominated in.
type DefiAsset struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals int32  `json:"decimals"`
}

// DefiPosition is one detected protocol position. Supplied and Borrowed are in
// token units; the USD fields are 0 when no price was available.
type DefiPosition struct {
	ID          string       `json:"id"`
	Protocol    DefiProtocol `json:"protocol"`
	User        string       `json:"user"`
	ChainID     uint64       `json:"chainId"`
	Asset       DefiAsset    `json:"asset"`
	Supplied    float64      `json:"supplied"`
	Borrowed    float64      `json:"borrowed"`
	SuppliedUSD float64      `json:"suppliedUsd"`
	BorrowedUSD float64      `json:"borrowedUsd"`
	// Source is "balance" for receipt tokens held and "transaction" for
	// protocol contracts the wallet recently called.
	Source string `json:"source"`
}

// DefiAnalysis is the DeFi position report of one wallet on one chain.
type DefiAnalysis struct {
	Address          string          `json:"address"`
	ChainID          uint64          `json:"chainId"`
	Positions        []DefiPosition  `json:"positions"`
	TotalSuppliedUSD float64         `json:"totalSuppliedUsd"`
	TotalBorrowedUSD float64         `json:"totalBorrowedUsd"`
	NetWorthUSD      float64         `json:"netWorthUsd"`
	LiquidationRisk  LiquidationRisk `json:"liquidationRisk"`
	Protocols        []DefiProtocol  `json:"protocols"`
	Recommendations  []string        `json:"recommendations"`
	DataSources      []DataSource    `json:"dataSources"`
	ChainErrors      []ChainError    `json:"chainErrors,omitempty"`
	RequestID        string          `json:"requestId"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}
