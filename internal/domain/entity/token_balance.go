package entity

import (
	"strconv"
	"strings"
)

// TokenBalance is a single token position held by a wallet on one chain.
// ValueUSD is balance × price at fetch time and is never recomputed afterwards.
type TokenBalance struct {
	Symbol          string  `json:"symbol" yaml:"symbol"`
	Name            string  `json:"name" yaml:"name"`
	Balance         float64 `json:"balance" yaml:"balance"`
	ValueUSD        float64 `json:"value" yaml:"value"`
	PriceUSD        float64 `json:"price" yaml:"price"`
	ContractAddress string  `json:"contractAddress,omitempty" yaml:"contractAddress,omitempty"`
	ChainID         uint64  `json:"chainId" yaml:"chainId"`
	ChainName       string  `json:"chainName,omitempty" yaml:"chainName,omitempty"`
	LogoURL         string  `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// Key returns the deduplication identity of the balance: the lower-cased
// contract address (or the symbol when no address is known) scoped to the chain.
func (t TokenBalance) Key() string {
	id := strings.ToLower(strings.TrimSpace(t.ContractAddress))
	if id == "" {
		id = "symbol:" + t.Symbol
	}
	return id + "@" + strconv.FormatUint(t.ChainID, 10)
}
