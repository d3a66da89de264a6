package entity

import "time"

// Transaction is an immutable record of one on-chain transfer. Value is in native units.
type Transaction struct {
	Hash      string    `json:"hash" yaml:"hash"`
	From      string    `json:"from" yaml:"from"`
	To        string    `json:"to" yaml:"to"`
	Value     float64   `json:"value" yaml:"value"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	ChainID   uint64    `json:"chainId" yaml:"chainId"`
	ChainName string    `json:"chainName,omitempty" yaml:"chainName,omitempty"`
	GasUsed   uint64    `json:"gasUsed" yaml:"gasUsed"`
}
