package entity

// Wallet is an address from a watch-list.
type Wallet struct {
	Address string `json:"address" yaml:"address"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}
