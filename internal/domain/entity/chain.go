package entity

// ChainMetadata describes a chain for display and linking purposes.
// Name is the vendor slug (e.g. "eth-mainnet"), DisplayName the human label.
type ChainMetadata struct {
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	DisplayName      string   `json:"displayName" yaml:"displayName"`
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals         int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl,omitempty" yaml:"primaryRpcUrl,omitempty"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls,omitempty" yaml:"fallbackRpcUrls,omitempty"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	LogoURL          string   `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	Color            string   `json:"color,omitempty" yaml:"color,omitempty"`
	IsTestnet        bool     `json:"isTestnet" yaml:"isTestnet"`
}
