package entity

// ProviderID identifies an external wallet-data vendor.
type ProviderID string

const (
	ProviderCovalent ProviderID = "covalent"
	ProviderMoralis  ProviderID = "moralis"
	ProviderAlchemy  ProviderID = "alchemy"
)

// Capability is one kind of data a provider can serve.
type Capability string

const (
	CapabilityBalances       Capability = "balances"
	CapabilityTransactions   Capability = "transactions"
	CapabilityPortfolioValue Capability = "portfolio_value"
)

// ProviderResult wraps data served for one capability on one chain together with
// the provider that served it and the failures of the providers tried before it.
type ProviderResult[T any] struct {
	Data         T                     `json:"data"`
	ProviderUsed ProviderID            `json:"providerUsed"`
	PriorErrors  map[ProviderID]string `json:"priorErrors,omitempty"`
}

// Degraded reports whether a higher-priority provider had to be skipped.
func (r ProviderResult[T]) Degraded() bool {
	return len(r.PriorErrors) > 0
}

// ProviderStatus is the diagnostic view of one registered provider.
type ProviderStatus struct {
	Available       bool     `json:"available"`
	Priority        int      `json:"priority"`
	SupportedChains []uint64 `json:"supportedChains"`
}

// HealthState is the outcome of a provider health probe.
type HealthState string

const (
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
)

// ProviderHealth is the result of probing one provider.
type ProviderHealth struct {
	Status HealthState `json:"status"`
	Error  string      `json:"error,omitempty"`
}
