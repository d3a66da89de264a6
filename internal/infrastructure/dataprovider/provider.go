package dataprovider

import (
	"sort"
	"strings"

	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"

	"go.uber.org/zap"
)

// baseProvider carries what every vendor adapter shares: identity, the static
// chain table, credentials and the injected resilience executor.
type baseProvider struct {
	id       entity.ProviderID
	priority int
	apiKey   string
	baseURL  string
	chains   map[uint64]string
	exec     *resilience.Executor
	http     *httpTransport
	logger   *zap.Logger
}

func newBaseProvider(id entity.ProviderID, priority int, chains map[uint64]string, s Settings, defaultBaseURL string, exec *resilience.Executor, logger *zap.Logger) baseProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(s.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if exec == nil {
		exec = resilience.NewExecutor(string(id), nil, nil, resilience.RetryPolicy{MaxAttempts: 1}, logger)
	}
	return baseProvider{
		id:       id,
		priority: priority,
		apiKey:   strings.TrimSpace(s.APIKey),
		baseURL:  baseURL,
		chains:   chains,
		exec:     exec,
		http:     newHTTPTransport(s.Timeout, logger),
		logger:   logger,
	}
}

func (b *baseProvider) ID() entity.ProviderID {
	return b.id
}

func (b *baseProvider) Priority() int {
	return b.priority
}

func (b *baseProvider) IsAvailable() bool {
	return b.apiKey != ""
}

func (b *baseProvider) SupportsChain(chainID uint64) bool {
	_, ok := b.chains[chainID]
	return ok
}

func (b *baseProvider) SupportedChains() []uint64 {
	ids := make([]uint64, 0, len(b.chains))
	for id := range b.chains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// resolve checks credentials and chain support and returns the vendor's chain slug.
func (b *baseProvider) resolve(op string, chainID uint64) (string, error) {
	if !b.IsAvailable() {
		return "", b.fail(op, chainID, entity.ErrProviderNotConfigured)
	}
	slug, ok := b.chains[chainID]
	if !ok {
		return "", b.fail(op, chainID, entity.ErrUnsupportedChain)
	}
	return slug, nil
}

func (b *baseProvider) fail(op string, chainID uint64, err error) error {
	return &entity.ProviderError{Provider: b.id, Operation: op, ChainID: chainID, Err: err}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func valueOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
