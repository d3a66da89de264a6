package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"
	"whale_analyzer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// defaultAlchemyBaseURL is expanded per chain; the API key is appended as the last path segment.
const defaultAlchemyBaseURL = "https://{network}.g.alchemy.com/v2"

// maxMetadataLookups bounds the per-token metadata calls of one balances request.
const maxMetadataLookups = 40

var alchemyChains = map[uint64]string{
	1:     "eth-mainnet",
	137:   "polygon-mainnet",
	56:    "bnb-mainnet",
	42161: "arb-mainnet",
	10:    "opt-mainnet",
	8453:  "base-mainnet",
}

type alchemyProvider struct {
	baseProvider
}

// NewAlchemyProvider creates the Alchemy JSON-RPC adapter. Alchemy has no price
// data, so its balances carry zero USD value.
func NewAlchemyProvider(s Settings, exec *resilience.Executor, logger *zap.Logger) port.DataProvider {
	if logger != nil {
		logger = logger.Named("AlchemyProvider")
	}
	return &alchemyProvider{
		baseProvider: newBaseProvider(entity.ProviderAlchemy, 3, alchemyChains, s, defaultAlchemyBaseURL, exec, logger),
	}
}

func (p *alchemyProvider) endpointURL(network string) string {
	return strings.ReplaceAll(p.baseURL, "{network}", network) + "/" + p.apiKey
}

// call performs one JSON-RPC request and decodes its result into out. A
// JSON-RPC error fails the attempt, so a 429 sent on an HTTP 200 is retried
// and counted by the breaker like any other transient failure.
func (p *alchemyProvider) call(ctx context.Context, network, method string, params []any, out any) error {
	payload := rpcRequest{ID: 1, JSONRPC: "2.0", Method: method, Params: params}
	label := "alchemy " + network + " " + method
	return p.exec.Do(ctx, method, func(ctx context.Context) error {
		var resp rpcResponse
		if err := p.http.postJSON(ctx, request{url: p.endpointURL(network), label: label}, payload, &resp); err != nil {
			return err
		}
		if err := rpcErr(resp.Error); err != nil {
			return err
		}
		if len(resp.Result) == 0 || string(resp.Result) == "null" {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("malformed result from %s: %w", label, err)
		}
		return nil
	})
}

func rpcErr(e *rpcError) error {
	if e == nil {
		return nil
	}
	if e.Code == 429 {
		return &resilience.HTTPStatusError{StatusCode: 429, URL: "alchemy", Body: e.Message}
	}
	return fmt.Errorf("json-rpc error %d: %s", e.Code, e.Message)
}

func (p *alchemyProvider) GetTokenBalances(ctx context.Context, address string, chainID uint64) ([]entity.TokenBalance, error) {
	const op = "getTokenBalances"
	network, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	var result alchemyTokenBalancesResult
	if err := p.call(ctx, network, "alchemy_getTokenBalances", []any{address, "erc20"}, &result); err != nil {
		return nil, p.fail(op, chainID, err)
	}

	tokens := make([]entity.TokenBalance, 0, len(result.TokenBalances))
	lookups := 0
	for _, tb := range result.TokenBalances {
		if tb.Error != nil || tb.TokenBalance == "" {
			continue
		}
		if raw, err := utils.HexToAmount(tb.TokenBalance, 0); err != nil || raw == 0 {
			continue
		}
		if lookups == maxMetadataLookups {
			p.logger.Debug("Metadata lookup limit reached, truncating balances",
				zap.Uint64("chainId", chainID), zap.Int("total", len(result.TokenBalances)))
			break
		}
		lookups++

		var meta alchemyTokenMetadata
		if err := p.call(ctx, network, "alchemy_getTokenMetadata", []any{tb.ContractAddress}, &meta); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, p.fail(op, chainID, ctxErr)
			}
			if errors.Is(err, entity.ErrCircuitOpen) {
				return nil, p.fail(op, chainID, err)
			}
			p.logger.Debug("Skipping token without metadata",
				zap.String("contract", tb.ContractAddress), zap.Uint64("chainId", chainID), zap.Error(err))
			continue
		}

		decimals := int32(18)
		if meta.Decimals != nil {
			decimals = *meta.Decimals
		}
		balance, err := utils.HexToAmount(tb.TokenBalance, decimals)
		if err != nil {
			continue
		}
		tokens = append(tokens, entity.TokenBalance{
			Symbol:          orDefault(meta.Symbol, "UNKNOWN"),
			Name:            orDefault(meta.Name, "Unknown Token"),
			Balance:         balance,
			ContractAddress: tb.ContractAddress,
			ChainID:         chainID,
			ChainName:       network,
			LogoURL:         meta.Logo,
		})
	}
	return tokens, nil
}

func (p *alchemyProvider) GetTransactionHistory(ctx context.Context, address string, chainID uint64, pageSize int) ([]entity.Transaction, error) {
	const op = "getTransactionHistory"
	network, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	params := map[string]any{
		"fromBlock":        "0x0",
		"fromAddress":      address,
		"category":         []string{"external", "erc20", "erc721", "erc1155"},
		"withMetadata":     true,
		"excludeZeroValue": true,
		"maxCount":         hexutil.EncodeUint64(uint64(clampPageSize(pageSize))),
		"order":            "desc",
	}

	var result alchemyAssetTransfersResult
	if err := p.call(ctx, network, "alchemy_getAssetTransfers", []any{params}, &result); err != nil {
		return nil, p.fail(op, chainID, err)
	}

	txs := make([]entity.Transaction, 0, len(result.Transfers))
	for _, tr := range result.Transfers {
		ts, _ := time.Parse(time.RFC3339, tr.Metadata.BlockTimestamp)
		txs = append(txs, entity.Transaction{
			Hash:      tr.Hash,
			From:      tr.From,
			To:        tr.To,
			Value:     valueOf(tr.Value),
			Timestamp: ts,
			ChainID:   chainID,
			ChainName: network,
		})
	}
	return txs, nil
}

// GetPortfolioValue always reports "no data": Alchemy serves no prices. The
// aggregator then falls back to summing token values.
func (p *alchemyProvider) GetPortfolioValue(_ context.Context, _ string, chainID uint64) (float64, error) {
	if _, err := p.resolve("getPortfolioValue", chainID); err != nil {
		return 0, err
	}
	return 0, nil
}
