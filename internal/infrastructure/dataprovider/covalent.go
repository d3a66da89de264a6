package dataprovider

import (
	"context"
	"fmt"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"
	"whale_analyzer/internal/pkg/utils"

	"go.uber.org/zap"
)

const defaultCovalentBaseURL = "https://api.covalenthq.com"

var covalentChains = map[uint64]string{
	1:     "eth-mainnet",
	137:   "matic-mainnet",
	56:    "bsc-mainnet",
	43114: "avalanche-mainnet",
	42161: "arbitrum-mainnet",
	10:    "optimism-mainnet",
	8453:  "base-mainnet",
	250:   "fantom-mainnet",
	25:    "cronos-mainnet",
	100:   "gnosis-mainnet",
}

type covalentProvider struct {
	baseProvider
}

// NewCovalentProvider creates the Covalent (GoldRush) adapter.
func NewCovalentProvider(s Settings, exec *resilience.Executor, logger *zap.Logger) port.DataProvider {
	if logger != nil {
		logger = logger.Named("CovalentProvider")
	}
	return &covalentProvider{
		baseProvider: newBaseProvider(entity.ProviderCovalent, 1, covalentChains, s, defaultCovalentBaseURL, exec, logger),
	}
}

func (p *covalentProvider) get(ctx context.Context, endpoint, url string, out any) error {
	return p.exec.Do(ctx, endpoint, func(ctx context.Context) error {
		return p.http.getJSON(ctx, request{
			url:     url,
			label:   "covalent " + endpoint,
			headers: map[string]string{"Authorization": "Bearer " + p.apiKey},
		}, out)
	})
}

func (p *covalentProvider) GetTokenBalances(ctx context.Context, address string, chainID uint64) ([]entity.TokenBalance, error) {
	const op = "getTokenBalances"
	slug, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	var resp covalentBalancesResponse
	url := fmt.Sprintf("%s/v1/%s/address/%s/balances_v2/", p.baseURL, slug, address)
	if err := p.get(ctx, "balances", url, &resp); err != nil {
		return nil, p.fail(op, chainID, err)
	}
	if resp.Error {
		return nil, p.fail(op, chainID, fmt.Errorf("covalent error %d: %s", resp.ErrorCode, resp.ErrorMessage))
	}

	tokens := make([]entity.TokenBalance, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		decimals := int32(18)
		if item.ContractDecimals != nil {
			decimals = *item.ContractDecimals
		}
		balance, err := utils.RawToAmount(item.Balance, decimals)
		if err != nil {
			p.logger.Debug("Skipping token with malformed balance",
				zap.String("contract", item.ContractAddress), zap.Uint64("chainId", chainID), zap.Error(err))
			continue
		}
		tokens = append(tokens, entity.TokenBalance{
			Symbol:          orDefault(item.ContractTickerSymbol, "UNKNOWN"),
			Name:            orDefault(item.ContractName, "Unknown Token"),
			Balance:         balance,
			ValueUSD:        valueOf(item.Quote),
			PriceUSD:        valueOf(item.QuoteRate),
			ContractAddress: item.ContractAddress,
			ChainID:         chainID,
			ChainName:       slug,
			LogoURL:         item.LogoURL,
		})
	}
	return tokens, nil
}

func (p *covalentProvider) GetTransactionHistory(ctx context.Context, address string, chainID uint64, pageSize int) ([]entity.Transaction, error) {
	const op = "getTransactionHistory"
	slug, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	var resp covalentTransactionsResponse
	url := fmt.Sprintf("%s/v1/%s/address/%s/transactions_v2/?page-size=%d", p.baseURL, slug, address, clampPageSize(pageSize))
	if err := p.get(ctx, "transactions", url, &resp); err != nil {
		return nil, p.fail(op, chainID, err)
	}
	if resp.Error {
		return nil, p.fail(op, chainID, fmt.Errorf("covalent error %d: %s", resp.ErrorCode, resp.ErrorMessage))
	}

	txs := make([]entity.Transaction, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		value, err := utils.WeiToNative(item.Value)
		if err != nil {
			value = 0
		}
		txs = append(txs, entity.Transaction{
			Hash:      item.TxHash,
			From:      item.FromAddress,
			To:        item.ToAddress,
			Value:     value,
			Timestamp: item.BlockSignedAt,
			ChainID:   chainID,
			ChainName: slug,
			GasUsed:   uint64(item.GasSpent),
		})
	}
	return txs, nil
}

func (p *covalentProvider) GetPortfolioValue(ctx context.Context, address string, chainID uint64) (float64, error) {
	const op = "getPortfolioValue"
	slug, err := p.resolve(op, chainID)
	if err != nil {
		return 0, err
	}

	var resp covalentPortfolioResponse
	url := fmt.Sprintf("%s/v1/%s/address/%s/portfolio_v2/", p.baseURL, slug, address)
	if err := p.get(ctx, "portfolio", url, &resp); err != nil {
		return 0, p.fail(op, chainID, err)
	}
	if resp.Error {
		return 0, p.fail(op, chainID, fmt.Errorf("covalent error %d: %s", resp.ErrorCode, resp.ErrorMessage))
	}
	return valueOf(resp.Data.TotalQuote), nil
}

func clampPageSize(n int) int {
	switch {
	case n <= 0:
		return 100
	case n > 100:
		return 100
	default:
		return n
	}
}
