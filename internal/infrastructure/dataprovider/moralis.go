package dataprovider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/resilience"
	"whale_analyzer/internal/pkg/utils"

	"go.uber.org/zap"
)

const defaultMoralisBaseURL = "https://deep-index.moralis.io/api/v2.2"

var moralisChains = map[uint64]string{
	1:     "eth",
	137:   "polygon",
	56:    "bsc",
	43114: "avalanche",
	42161: "arbitrum",
	10:    "optimism",
	8453:  "base",
	250:   "fantom",
	25:    "cronos",
}

type moralisProvider struct {
	baseProvider
}

// NewMoralisProvider creates the Moralis adapter.
func NewMoralisProvider(s Settings, exec *resilience.Executor, logger *zap.Logger) port.DataProvider {
	if logger != nil {
		logger = logger.Named("MoralisProvider")
	}
	return &moralisProvider{
		baseProvider: newBaseProvider(entity.ProviderMoralis, 2, moralisChains, s, defaultMoralisBaseURL, exec, logger),
	}
}

func (p *moralisProvider) get(ctx context.Context, endpoint, rawURL string, out any) error {
	return p.exec.Do(ctx, endpoint, func(ctx context.Context) error {
		return p.http.getJSON(ctx, request{
			url:     rawURL,
			label:   "moralis " + endpoint,
			headers: map[string]string{"X-API-Key": p.apiKey},
		}, out)
	})
}

func (p *moralisProvider) GetTokenBalances(ctx context.Context, address string, chainID uint64) ([]entity.TokenBalance, error) {
	const op = "getTokenBalances"
	chain, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("chain", chain)
	query.Set("exclude_spam", "true")

	var resp []moralisToken
	if err := p.get(ctx, "balances", fmt.Sprintf("%s/%s/erc20?%s", p.baseURL, address, query.Encode()), &resp); err != nil {
		return nil, p.fail(op, chainID, err)
	}

	tokens := make([]entity.TokenBalance, 0, len(resp))
	for _, t := range resp {
		if t.PossibleSpam {
			continue
		}
		balance, err := utils.RawToAmount(t.Balance, int32(t.Decimals))
		if err != nil {
			p.logger.Debug("Skipping token with malformed balance",
				zap.String("contract", t.TokenAddress), zap.Uint64("chainId", chainID), zap.Error(err))
			continue
		}
		if balance <= 0 {
			continue
		}
		tokens = append(tokens, entity.TokenBalance{
			Symbol:          orDefault(t.Symbol, "UNKNOWN"),
			Name:            orDefault(t.Name, "Unknown Token"),
			Balance:         balance,
			ValueUSD:        valueOf(t.UsdValue),
			PriceUSD:        valueOf(t.UsdPrice),
			ContractAddress: t.TokenAddress,
			ChainID:         chainID,
			ChainName:       chain,
			LogoURL:         t.Logo,
		})
	}
	return tokens, nil
}

func (p *moralisProvider) GetTransactionHistory(ctx context.Context, address string, chainID uint64, pageSize int) ([]entity.Transaction, error) {
	const op = "getTransactionHistory"
	chain, err := p.resolve(op, chainID)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("chain", chain)
	query.Set("limit", strconv.Itoa(clampPageSize(pageSize)))
	query.Set("order", "DESC")

	var resp moralisTransactionsResponse
	if err := p.get(ctx, "transactions", fmt.Sprintf("%s/%s?%s", p.baseURL, address, query.Encode()), &resp); err != nil {
		return nil, p.fail(op, chainID, err)
	}

	txs := make([]entity.Transaction, 0, len(resp.Result))
	for _, tx := range resp.Result {
		value, err := utils.WeiToNative(tx.Value)
		if err != nil {
			value = 0
		}
		ts, _ := time.Parse(time.RFC3339, tx.BlockTimestamp)
		txs = append(txs, entity.Transaction{
			Hash:      tx.Hash,
			From:      tx.FromAddress,
			To:        tx.ToAddress,
			Value:     value,
			Timestamp: ts,
			ChainID:   chainID,
			ChainName: chain,
			GasUsed:   uint64(tx.GasUsed),
		})
	}
	return txs, nil
}

// GetPortfolioValue sums the USD value of the wallet's priced ERC-20 holdings.
func (p *moralisProvider) GetPortfolioValue(ctx context.Context, address string, chainID uint64) (float64, error) {
	tokens, err := p.GetTokenBalances(ctx, address, chainID)
	if err != nil {
		var provErr *entity.ProviderError
		if errors.As(err, &provErr) {
			provErr.Operation = "getPortfolioValue"
		}
		return 0, err
	}
	total := 0.0
	for _, t := range tokens {
		total += t.ValueUSD
	}
	return total, nil
}
