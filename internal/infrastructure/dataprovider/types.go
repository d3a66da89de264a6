package dataprovider

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// flexUint decodes numbers that vendors send either as JSON numbers or as strings.
type flexUint uint64

func (f *flexUint) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		v = uint64(fv)
	}
	*f = flexUint(v)
	return nil
}

// Covalent

type covalentBalanceItem struct {
	ContractDecimals     *int32   `json:"contract_decimals"`
	ContractName         string   `json:"contract_name"`
	ContractTickerSymbol string   `json:"contract_ticker_symbol"`
	ContractAddress      string   `json:"contract_address"`
	LogoURL              string   `json:"logo_url"`
	Balance              string   `json:"balance"`
	Quote                *float64 `json:"quote"`
	QuoteRate            *float64 `json:"quote_rate"`
}

type covalentTransactionItem struct {
	TxHash        string    `json:"tx_hash"`
	FromAddress   string    `json:"from_address"`
	ToAddress     string    `json:"to_address"`
	Value         string    `json:"value"`
	BlockSignedAt time.Time `json:"block_signed_at"`
	GasSpent      flexUint  `json:"gas_spent"`
}

type covalentError struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	ErrorCode    int    `json:"error_code"`
}

type covalentBalancesResponse struct {
	covalentError
	Data struct {
		Items []covalentBalanceItem `json:"items"`
	} `json:"data"`
}

type covalentTransactionsResponse struct {
	covalentError
	Data struct {
		Items []covalentTransactionItem `json:"items"`
	} `json:"data"`
}

type covalentPortfolioResponse struct {
	covalentError
	Data struct {
		TotalQuote *float64 `json:"total_quote"`
	} `json:"data"`
}

// Moralis

type moralisToken struct {
	TokenAddress string   `json:"token_address"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Logo         string   `json:"logo"`
	Decimals     flexUint `json:"decimals"`
	Balance      string   `json:"balance"`
	PossibleSpam bool     `json:"possible_spam"`
	UsdPrice     *float64 `json:"usd_price"`
	UsdValue     *float64 `json:"usd_value"`
}

type moralisTransaction struct {
	Hash           string   `json:"hash"`
	FromAddress    string   `json:"from_address"`
	ToAddress      string   `json:"to_address"`
	Value          string   `json:"value"`
	GasUsed        flexUint `json:"receipt_gas_used"`
	BlockTimestamp string   `json:"block_timestamp"`
}

type moralisTransactionsResponse struct {
	Cursor string               `json:"cursor"`
	Result []moralisTransaction `json:"result"`
}

// Alchemy (JSON-RPC)

type rpcRequest struct {
	ID      int    `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result jsoniter.RawMessage `json:"result"`
	Error  *rpcError           `json:"error"`
}

type alchemyTokenBalancesResult struct {
	Address       string `json:"address"`
	TokenBalances []struct {
		ContractAddress string  `json:"contractAddress"`
		TokenBalance    string  `json:"tokenBalance"`
		Error           *string `json:"error"`
	} `json:"tokenBalances"`
}

type alchemyTokenMetadata struct {
	Decimals *int32 `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Logo     string `json:"logo"`
}

type alchemyTransfer struct {
	Hash     string   `json:"hash"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Value    *float64 `json:"value"`
	Asset    string   `json:"asset"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp"`
	} `json:"metadata"`
}

type alchemyAssetTransfersResult struct {
	Transfers []alchemyTransfer `json:"transfers"`
}
