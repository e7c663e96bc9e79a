package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockmarketai/marketplace/pkg/config"
)

// EthereumClient is a read-only JSON-RPC client used to enrich purchase
// records with on-chain evidence. It never signs or submits anything.
// The client is injected where needed; its lifecycle belongs to the
// composition root.
type EthereumClient struct {
	rpcURL     string
	network    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ChainTransaction is the subset of eth_getTransactionByHash /
// eth_getTransactionReceipt the ledger records as settlement evidence.
type ChainTransaction struct {
	Hash        string   `json:"hash"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	ValueWei    *big.Int `json:"-"`
	BlockNumber *int64   `json:"blockNumber,omitempty"`
	GasUsed     *int64   `json:"gasUsed,omitempty"`
	GasFeeETH   *float64 `json:"gasFee,omitempty"`
	Succeeded   *bool    `json:"succeeded,omitempty"`
}

func NewEthereumClient(cfg config.EthereumConfig, logger zerolog.Logger) *EthereumClient {
	return &EthereumClient{
		rpcURL:  cfg.RPCURL,
		network: cfg.Network,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

func (c *EthereumClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal RPC request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Str("method", method).
			Int("status_code", resp.StatusCode).
			Str("response_body", string(body)).
			Msg("Ethereum RPC request failed")
		return fmt.Errorf("RPC request failed with status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse RPC response: %v", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return nil
	}

	return json.Unmarshal(rpcResp.Result, result)
}

// GetTransaction looks up a transaction hash and, when mined, its receipt.
// A nil result with nil error means the hash is unknown to the node.
func (c *EthereumClient) GetTransaction(ctx context.Context, txHash string) (*ChainTransaction, error) {
	var tx struct {
		Hash        string `json:"hash"`
		From        string `json:"from"`
		To          string `json:"to"`
		Value       string `json:"value"`
		BlockNumber string `json:"blockNumber"`
	}
	if err := c.call(ctx, "eth_getTransactionByHash", []interface{}{txHash}, &tx); err != nil {
		return nil, err
	}
	if tx.Hash == "" {
		return nil, nil
	}

	result := &ChainTransaction{
		Hash:     tx.Hash,
		From:     tx.From,
		To:       tx.To,
		ValueWei: parseHexBig(tx.Value),
	}

	if tx.BlockNumber == "" {
		return result, nil
	}

	var receipt struct {
		BlockNumber       string `json:"blockNumber"`
		GasUsed           string `json:"gasUsed"`
		EffectiveGasPrice string `json:"effectiveGasPrice"`
		Status            string `json:"status"`
	}
	if err := c.call(ctx, "eth_getTransactionReceipt", []interface{}{txHash}, &receipt); err != nil {
		c.logger.Warn().Err(err).Str("tx_hash", txHash).Msg("Failed to fetch transaction receipt")
		return result, nil
	}
	if receipt.BlockNumber == "" {
		return result, nil
	}

	if n := parseHexInt64(receipt.BlockNumber); n != nil {
		result.BlockNumber = n
	}
	if n := parseHexInt64(receipt.GasUsed); n != nil {
		result.GasUsed = n
	}
	if gasUsed, gasPrice := parseHexBig(receipt.GasUsed), parseHexBig(receipt.EffectiveGasPrice); gasUsed != nil && gasPrice != nil {
		fee := weiToEth(new(big.Int).Mul(gasUsed, gasPrice))
		result.GasFeeETH = &fee
	}
	if receipt.Status != "" {
		ok := receipt.Status == "0x1"
		result.Succeeded = &ok
	}

	return result, nil
}

func parseHexBig(s string) *big.Int {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil
	}
	return n
}

func parseHexInt64(s string) *int64 {
	n := parseHexBig(s)
	if n == nil || !n.IsInt64() {
		return nil
	}
	v := n.Int64()
	return &v
}

func weiToEth(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return f
}
