package alchemy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/config"
	"walletscope/internal/domain"
	"walletscope/internal/provider"
)

// transferCategories is the broad category set every history query uses.
var transferCategories = []string{"external", "internal", "erc20", "erc721", "erc1155"}

const (
	// maxCount limits each direction query to 100 records (provider-side).
	maxCount = "0x64"

	defaultTimeout = 15 * time.Second
)

// Client talks JSON-RPC to an Alchemy-compatible endpoint. It implements
// provider.WalletData.
type Client struct {
	log      logger.Logger
	httpc    *http.Client
	endpoint string
}

func New(log logger.Logger, cfg *config.AlchemyConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("alchemy config is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("alchemy base_url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("alchemy api_key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		log:      log,
		httpc:    &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.APIKey,
	}, nil
}

func (c *Client) Balance(ctx context.Context, address string) (string, error) {
	var balanceHex string
	if err := c.call(ctx, "eth_getBalance", []any{address, "latest"}, &balanceHex); err != nil {
		return "", fmt.Errorf("eth_getBalance: %w", err)
	}
	return balanceHex, nil
}

type transferParams struct {
	FromBlock    string   `json:"fromBlock"`
	ToBlock      string   `json:"toBlock"`
	Category     []string `json:"category"`
	MaxCount     string   `json:"maxCount"`
	WithMetadata bool     `json:"withMetadata"`
	Order        string   `json:"order"`
	ToAddress    string   `json:"toAddress,omitempty"`
	FromAddress  string   `json:"fromAddress,omitempty"`
}

type transfersResult struct {
	Transfers []domain.Transfer `json:"transfers"`
}

func (c *Client) Transfers(ctx context.Context, address string, dir provider.Direction) ([]domain.Transfer, error) {
	params := transferParams{
		FromBlock:    "0x0",
		ToBlock:      "latest",
		Category:     transferCategories,
		MaxCount:     maxCount,
		WithMetadata: true,
		Order:        "desc",
	}
	if dir == provider.Inbound {
		params.ToAddress = address
	} else {
		params.FromAddress = address
	}

	var res transfersResult
	if err := c.call(ctx, "alchemy_getAssetTransfers", []any{params}, &res); err != nil {
		return nil, fmt.Errorf("alchemy_getAssetTransfers(%s): %w", dir, err)
	}

	// canonical lowercase addresses at ingestion; every comparison downstream
	// works on canonical forms
	for i := range res.Transfers {
		res.Transfers[i].From = strings.ToLower(res.Transfers[i].From)
		res.Transfers[i].To = strings.ToLower(res.Transfers[i].To)
	}

	return res.Transfers, nil
}

type rpcRequest struct {
	ID      int    `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{ID: 1, JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc %s failed with status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err = json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("rpc %s error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if out != nil && len(rpcResp.Result) > 0 {
		if err = json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}

	return nil
}
