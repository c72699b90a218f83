package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/config"
)

const (
	defaultURL     = "https://api.coingecko.com/api/v3/simple/price?ids=ethereum&vs_currencies=usd"
	defaultTimeout = 10 * time.Second
)

// Client fetches the single USD-per-ETH quote. Implements provider.PriceOracle.
type Client struct {
	log   logger.Logger
	httpc *http.Client
	url   string
}

func New(log logger.Logger, cfg *config.CoingeckoConfig) *Client {
	url := defaultURL
	timeout := defaultTimeout

	if cfg != nil {
		if cfg.URL != "" {
			url = cfg.URL
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
	}

	return &Client{
		log:   log,
		httpc: &http.Client{Timeout: timeout},
		url:   url,
	}
}

type priceResponse struct {
	Ethereum struct {
		USD float64 `json:"usd"`
	} `json:"ethereum"`
}

func (c *Client) USDPrice(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price fetch failed with status %d", resp.StatusCode)
	}

	var pr priceResponse
	if err = json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, fmt.Errorf("decode price response: %w", err)
	}

	if pr.Ethereum.USD <= 0 {
		return 0, errors.New("invalid price response")
	}

	return pr.Ethereum.USD, nil
}
