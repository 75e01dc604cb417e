package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
)

// coinIDs maps registry symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"ETH":   "ethereum",
	"Sep":   "ethereum",
	"BNB":   "binancecoin",
	"BSC":   "binancecoin",
	"MATIC": "matic-network",
}

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client
func NewCoinGeckoClient() *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: coingeckoAPI,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetUSDRate gets the native-currency/USD exchange rate for a registry symbol.
func (c *CoinGeckoClient) GetUSDRate(symbol string) (string, error) {
	coinID, ok := coinIDs[symbol]
	if !ok {
		return "", fmt.Errorf("no rate source for symbol %q", symbol)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, coinID)

	resp, err := c.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	var priceResp map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}

	rate := strconv.FormatFloat(priceResp[coinID].USD, 'f', 2, 64)
	return rate, nil
}
