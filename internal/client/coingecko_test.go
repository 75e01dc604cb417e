package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUSDRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"ethereum":{"usd":2543.87}}`))
	}))
	defer server.Close()

	c := NewCoinGeckoClient()
	c.baseURL = server.URL

	rate, err := c.GetUSDRate("ETH")
	require.NoError(t, err)
	assert.Equal(t, "2543.87", rate)
}

func TestGetUSDRate_TestnetSymbolMapsToMainnetCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"ethereum":{"usd":2500}}`))
	}))
	defer server.Close()

	c := NewCoinGeckoClient()
	c.baseURL = server.URL

	rate, err := c.GetUSDRate("Sep")
	require.NoError(t, err)
	assert.Equal(t, "2500.00", rate)
}

func TestGetUSDRate_UnknownSymbol(t *testing.T) {
	c := NewCoinGeckoClient()
	_, err := c.GetUSDRate("DOGE")
	assert.Error(t, err)
}

func TestGetUSDRate_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewCoinGeckoClient()
	c.baseURL = server.URL

	_, err := c.GetUSDRate("ETH")
	assert.Error(t, err)
}
