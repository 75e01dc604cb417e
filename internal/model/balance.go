package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"` // native units, decimal string
	Symbol  string `json:"symbol"`
	Network string `json:"network"`
	ChainID uint64 `json:"chainId"`
	Rate    string `json:"rate,omitempty"` // native/USD, best effort
	USD     string `json:"usd,omitempty"`
}
