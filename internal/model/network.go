package model

// NetworkResponse represents a registry entry in API responses
type NetworkResponse struct {
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	ChainID        uint64 `json:"chainId"`
	RPCURL         string `json:"rpcUrl"`
	ExplorerAPIURL string `json:"explorerApiUrl"`
	Icon           string `json:"icon"`
	Active         bool   `json:"active"`
}

// SetActiveNetworkRequest represents request for PUT /networks/active
type SetActiveNetworkRequest struct {
	ChainID uint64 `json:"chainId" binding:"required"`
}
