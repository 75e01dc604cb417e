package model

// TransferRequest represents request for POST /wallet/transfer.
// Confirm must be true: it is the caller's explicit confirmation of the
// details shown to the user. ChainID zero means the active network.
type TransferRequest struct {
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	ChainID   uint64 `json:"chainId,omitempty"`
	Confirm   bool   `json:"confirm"`
}

// Transfer outcome statuses.
const (
	TransferStatusConfirmed = "confirmed"
	TransferStatusPending   = "pending"
	TransferStatusCancelled = "cancelled"
)

// TransferResponse represents response for POST /wallet/transfer.
// Status "pending" means the broadcast succeeded but inclusion was not
// observed within the bounded wait; the transaction may still confirm.
type TransferResponse struct {
	Status  string `json:"status"`
	TxHash  string `json:"txHash,omitempty"`
	ChainID uint64 `json:"chainId,omitempty"`
}
