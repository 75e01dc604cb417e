package model

// EWTFile represents the .ewt vault file structure. Only the cipherText is
// secret; address and QR are public and readable without the passphrase.
type EWTFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	CreatedAt  string `json:"createdAt"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// StatusResponse represents response for GET /wallet
type StatusResponse struct {
	HasWallet bool   `json:"hasWallet"`
	Address   string `json:"address,omitempty"`
}

// CreateResponse represents response for POST /wallet/create.
// The mnemonic is returned exactly once, for backup display.
type CreateResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Address  string `json:"address,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// ImportRequest represents request for POST /wallet/import
type ImportRequest struct {
	PrivateKey string `json:"privateKey" binding:"required"`
}

// RestoreRequest represents request for POST /wallet/restore
type RestoreRequest struct {
	Phrase string `json:"phrase" binding:"required"`
}

// WalletResponse represents response for import/restore operations
type WalletResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
}

// ReceiveResponse represents response for GET /wallet/receive
type ReceiveResponse struct {
	Address string `json:"address"`
	QR      string `json:"qr"` // base64 PNG
}

// MnemonicResponse represents response for POST /wallet/mnemonic
type MnemonicResponse struct {
	Mnemonic string `json:"mnemonic"`
}
