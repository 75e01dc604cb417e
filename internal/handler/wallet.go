package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/voxwallet/walletd/internal/model"
	"github.com/voxwallet/walletd/wallet"
)

// WalletHandler exposes the wallet session to the UI collaborator.
type WalletHandler struct {
	session *wallet.Session
}

// NewWalletHandler creates a new WalletHandler around the session.
func NewWalletHandler(session *wallet.Session) *WalletHandler {
	return &WalletHandler{session: session}
}

// Status handles GET /wallet
// @Summary      Wallet status
// @Description  Reports whether a wallet exists and its public address
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.StatusResponse
// @Router       /wallet [get]
func (h *WalletHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{
		HasWallet: h.session.HasWallet(),
		Address:   h.session.Address(),
	})
}

// Create handles POST /wallet/create
// @Summary      Create new wallet
// @Description  Generates a new key pair and mnemonic; the mnemonic is returned once for backup
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Success      200  {object}  model.CreateResponse
// @Router       /wallet/create [post]
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.session.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.CreateResponse{
		Success:  true,
		Message:  "Wallet created successfully",
		Address:  result.Address,
		Mnemonic: result.Mnemonic,
	})
}

// Import handles POST /wallet/import
// @Summary      Import wallet
// @Description  Imports a wallet from a raw hex private key; no mnemonic is stored
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Private key"
// @Success      200      {object}  model.WalletResponse
// @Router       /wallet/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	address, err := h.session.Import(r.Context(), req.PrivateKey)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.WalletResponse{
		Success: true,
		Message: "Wallet imported successfully",
		Address: address,
	})
}

// Restore handles POST /wallet/restore
// @Summary      Restore wallet from phrase
// @Description  Validates a mnemonic recovery phrase and restores the wallet it encodes
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RestoreRequest  true  "Mnemonic phrase"
// @Success      200      {object}  model.WalletResponse
// @Router       /wallet/restore [post]
func (h *WalletHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	address, err := h.session.Restore(r.Context(), req.Phrase)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.WalletResponse{
		Success: true,
		Message: "Wallet restored successfully",
		Address: address,
	})
}

// Balance handles GET /wallet/balance
// @Summary      Get wallet balance
// @Description  Gets the native balance on the active network (or ?chainId=) with a best-effort USD rate
// @Tags         wallet
// @Produce      json
// @Param        chainId  query     int  false  "Chain id (defaults to active network)"
// @Success      200      {object}  model.BalanceResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	chainID, err := chainIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid chainId parameter"})
		return
	}

	balance, err := h.session.Balance(r.Context(), chainID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Address: balance.Address,
		Balance: balance.Balance,
		Symbol:  balance.Network.Symbol,
		Network: balance.Network.Name,
		ChainID: balance.Network.ChainID,
		Rate:    balance.Rate,
		USD:     balance.USD,
	})
}

// Transfer handles POST /wallet/transfer
// @Summary      Send native currency
// @Description  Signs and broadcasts a value transfer; confirm must be true to proceed
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.TransferRequest  true  "Transfer data"
// @Success      200      {object}  model.TransferResponse
// @Router       /wallet/transfer [post]
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	// the request's confirm flag is the caller's explicit confirmation of
	// the details it displayed
	confirm := wallet.ConfirmerFunc(func(ctx context.Context, details wallet.ConfirmDetails) bool {
		return req.Confirm
	})

	result, err := h.session.Transfer(r.Context(), req.ToAddress, req.Amount, req.ChainID, confirm)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TransferResponse{
		Status:  result.Status,
		TxHash:  result.TxHash,
		ChainID: result.ChainID,
	})
}

// Receive handles GET /wallet/receive
// @Summary      Receive address with QR
// @Description  Returns the wallet address and a QR code PNG (base64)
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ReceiveResponse
// @Router       /wallet/receive [get]
func (h *WalletHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.session.Receive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ReceiveResponse{
		Address: result.Address,
		QR:      result.QR,
	})
}

// Mnemonic handles POST /wallet/mnemonic
// @Summary      Reveal recovery phrase
// @Description  Returns the stored mnemonic after a fresh authentication challenge
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.MnemonicResponse
// @Router       /wallet/mnemonic [post]
func (h *WalletHandler) Mnemonic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	phrase, err := h.session.RevealMnemonic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MnemonicResponse{Mnemonic: phrase})
}

// Reset handles POST /wallet/reset
// @Summary      Reset wallet
// @Description  Wipes the stored key material and metadata after authentication
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletResponse
// @Router       /wallet/reset [post]
func (h *WalletHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	if err := h.session.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.WalletResponse{
		Success: true,
		Message: "Wallet reset",
	})
}

func chainIDParam(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("chainId")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
