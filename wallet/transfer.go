package wallet

import (
	"context"
	"crypto/ecdsa"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/common"
	"github.com/voxwallet/walletd/internal/netreg"
	"github.com/voxwallet/walletd/internal/secret"
)

// ConfirmDetails are the transaction details shown for explicit confirmation.
type ConfirmDetails struct {
	To      string
	Amount  string
	Network netreg.Network
}

// Confirmer presents transaction details to the user. Returning false aborts
// the transfer before any network call; that is a normal cancelled outcome.
type Confirmer interface {
	Confirm(ctx context.Context, details ConfirmDetails) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, details ConfirmDetails) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, details ConfirmDetails) bool {
	return f(ctx, details)
}

// Transfer outcome statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
)

// TransferResult is the outcome of one transfer call. Status "pending" means
// the broadcast succeeded but inclusion was not observed within the bounded
// wait; the transaction may still confirm later.
type TransferResult struct {
	Status  string
	TxHash  string
	ChainID uint64
}

// Transfer signs and broadcasts a value transfer on the given network
// (chain id zero selects the active network). The steps run strictly in
// order: authenticated key retrieval, user confirmation, connection,
// construction, local signing, single submission, bounded confirmation wait.
// Only one transfer may be in flight per session; a concurrent call is
// rejected rather than racing for the nonce. The in-memory key is wiped on
// every exit path.
func (s *Session) Transfer(ctx context.Context, toAddress, amount string, chainID uint64, confirm Confirmer) (*TransferResult, error) {
	if !ethcommon.IsHexAddress(toAddress) {
		return nil, apperr.Newf(apperr.KindInvalidAddress, "invalid recipient address %q", toAddress)
	}
	wei, err := common.EtherToWei(amount)
	if err != nil {
		return nil, err
	}

	if !s.transferMu.TryLock() {
		return nil, apperr.New(apperr.KindTransferInProgress, "a transfer is already in progress")
	}
	defer s.transferMu.Unlock()

	// 1. authenticated key retrieval
	keyHex, ok, err := s.secrets.GetAuthenticated(ctx, secret.KeyPrivateKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindMissingKey, "no private key in the secret store")
	}

	priv, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindMissingKey, "stored private key is unusable", err)
	}
	defer zeroKey(priv)

	network := s.networks.Active()
	if chainID != 0 {
		network, err = netreg.Resolve(chainID)
		if err != nil {
			return nil, err
		}
	}

	// 2. explicit confirmation, before any network call
	if confirm == nil || !confirm.Confirm(ctx, ConfirmDetails{To: toAddress, Amount: amount, Network: network}) {
		s.log.Info().Str("to", toAddress).Msg("transfer cancelled by user")
		return &TransferResult{Status: StatusCancelled, ChainID: network.ChainID}, nil
	}

	// 3. connect
	backend, err := s.dial(ctx, network, s.dialTimeout)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	// check balance before constructing; the node would reject the send
	// anyway, but this surfaces a clean taxonomy error instead
	from := crypto.PubkeyToAddress(priv.PublicKey)
	balanceWei, err := backend.BalanceWei(ctx, from)
	if err != nil {
		return nil, err
	}
	have := common.WeiToEther(balanceWei)
	cmp, err := common.CompareEtherAmounts(amount, have)
	if err != nil {
		return nil, err
	}
	if cmp > 0 {
		return nil, apperr.Newf(apperr.KindInvalidAmount, "insufficient balance: have %s, sending %s", have, amount)
	}

	// 4-6. construct, sign locally, submit once
	to := ethcommon.HexToAddress(toAddress)
	tx, err := backend.SendValue(ctx, priv, to, wei)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{TxHash: tx.Hash().Hex(), ChainID: network.ChainID}

	// 7. bounded confirmation wait; a timeout is "submitted, pending"
	receipt, err := backend.WaitMined(ctx, tx, s.confirmWait)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConfirmationTimeout) {
			s.log.Warn().Str("txHash", result.TxHash).Msg("broadcast succeeded, confirmation pending")
			result.Status = StatusPending
			return result, nil
		}
		return nil, err
	}
	if receipt.Status != 1 {
		return nil, apperr.Newf(apperr.KindBroadcast, "transaction %s reverted on chain", result.TxHash)
	}

	s.log.Info().Str("txHash", result.TxHash).Uint64("block", receipt.BlockNumber.Uint64()).Msg("transfer confirmed")
	result.Status = StatusConfirmed
	return result, nil
}

// BalanceResult is the display-ready balance of the active address.
type BalanceResult struct {
	Address string
	Balance string // native units, decimal string
	Network netreg.Network
	Rate    string // native/USD, best effort
	USD     string
}

// Balance queries the balance of the wallet address on the given network
// (chain id zero selects the active network). Reading a balance is not a
// secret operation, so no authentication is required.
func (s *Session) Balance(ctx context.Context, chainID uint64) (*BalanceResult, error) {
	address := s.Address()
	if address == "" {
		return nil, apperr.New(apperr.KindMissingKey, "no wallet exists")
	}

	network := s.networks.Active()
	if chainID != 0 {
		var err error
		network, err = netreg.Resolve(chainID)
		if err != nil {
			return nil, err
		}
	}

	backend, err := s.dial(ctx, network, s.dialTimeout)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	wei, err := backend.BalanceWei(ctx, ethcommon.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	result := &BalanceResult{
		Address: address,
		Balance: common.WeiToEther(wei),
		Network: network,
	}

	if s.rates != nil {
		rate, err := s.rates.GetUSDRate(network.Symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", network.Symbol).Msg("failed to get USD rate")
		} else {
			result.Rate = rate
			result.USD = usdValue(result.Balance, rate)
		}
	}
	return result, nil
}

// zeroKey wipes the secret scalar of the borrowed key.
func zeroKey(priv *ecdsa.PrivateKey) {
	if priv != nil && priv.D != nil {
		priv.D.SetInt64(0)
	}
}
