package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/netreg"
)

const (
	// Gas limit for a simple value transfer
	transferGasLimit = 21000
)

// EthClient wraps a JSON-RPC connection to one network's endpoint.
type EthClient struct {
	ec      *ethclient.Client
	network netreg.Network
	log     zerolog.Logger
}

// Dial connects to the network's RPC endpoint and verifies it answers within
// the timeout. The endpoint's chain id must match the registry entry.
func Dial(ctx context.Context, network netreg.Network, timeout time.Duration, log zerolog.Logger) (*EthClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ec, err := ethclient.DialContext(dialCtx, network.RPCURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetworkConnection, "failed to connect to RPC endpoint", err)
	}

	chainID, err := ec.ChainID(dialCtx)
	if err != nil {
		ec.Close()
		return nil, apperr.Wrap(apperr.KindNetworkConnection, "RPC endpoint did not respond", err)
	}
	if chainID.Uint64() != network.ChainID {
		ec.Close()
		return nil, apperr.Newf(apperr.KindNetworkConnection,
			"endpoint reports chain id %s, expected %d", chainID, network.ChainID)
	}

	return &EthClient{
		ec:      ec,
		network: network,
		log:     log.With().Str("component", "ethclient").Uint64("chainId", network.ChainID).Logger(),
	}, nil
}

// Close releases the underlying connection.
func (c *EthClient) Close() {
	c.ec.Close()
}

// Network returns the registry entry this client is connected to.
func (c *EthClient) Network() netreg.Network {
	return c.network
}

// BalanceWei queries the confirmed balance of an address in base units.
func (c *EthClient) BalanceWei(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.ec.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBalanceQuery, "failed to query balance", err)
	}
	return balance, nil
}

// SendValue builds, signs and broadcasts a simple value transfer.
// Signing happens locally; the key never leaves the process. The signed
// transaction is submitted exactly once - retrying a broadcast is the
// caller's decision, never automatic.
func (c *EthClient) SendValue(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (*types.Transaction, error) {
	from := commonAddressOf(key)

	nonce, err := c.ec.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBroadcast, "failed to fetch nonce", err)
	}

	tx, err := c.buildTransferTx(ctx, nonce, to, wei)
	if err != nil {
		return nil, err
	}

	chainID := new(big.Int).SetUint64(c.network.ChainID)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBroadcast, "failed to sign transaction", err)
	}

	if err := c.ec.SendTransaction(ctx, signed); err != nil {
		return nil, apperr.Wrap(apperr.KindBroadcast, "transaction rejected by node", err)
	}

	c.log.Info().Str("txHash", signed.Hash().Hex()).Str("to", to.Hex()).Msg("transaction broadcast")
	return signed, nil
}

// buildTransferTx prefers EIP-1559 fees and falls back to a legacy gas price
// on chains whose head carries no base fee.
func (c *EthClient) buildTransferTx(ctx context.Context, nonce uint64, to common.Address, wei *big.Int) (*types.Transaction, error) {
	head, err := c.ec.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBroadcast, "failed to fetch chain head", err)
	}

	chainID := new(big.Int).SetUint64(c.network.ChainID)

	if head.BaseFee == nil {
		gasPrice, err := c.ec.SuggestGasPrice(ctx)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindBroadcast, "failed to fetch gas price", err)
		}
		return types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      transferGasLimit,
			To:       &to,
			Value:    wei,
		}), nil
	}

	tip, err := c.ec.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBroadcast, "failed to fetch gas tip", err)
	}
	// fee cap = 2*baseFee + tip, room for one doubling before repricing
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       transferGasLimit,
		To:        &to,
		Value:     wei,
	}), nil
}

// WaitMined polls for the transaction's inclusion within the bounded wait.
// A timeout means "submitted, confirmation pending", not a failed broadcast.
func (c *EthClient) WaitMined(ctx context.Context, tx *types.Transaction, wait time.Duration) (*types.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := c.ec.TransactionReceipt(waitCtx, tx.Hash())
		if err == nil {
			return receipt, nil
		}
		if !isNotFound(err) {
			c.log.Debug().Err(err).Msg("receipt poll failed, retrying")
		}

		select {
		case <-waitCtx.Done():
			return nil, apperr.Wrap(apperr.KindConfirmationTimeout,
				"transaction not confirmed within wait window", waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// isNotFound matches the not-yet-mined poll result, wrapped or not.
func isNotFound(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

func commonAddressOf(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
