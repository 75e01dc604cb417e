// Package netreg maps logical chain identifiers to RPC endpoints and chain
// metadata, and owns the single persisted "currently selected network".
package netreg

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/apperr"
)

// Network describes one EIP-155 chain in the static registry.
type Network struct {
	Name           string
	Symbol         string
	ChainID        uint64
	RPCURL         string
	ExplorerAPIURL string
	Icon           string
}

// The registry is fixed at build time. The first entry is the deterministic
// fallback when no selection is stored or the stored value no longer resolves.
var networks = []Network{
	{
		Name:           "Sepolia",
		Symbol:         "Sep",
		ChainID:        11155111,
		RPCURL:         "https://sepolia.drpc.org",
		ExplorerAPIURL: "https://api-sepolia.etherscan.io/api",
		Icon:           "ethereum",
	},
	{
		Name:           "Binance Smart Chain Testnet",
		Symbol:         "BNB",
		ChainID:        97,
		RPCURL:         "https://data-seed-prebsc-1-s1.bnbchain.org:8545",
		ExplorerAPIURL: "https://api-testnet.bscscan.com/api",
		Icon:           "binance",
	},
	{
		Name:           "Ethereum Mainnet",
		Symbol:         "ETH",
		ChainID:        1,
		RPCURL:         "https://rpc.ankr.com/eth",
		ExplorerAPIURL: "https://api.etherscan.io/api",
		Icon:           "ethereum",
	},
	{
		Name:           "Binance Smart Chain Mainnet",
		Symbol:         "BSC",
		ChainID:        56,
		RPCURL:         "https://bsc-dataseed.binance.org/",
		ExplorerAPIURL: "https://api.bscscan.com/api",
		Icon:           "binance",
	},
	{
		Name:           "Linea Mainnet",
		Symbol:         "ETH",
		ChainID:        59144,
		RPCURL:         "https://rpc.linea.build",
		ExplorerAPIURL: "https://api.lineascan.build/api",
		Icon:           "linea",
	},
	{
		Name:           "Polygon Mainnet",
		Symbol:         "MATIC",
		ChainID:        137,
		RPCURL:         "https://polygon-rpc.com",
		ExplorerAPIURL: "https://api.polygonscan.com/api",
		Icon:           "polygon",
	},
}

// MetaStore is the persistence boundary for the selected chain id.
type MetaStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

const liveNetworkKey = "live_network"

// Resolver serves registry lookups and the active-network selection.
// The in-memory selection and the persisted one change under a single lock,
// so partial state is never observable.
type Resolver struct {
	mu     sync.Mutex
	meta   MetaStore
	active Network
	loaded bool
	log    zerolog.Logger
}

// NewResolver creates a resolver over the given metadata store.
func NewResolver(meta MetaStore, log zerolog.Logger) *Resolver {
	return &Resolver{meta: meta, log: log.With().Str("component", "netreg").Logger()}
}

// Networks returns a copy of the static registry.
func Networks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)
	return out
}

// Default returns the deterministic fallback network (first registry entry).
func Default() Network {
	return networks[0]
}

// Resolve looks up a chain id in the static registry.
func Resolve(chainID uint64) (Network, error) {
	for _, n := range networks {
		if n.ChainID == chainID {
			return n, nil
		}
	}
	return Network{}, apperr.Newf(apperr.KindUnknownNetwork, "unknown chain id %d", chainID)
}

// LoadActive reads the persisted selection. Absent or unresolvable selections
// fall back to the default network.
func (r *Resolver) LoadActive() Network {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.active
	}

	r.active = Default()
	r.loaded = true

	raw, err := r.meta.Get(liveNetworkKey)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to load network selection, using default")
		return r.active
	}
	if raw == "" {
		return r.active
	}

	chainID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		r.log.Warn().Str("value", raw).Msg("stored network selection is malformed, using default")
		return r.active
	}
	network, err := Resolve(chainID)
	if err != nil {
		r.log.Warn().Uint64("chainId", chainID).Msg("stored network selection no longer resolves, using default")
		return r.active
	}

	r.active = network
	return r.active
}

// Active returns the current selection, loading it on first use.
func (r *Resolver) Active() Network {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if !loaded {
		return r.LoadActive()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActive selects a network. Re-selecting the already-active chain id is a
// no-op with no persistence write.
func (r *Resolver) SetActive(chainID uint64) error {
	network, err := Resolve(chainID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded && r.active.ChainID == chainID {
		return nil
	}
	if err := r.meta.Set(liveNetworkKey, strconv.FormatUint(chainID, 10)); err != nil {
		return err
	}
	r.active = network
	r.loaded = true
	return nil
}
