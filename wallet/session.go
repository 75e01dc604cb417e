// Package wallet is the session façade the UI collaborator talks to. It owns
// the in-memory address state and coordinates key material, the secret vault,
// plaintext metadata, network selection and the transaction path. No other
// component is exposed to callers.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/keys"
	"github.com/voxwallet/walletd/internal/netreg"
	"github.com/voxwallet/walletd/internal/secret"
	"github.com/voxwallet/walletd/internal/store"
)

// SecretStore is the vault boundary used by the session.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetAuthenticated(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetAuthenticated(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string)
	Stamp(address, qr string) error
}

// MetaStore is the plaintext metadata boundary used by the session.
type MetaStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Backend is one live connection to a network endpoint.
type Backend interface {
	Network() netreg.Network
	BalanceWei(ctx context.Context, address common.Address) (*big.Int, error)
	SendValue(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, wei *big.Int) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction, wait time.Duration) (*types.Receipt, error)
	Close()
}

// Dialer opens a Backend for a network within the given timeout.
type Dialer func(ctx context.Context, network netreg.Network, timeout time.Duration) (Backend, error)

// RateSource supplies a best-effort native/USD rate for display.
type RateSource interface {
	GetUSDRate(symbol string) (string, error)
}

// Options configures a Session.
type Options struct {
	Dial        Dialer
	Rates       RateSource // optional
	DialTimeout time.Duration
	ConfirmWait time.Duration
	Logger      zerolog.Logger
}

// Session is the per-device wallet session. Constructed once at startup;
// Load restores the persisted address into memory.
type Session struct {
	secrets  SecretStore
	meta     MetaStore
	networks *netreg.Resolver
	dial     Dialer
	rates    RateSource
	log      zerolog.Logger

	dialTimeout time.Duration
	confirmWait time.Duration

	mu      sync.Mutex
	address string

	// serializes transfers; a second concurrent transfer is rejected
	transferMu sync.Mutex
}

// New creates a session over the given stores and network resolver.
func New(secrets SecretStore, meta MetaStore, networks *netreg.Resolver, opts Options) *Session {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.ConfirmWait == 0 {
		opts.ConfirmWait = 90 * time.Second
	}
	return &Session{
		secrets:     secrets,
		meta:        meta,
		networks:    networks,
		dial:        opts.Dial,
		rates:       opts.Rates,
		log:         opts.Logger.With().Str("component", "wallet").Logger(),
		dialTimeout: opts.DialTimeout,
		confirmWait: opts.ConfirmWait,
	}
}

// Load reads the persisted address into memory at session start. The
// has-wallet flag is the authoritative witness: it is written only after the
// key is durably stored, so an address without the flag is a partial persist
// and must read as "no wallet". An absent flag means onboarding is not
// complete; that is a valid state.
func (s *Session) Load(ctx context.Context) error {
	flag, err := s.meta.Get(store.KeyHasWallet)
	if err != nil {
		return err
	}
	address, err := s.meta.Get(store.KeyAddress)
	if err != nil {
		return err
	}
	if flag != "true" {
		if address != "" {
			s.log.Warn().Str("address", address).Msg("address present without the has-wallet flag, ignoring")
		}
		address = ""
	}

	s.mu.Lock()
	s.address = address
	s.mu.Unlock()

	if address == "" {
		s.log.Info().Msg("no wallet found, onboarding not complete")
	} else {
		s.log.Info().Str("address", address).Msg("wallet loaded")
	}
	return nil
}

// Address returns the in-memory wallet address, "" when no wallet exists.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// HasWallet reports whether onboarding completed.
func (s *Session) HasWallet() bool {
	return s.Address() != ""
}

// CreateResult is the outcome of Create. The mnemonic is surfaced exactly
// once, for backup display, and is not retained by the session.
type CreateResult struct {
	Address  string
	Mnemonic string
}

// Create generates a new key pair from fresh entropy and persists it.
func (s *Session) Create(ctx context.Context) (*CreateResult, error) {
	if err := s.ensureNoWallet(); err != nil {
		return nil, err
	}

	km, err := keys.Generate()
	if err != nil {
		return nil, err
	}
	defer km.Destroy()

	if err := s.saveWallet(ctx, km); err != nil {
		return nil, err
	}

	s.log.Info().Str("address", km.Address).Msg("wallet created")
	return &CreateResult{Address: km.Address, Mnemonic: km.Mnemonic}, nil
}

// Import persists a wallet from a raw private key. No mnemonic is stored.
func (s *Session) Import(ctx context.Context, rawKey string) (string, error) {
	if err := s.ensureNoWallet(); err != nil {
		return "", err
	}

	km, err := keys.ImportFromPrivateKey(rawKey)
	if err != nil {
		return "", err
	}
	defer km.Destroy()

	if err := s.saveWallet(ctx, km); err != nil {
		return "", err
	}

	s.log.Info().Str("address", km.Address).Msg("wallet imported")
	return km.Address, nil
}

// Restore derives and persists a wallet from a mnemonic recovery phrase.
func (s *Session) Restore(ctx context.Context, phrase string) (string, error) {
	if err := s.ensureNoWallet(); err != nil {
		return "", err
	}

	km, err := keys.RestoreFromPhrase(phrase)
	if err != nil {
		return "", err
	}
	defer km.Destroy()

	if err := s.saveWallet(ctx, km); err != nil {
		return "", err
	}

	s.log.Info().Str("address", km.Address).Msg("wallet restored from phrase")
	return km.Address, nil
}

// ReceiveResult carries the public receive surface.
type ReceiveResult struct {
	Address string
	QR      string // base64 PNG
}

// Receive returns the wallet address with its QR code. Public data, no
// authentication required.
func (s *Session) Receive(ctx context.Context) (*ReceiveResult, error) {
	address := s.Address()
	if address == "" {
		return nil, apperr.New(apperr.KindMissingKey, "no wallet exists")
	}
	qr, err := generateQRCode(address)
	if err != nil {
		return nil, err
	}
	return &ReceiveResult{Address: address, QR: qr}, nil
}

// RevealMnemonic returns the stored recovery phrase after authentication.
func (s *Session) RevealMnemonic(ctx context.Context) (string, error) {
	phrase, ok, err := s.secrets.GetAuthenticated(ctx, secret.KeyMnemonic)
	if err != nil {
		return "", err
	}
	if !ok || phrase == "" {
		return "", apperr.New(apperr.KindMissingKey, "no mnemonic stored for this wallet")
	}
	return phrase, nil
}

// Reset wipes the wallet after authentication. The has-wallet flag is cleared
// first so no reader can observe a wallet without a usable key; the secret
// deletions are best effort.
func (s *Session) Reset(ctx context.Context) error {
	// force a challenge before any destructive step
	if _, _, err := s.secrets.GetAuthenticated(ctx, secret.KeyPrivateKey); err != nil {
		if apperr.IsKind(err, apperr.KindAuthentication) {
			return err
		}
		s.log.Warn().Err(err).Msg("vault unreadable during reset, wiping anyway")
	}

	if err := s.meta.Delete(store.KeyHasWallet); err != nil {
		return err
	}
	if err := s.meta.Delete(store.KeyAddress); err != nil {
		return err
	}

	s.secrets.Clear(ctx, secret.KeyPrivateKey)
	s.secrets.Clear(ctx, secret.KeyMnemonic)

	s.mu.Lock()
	s.address = ""
	s.mu.Unlock()

	s.log.Info().Msg("wallet reset")
	return nil
}

func (s *Session) ensureNoWallet() error {
	if s.HasWallet() {
		return apperr.New(apperr.KindWalletExists, "a wallet already exists; reset it first")
	}
	return nil
}

// saveWallet persists key material and metadata in the invariant-preserving
// order: secrets first, the has-wallet flag last. A failure partway rolls the
// secret writes back so the flag and the vault never disagree.
func (s *Session) saveWallet(ctx context.Context, km *keys.KeyMaterial) (err error) {
	defer func() {
		if err != nil {
			s.rollbackSave(ctx)
		}
	}()

	if err = s.secrets.SetAuthenticated(ctx, secret.KeyPrivateKey, km.PrivateKeyHex()); err != nil {
		return err
	}
	if km.Mnemonic != "" {
		if err = s.secrets.Set(ctx, secret.KeyMnemonic, km.Mnemonic); err != nil {
			return err
		}
	}

	qr, qrErr := generateQRCode(km.Address)
	if qrErr != nil {
		// the QR is display sugar; the envelope still gets the address
		s.log.Warn().Err(qrErr).Msg("failed to generate receive QR")
	}
	if err = s.secrets.Stamp(km.Address, qr); err != nil {
		return err
	}

	if err = s.meta.Set(store.KeyAddress, km.Address); err != nil {
		return err
	}
	if err = s.meta.Set(store.KeyHasWallet, "true"); err != nil {
		return err
	}

	s.mu.Lock()
	s.address = km.Address
	s.mu.Unlock()
	return nil
}

// rollbackSave undoes a partial persist so the observable state returns to
// "no wallet".
func (s *Session) rollbackSave(ctx context.Context) {
	if err := s.meta.Delete(store.KeyHasWallet); err != nil {
		s.log.Warn().Err(err).Msg("rollback: failed to clear has-wallet flag")
	}
	if err := s.meta.Delete(store.KeyAddress); err != nil {
		s.log.Warn().Err(err).Msg("rollback: failed to clear address")
	}
	s.secrets.Clear(ctx, secret.KeyPrivateKey)
	s.secrets.Clear(ctx, secret.KeyMnemonic)
}
