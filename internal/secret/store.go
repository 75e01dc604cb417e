// Package secret is the durable, access-controlled store for the private key
// and mnemonic phrase. Secrets live encrypted in a single vault file; the
// address is public envelope metadata readable without the passphrase.
package secret

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/authgate"
	"github.com/voxwallet/walletd/internal/model"
)

// Vault keys for the two stored secrets.
const (
	KeyPrivateKey = "privateKey"
	KeyMnemonic   = "phraseKey"
)

// Gate authenticates the device holder before a gated operation proceeds.
type Gate interface {
	Challenge(ctx context.Context, prompt string) authgate.Result
}

// PassphraseFunc supplies the vault passphrase; callers zero the returned slice.
type PassphraseFunc func() ([]byte, error)

// Store holds secrets behind the vault file.
type Store struct {
	mu     sync.Mutex
	path   string
	params ScryptParams
	pass   PassphraseFunc
	gate   Gate
	log    zerolog.Logger
}

// NewStore creates a secret store over the vault file at path.
func NewStore(path string, params ScryptParams, pass PassphraseFunc, log zerolog.Logger) *Store {
	return &Store{
		path:   path,
		params: params,
		pass:   pass,
		log:    log.With().Str("component", "secret").Logger(),
	}
}

// UseGate attaches the authentication gate for the authenticated operations.
func (s *Store) UseGate(gate Gate) {
	s.gate = gate
}

// Get returns the stored secret, with ok=false when the key (or the whole
// vault) is absent. Absence is a valid result, not an error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key)
}

// GetAuthenticated invokes the authentication gate first and only reads the
// secret if the challenge is granted.
func (s *Store) GetAuthenticated(ctx context.Context, key string) (string, bool, error) {
	if err := s.challenge(ctx, "Authenticate to access your wallet"); err != nil {
		return "", false, err
	}
	return s.Get(ctx, key)
}

// Set persists value under key, re-encrypting the vault with a fresh salt
// and nonce.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(key, value)
}

// SetAuthenticated is the gated write path.
func (s *Store) SetAuthenticated(ctx context.Context, key, value string) error {
	if err := s.challenge(ctx, "Authenticate to proceed"); err != nil {
		return err
	}
	return s.Set(ctx, key, value)
}

// Clear removes key from the vault, best effort. Failures are logged, not
// surfaced: wallet reset must proceed even if one key fails to delete.
// When the last secret is removed the vault file itself is deleted.
func (s *Store) Clear(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, secrets, err := s.open()
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to open vault for clear")
		return
	}
	if env == nil {
		return
	}
	if _, ok := secrets[key]; !ok {
		return
	}
	delete(secrets, key)

	if len(secrets) == 0 {
		if err := removeFile(s.path); err != nil {
			s.log.Warn().Err(err).Msg("failed to remove empty vault file")
		}
		return
	}
	if err := s.write(env, secrets); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to rewrite vault after clear")
	}
}

// Address returns the wallet address from the vault envelope without
// decryption, or "" if no vault exists.
func (s *Store) Address() (string, error) {
	env, err := readEnvelope(s.path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorageRead, "failed to read vault envelope", err)
	}
	if env == nil {
		return "", nil
	}
	return env.Address, nil
}

// Envelope returns the public part of the vault, or nil if no vault exists.
func (s *Store) Envelope() (*model.EWTFile, error) {
	env, err := readEnvelope(s.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorageRead, "failed to read vault envelope", err)
	}
	return env, nil
}

// Stamp sets the public envelope metadata. The ciphertext is untouched.
func (s *Store) Stamp(address, qr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, secrets, err := s.open()
	if err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to open vault for stamping", err)
	}
	if env == nil {
		return apperr.New(apperr.KindStorageWrite, "cannot stamp a vault that does not exist")
	}
	env.Address = address
	env.QR = qr
	if err := s.write(env, secrets); err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to write vault metadata", err)
	}
	return nil
}

// VerifyPassphrase checks the passphrase against the vault ciphertext.
// Returns nil when no vault exists yet (nothing to verify against).
func (s *Store) VerifyPassphrase(passphrase []byte) error {
	env, err := readEnvelope(s.path)
	if err != nil || env == nil {
		return err
	}
	secrets, err := decryptSecrets(env, passphrase, s.params)
	if err != nil {
		return err
	}
	wipeSecrets(secrets)
	return nil
}

func (s *Store) get(key string) (string, bool, error) {
	env, secrets, err := s.open()
	if err != nil {
		if errors.Is(err, errInvalidPassphrase) {
			return "", false, apperr.Wrap(apperr.KindStorageRead, "failed to open vault", err)
		}
		return "", false, apperr.Wrap(apperr.KindStorageRead, "failed to read vault", err)
	}
	if env == nil {
		return "", false, nil
	}
	value, ok := secrets[key]
	return value, ok, nil
}

func (s *Store) set(key, value string) error {
	env, secrets, err := s.open()
	if err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to open vault for write", err)
	}
	if env == nil {
		env = &model.EWTFile{}
		secrets = map[string]string{}
	}
	secrets[key] = value
	if err := s.write(env, secrets); err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to write vault", err)
	}
	return nil
}

// open reads and decrypts the vault. A nil envelope means no vault exists.
func (s *Store) open() (*model.EWTFile, map[string]string, error) {
	env, err := readEnvelope(s.path)
	if err != nil {
		return nil, nil, err
	}
	if env == nil {
		return nil, nil, nil
	}

	pass, err := s.pass()
	if err != nil {
		return nil, nil, err
	}
	defer clear(pass)

	secrets, err := decryptSecrets(env, pass, s.params)
	if err != nil {
		return nil, nil, err
	}
	return env, secrets, nil
}

func (s *Store) write(env *model.EWTFile, secrets map[string]string) error {
	pass, err := s.pass()
	if err != nil {
		return err
	}
	defer clear(pass)
	defer wipeSecrets(secrets)

	return writeVault(s.path, env, secrets, pass, s.params)
}

func (s *Store) challenge(ctx context.Context, prompt string) error {
	if s.gate == nil {
		return apperr.Auth(apperr.ReasonNoEnrolledMethod, "no authentication gate configured")
	}
	return s.gate.Challenge(ctx, prompt).Err()
}

func wipeSecrets(secrets map[string]string) {
	for k := range secrets {
		delete(secrets, k)
	}
}
