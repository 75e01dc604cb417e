package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/authgate"
)

// Fast KDF parameters; production strength is irrelevant to store semantics.
var testParams = ScryptParams{N: 1 << 4, R: 8, P: 1, KeyLen: 32}

func passFunc(pass string) PassphraseFunc {
	return func() ([]byte, error) { return []byte(pass), nil }
}

type stubGate struct {
	res   authgate.Result
	calls int
}

func (g *stubGate) Challenge(ctx context.Context, prompt string) authgate.Result {
	g.calls++
	return g.res
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.ewt")
	return NewStore(path, testParams, passFunc("hunter2"), zerolog.Nop())
}

func TestGet_NoVault(t *testing.T) {
	s := newTestStore(t)

	value, ok, err := s.Get(context.Background(), KeyPrivateKey)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	require.NoError(t, s.Set(ctx, KeyMnemonic, "test junk phrase"))

	value, ok, err := s.Get(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xdeadbeef", value)

	value, ok, err = s.Get(ctx, KeyMnemonic)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "test junk phrase", value)
}

func TestGet_AbsentKeyInExistingVault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	_, ok, err := s.Get(ctx, KeyMnemonic)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet_WrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.ewt")
	ctx := context.Background()

	writer := NewStore(path, testParams, passFunc("correct"), zerolog.Nop())
	require.NoError(t, writer.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	reader := NewStore(path, testParams, passFunc("wrong"), zerolog.Nop())
	_, _, err := reader.Get(ctx, KeyPrivateKey)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorageRead, apperr.KindOf(err))
}

func TestVaultFileIsOpaque(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "0xdeadbeef")
	assert.NotContains(t, string(raw), "hunter2")

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestSet_FreshSaltAndNoncePerWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	first, err := s.Envelope()
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, KeyMnemonic, "test junk phrase"))
	second, err := s.Envelope()
	require.NoError(t, err)

	assert.NotEqual(t, first.Salt, second.Salt)
	assert.NotEqual(t, first.Nonce, second.Nonce)
}

func TestAddress_ReadableWithoutDecryption(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	require.NoError(t, s.Stamp("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", "qr-png"))

	// The passphrase must not be needed for the public envelope.
	s.pass = func() ([]byte, error) { return nil, errors.New("passphrase must not be requested") }

	address, err := s.Address()
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", address)

	env, err := s.Envelope()
	require.NoError(t, err)
	assert.Equal(t, "qr-png", env.QR)
	assert.Equal(t, "evm", env.Network)
	assert.NotEmpty(t, env.CreatedAt)
}

func TestAddress_NoVault(t *testing.T) {
	s := newTestStore(t)

	address, err := s.Address()
	require.NoError(t, err)
	assert.Empty(t, address)
}

func TestStamp_NoVault(t *testing.T) {
	s := newTestStore(t)

	err := s.Stamp("0xabc", "qr")
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorageWrite, apperr.KindOf(err))
}

func TestStamp_PreservesSecrets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	require.NoError(t, s.Stamp("0xabc", "qr"))

	value, ok, err := s.Get(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xdeadbeef", value)
}

func TestClear_RemovesSingleKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	require.NoError(t, s.Set(ctx, KeyMnemonic, "test junk phrase"))

	s.Clear(ctx, KeyMnemonic)

	_, ok, err := s.Get(ctx, KeyMnemonic)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClear_LastKeyRemovesVaultFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	s.Clear(ctx, KeyPrivateKey)

	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestClear_AbsentKeyAndVaultAreNoops(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Clear(ctx, KeyPrivateKey) // no vault

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))
	s.Clear(ctx, KeyMnemonic) // absent key

	_, ok, err := s.Get(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetAuthenticated_Granted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	gate := &stubGate{res: authgate.Result{OK: true}}
	s.UseGate(gate)

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	value, ok, err := s.GetAuthenticated(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xdeadbeef", value)
	assert.Equal(t, 1, gate.calls)
}

func TestGetAuthenticated_Denied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.UseGate(&stubGate{res: authgate.Result{Reason: apperr.ReasonUserCancelled}})

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	value, ok, err := s.GetAuthenticated(ctx, KeyPrivateKey)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonUserCancelled, apperr.ReasonOf(err))
}

func TestSetAuthenticated_Denied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.UseGate(&stubGate{res: authgate.Result{Reason: apperr.ReasonSystem}})

	err := s.SetAuthenticated(ctx, KeyPrivateKey, "0xdeadbeef")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	// Denied write must leave no vault behind.
	_, statErr := os.Stat(s.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAuthenticatedOps_NoGateConfigured(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.GetAuthenticated(ctx, KeyPrivateKey)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonNoEnrolledMethod, apperr.ReasonOf(err))
}

func TestVerifyPassphrase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Nothing to verify against yet.
	assert.NoError(t, s.VerifyPassphrase([]byte("anything")))

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	assert.NoError(t, s.VerifyPassphrase([]byte("hunter2")))
	assert.Error(t, s.VerifyPassphrase([]byte("wrong")))
}

func TestWriteVault_RequiresExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.txt")
	s := NewStore(path, testParams, passFunc("hunter2"), zerolog.Nop())

	err := s.Set(context.Background(), KeyPrivateKey, "0xdeadbeef")
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorageWrite, apperr.KindOf(err))
}

func TestReadEnvelope_SkipsBOM(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyPrivateKey, "0xdeadbeef"))

	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.path, append([]byte{0xEF, 0xBB, 0xBF}, raw...), 0600))

	value, ok, err := s.Get(ctx, KeyPrivateKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xdeadbeef", value)
}
