package keys

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet/walletd/internal/apperr"
)

// Well-known development mnemonic and its m/44'/60'/0'/0/0 address.
const (
	devPhrase  = "test test test test test test test test test test test junk"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	devPrivKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

func TestGenerate(t *testing.T) {
	km, err := Generate()
	require.NoError(t, err)
	defer km.Destroy()

	assert.Regexp(t, addressPattern, km.Address)
	words := strings.Fields(km.Mnemonic)
	assert.Len(t, words, 12)
	assert.True(t, strings.HasPrefix(km.PrivateKeyHex(), "0x"))
	assert.Len(t, km.PrivateKeyHex(), 66)
}

func TestGenerate_FreshEntropy(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	defer first.Destroy()

	second, err := Generate()
	require.NoError(t, err)
	defer second.Destroy()

	assert.NotEqual(t, first.Address, second.Address)
	assert.NotEqual(t, first.Mnemonic, second.Mnemonic)
}

func TestRestoreFromPhrase_KnownVector(t *testing.T) {
	km, err := RestoreFromPhrase(devPhrase)
	require.NoError(t, err)
	defer km.Destroy()

	assert.Equal(t, devAddress, km.Address)
	assert.Equal(t, devPhrase, km.Mnemonic)
	assert.Equal(t, devPrivKey, km.PrivateKeyHex())
}

func TestRestoreFromPhrase_Deterministic(t *testing.T) {
	first, err := RestoreFromPhrase(devPhrase)
	require.NoError(t, err)
	defer first.Destroy()

	second, err := RestoreFromPhrase(devPhrase)
	require.NoError(t, err)
	defer second.Destroy()

	assert.Equal(t, first.Address, second.Address)
}

func TestRestoreFromPhrase_NormalizesWhitespaceAndCase(t *testing.T) {
	messy := "  Test TEST test test test test\ttest test test test test JUNK  "
	km, err := RestoreFromPhrase(messy)
	require.NoError(t, err)
	defer km.Destroy()

	assert.Equal(t, devAddress, km.Address)
	assert.Equal(t, devPhrase, km.Mnemonic)
}

func TestRestoreFromPhrase_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		phrase string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"wrong word count", "test test test"},
		{"not in wordlist", "zzzz test test test test test test test test test test junk"},
		{"bad checksum", "test test test test test test test test test test test test"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			km, err := RestoreFromPhrase(tc.phrase)
			require.Error(t, err)
			assert.Nil(t, km)
			assert.Equal(t, apperr.KindInvalidMnemonic, apperr.KindOf(err))
		})
	}
}

func TestImportFromPrivateKey(t *testing.T) {
	km, err := ImportFromPrivateKey(devPrivKey)
	require.NoError(t, err)
	defer km.Destroy()

	assert.Equal(t, devAddress, km.Address)
	assert.Empty(t, km.Mnemonic)
	assert.Equal(t, devPrivKey, km.PrivateKeyHex())
}

func TestImportFromPrivateKey_NoPrefix(t *testing.T) {
	km, err := ImportFromPrivateKey(strings.TrimPrefix(devPrivKey, "0x"))
	require.NoError(t, err)
	defer km.Destroy()

	assert.Equal(t, devAddress, km.Address)
}

func TestImportFromPrivateKey_Invalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"too short", "0xabcdef"},
		{"too long", devPrivKey + "00"},
		{"not hex", "0x" + strings.Repeat("zz", 32)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			km, err := ImportFromPrivateKey(tc.key)
			require.Error(t, err)
			assert.Nil(t, km)
			assert.Equal(t, apperr.KindInvalidKeyFormat, apperr.KindOf(err))
		})
	}
}

func TestGenerateThenRestore_RoundTrip(t *testing.T) {
	km, err := Generate()
	require.NoError(t, err)
	defer km.Destroy()

	restored, err := RestoreFromPhrase(km.Mnemonic)
	require.NoError(t, err)
	defer restored.Destroy()
	assert.Equal(t, km.Address, restored.Address)

	imported, err := ImportFromPrivateKey(km.PrivateKeyHex())
	require.NoError(t, err)
	defer imported.Destroy()
	assert.Equal(t, km.Address, imported.Address)
}

func TestAddressFromPrivateKeyHex(t *testing.T) {
	address, err := AddressFromPrivateKeyHex(devPrivKey)
	require.NoError(t, err)
	assert.Equal(t, devAddress, address)
}

func TestKeyMaterial_Destroy(t *testing.T) {
	km, err := ImportFromPrivateKey(devPrivKey)
	require.NoError(t, err)

	km.Destroy()
	assert.Equal(t, "0x", km.PrivateKeyHex())
	assert.Equal(t, devAddress, km.Address)
}
