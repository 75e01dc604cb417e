// Package keys is the only component that produces raw key material.
// Derivation follows BIP-39/BIP-44 at the standard EVM path m/44'/60'/0'/0/0,
// so a phrase restored here yields the same address as any mainstream wallet.
package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/voxwallet/walletd/internal/apperr"
)

const (
	// 128 bits of entropy yields a 12-word mnemonic
	mnemonicEntropyBits = 128

	purposeIndex  = 44
	coinTypeEther = 60
)

// KeyMaterial holds a derived key pair. The private key and mnemonic are
// sensitive; call Destroy as soon as the material has been persisted or used.
type KeyMaterial struct {
	priv     []byte // 32-byte secp256k1 scalar
	Address  string // EIP-55 checksummed
	Mnemonic string // empty when imported from a raw key
}

// PrivateKeyHex returns the 0x-prefixed hex encoding of the private key.
func (k *KeyMaterial) PrivateKeyHex() string {
	return "0x" + hex.EncodeToString(k.priv)
}

// Destroy overwrites the private key bytes. The address stays readable.
func (k *KeyMaterial) Destroy() {
	clear(k.priv)
	k.priv = nil
}

// Generate draws fresh entropy and derives a mnemonic with its key pair.
// Entropy is never reused across calls.
func Generate() (*KeyMaterial, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidMnemonic, "failed to generate entropy", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidMnemonic, "failed to generate mnemonic", err)
	}

	return RestoreFromPhrase(mnemonic)
}

// ImportFromPrivateKey validates a raw hex private key and derives its address.
// The mnemonic is absent for imported keys.
func ImportFromPrivateKey(rawKey string) (*KeyMaterial, error) {
	cleaned := strings.TrimSpace(rawKey)
	cleaned = strings.TrimPrefix(cleaned, "0x")

	if len(cleaned) != 64 {
		return nil, apperr.Newf(apperr.KindInvalidKeyFormat, "private key must be 64 hex characters, got %d", len(cleaned))
	}

	priv, err := crypto.HexToECDSA(cleaned)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidKeyFormat, "malformed private key", err)
	}

	raw := crypto.FromECDSA(priv)
	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()
	zeroScalar(priv)

	return &KeyMaterial{priv: raw, Address: address}, nil
}

// RestoreFromPhrase validates a BIP-39 phrase against the wordlist and checksum
// and derives the key pair at m/44'/60'/0'/0/0.
// Deterministic: the same phrase always yields the same address.
func RestoreFromPhrase(phrase string) (*KeyMaterial, error) {
	mnemonic := normalizePhrase(phrase)
	if mnemonic == "" {
		return nil, apperr.New(apperr.KindInvalidMnemonic, "mnemonic phrase cannot be empty")
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, apperr.New(apperr.KindInvalidMnemonic, "invalid mnemonic phrase")
	}

	seed := bip39.NewSeed(mnemonic, "")
	defer clear(seed)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidMnemonic, "failed to derive master key", err)
	}
	defer master.Zero()

	// m/44'/60'/0'/0/0
	path := []uint32{
		hdkeychain.HardenedKeyStart + purposeIndex,
		hdkeychain.HardenedKeyStart + coinTypeEther,
		hdkeychain.HardenedKeyStart + 0,
		0,
		0,
	}

	node := master
	for _, index := range path {
		child, err := node.Derive(index)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidMnemonic, "failed to derive child key", err)
		}
		if node != master {
			node.Zero()
		}
		node = child
	}
	defer node.Zero()

	ecPriv, err := node.ECPrivKey()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidMnemonic, "failed to extract private key", err)
	}

	priv := ecPriv.ToECDSA()
	raw := crypto.FromECDSA(priv)
	address := crypto.PubkeyToAddress(priv.PublicKey).Hex()
	zeroScalar(priv)

	return &KeyMaterial{priv: raw, Address: address, Mnemonic: mnemonic}, nil
}

// AddressFromPrivateKeyHex derives the address for an already-validated stored key.
func AddressFromPrivateKeyHex(keyHex string) (string, error) {
	km, err := ImportFromPrivateKey(keyHex)
	if err != nil {
		return "", err
	}
	defer km.Destroy()
	return km.Address, nil
}

func normalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(phrase))), " ")
}

// zeroScalar wipes the secret scalar of a parsed key once its raw bytes are copied out.
func zeroScalar(priv *ecdsa.PrivateKey) {
	if priv != nil && priv.D != nil {
		priv.D.SetInt64(0)
	}
}
