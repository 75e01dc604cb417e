package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/scrypt"

	"github.com/voxwallet/walletd/internal/model"
)

// ScryptParams are the KDF cost parameters for the vault.
type ScryptParams struct {
	N      int
	R      int
	P      int
	KeyLen int
}

// DefaultScryptParams prioritize security over performance.
//
// N=2^18 (~256MB RAM, 0.5-2s) - optimal balance:
//   - Maximum security while remaining compatible with mobile devices
//   - Brute-force attacks remain extremely expensive
//
// Note: N=2^20 (~1GB) offers higher security but fails on memory-constrained
// devices (~256-512MB typically available per app)
var DefaultScryptParams = ScryptParams{N: 1 << 18, R: 8, P: 1, KeyLen: 32}

const (
	saltLen  = 32
	nonceLen = 12

	vaultExt   = ".ewt"
	networkEVM = "evm"
	utf8BOMLen = 3
)

var errInvalidPassphrase = errors.New("invalid passphrase")

// removeFile deletes the vault file; an already-absent file is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readEnvelope reads the public vault envelope without decrypting.
// Returns nil with no error if the file does not exist or is empty.
func readEnvelope(path string) (*model.EWTFile, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read vault file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(fileData) >= utf8BOMLen && fileData[0] == 0xEF && fileData[1] == 0xBB && fileData[2] == 0xBF {
		fileData = fileData[utf8BOMLen:]
	}
	if len(fileData) == 0 {
		return nil, nil
	}

	var env model.EWTFile
	if err := json.Unmarshal(fileData, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault file: %w", err)
	}
	return &env, nil
}

// decryptSecrets opens the envelope's ciphertext with the passphrase.
func decryptSecrets(env *model.EWTFile, passphrase []byte, params ScryptParams) (map[string]string, error) {
	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	key, err := scrypt.Key(passphrase, salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errInvalidPassphrase
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	secrets := map[string]string{}
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vault secrets: %w", err)
	}
	return secrets, nil
}

// writeVault encrypts secrets with a fresh salt and nonce and writes the
// envelope to disk with 0600 permissions.
func writeVault(path string, env *model.EWTFile, secrets map[string]string, passphrase []byte, params ScryptParams) error {
	if !strings.HasSuffix(path, vaultExt) {
		return fmt.Errorf("vault file must have %s extension", vaultExt)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := scrypt.Key(passphrase, salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("failed to marshal vault secrets: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	out := model.EWTFile{
		Network:    networkEVM,
		Address:    env.Address,
		QR:         env.QR,
		CreatedAt:  env.CreatedAt,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}
	if out.CreatedAt == "" {
		out.CreatedAt = time.Now().Format(time.RFC3339)
	}

	fileData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vault file: %w", err)
	}

	if err := os.WriteFile(path, fileData, 0600); err != nil {
		return fmt.Errorf("failed to write vault file: %w", err)
	}
	return nil
}
