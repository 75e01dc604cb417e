package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: the vault passphrase is prompted at runtime and stored in memory -
// use PassphraseBytes()
type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	WalletFilePath     string `envconfig:"WALLET_FILE_PATH" required:"true"`
	DataFilePath       string `envconfig:"DATA_FILE_PATH" required:"true"`
	AuthGraceSeconds   int    `envconfig:"AUTH_GRACE_SECONDS" default:"0"`
	DialTimeoutSeconds int    `envconfig:"DIAL_TIMEOUT_SECONDS" default:"10"`
	ConfirmWaitSeconds int    `envconfig:"CONFIRM_WAIT_SECONDS" default:"90"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
// envconfig treats a set-but-empty variable as satisfying required, so the
// file paths are checked for emptiness here.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.WalletFilePath == "" {
		return errors.New("WALLET_FILE_PATH cannot be empty")
	}
	if cfg.DataFilePath == "" {
		return errors.New("DATA_FILE_PATH cannot be empty")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletFilePath returns the path to the .ewt vault file from configuration
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

// GetDataFilePath returns the path to the plaintext metadata file from configuration
func GetDataFilePath() string {
	return Get().DataFilePath
}

// GetAuthGraceSeconds returns the authentication grace window in seconds.
// Zero means every secret operation re-challenges.
func GetAuthGraceSeconds() int {
	return Get().AuthGraceSeconds
}

// GetDialTimeoutSeconds returns the RPC connection timeout in seconds
func GetDialTimeoutSeconds() int {
	return Get().DialTimeoutSeconds
}

// GetConfirmWaitSeconds returns the bounded wait for transaction inclusion in seconds
func GetConfirmWaitSeconds() int {
	return Get().ConfirmWaitSeconds
}

var passphraseBytes []byte

// PromptForPassphrase prompts the user for the vault passphrase in the terminal.
// The passphrase is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassphrase() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter passphrase")
	}
	fmt.Fprint(os.Stderr, "Enter vault passphrase: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	passphraseBytes = make([]byte, len(raw))
	copy(passphraseBytes, raw)
	clear(raw)
	return nil
}

// PassphraseBytes returns the passphrase stored in memory (from PromptForPassphrase).
// Returns an error if the passphrase was not set.
// Caller must zero the returned slice after use for security.
func PassphraseBytes() ([]byte, error) {
	if len(passphraseBytes) == 0 {
		return nil, errors.New("passphrase not set: call PromptForPassphrase at startup")
	}
	out := make([]byte, len(passphraseBytes))
	copy(out, passphraseBytes)
	return out, nil
}

// HasPassphrase reports whether a vault passphrase is configured for this process.
func HasPassphrase() bool {
	return len(passphraseBytes) > 0
}
