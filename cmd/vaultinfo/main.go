// One-off: print the public envelope of a .ewt vault file without decrypting it.
// Usage: go run ./cmd/vaultinfo <path-to-vault.ewt>
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voxwallet/walletd/internal/model"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vaultinfo <path-to-vault.ewt>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var env model.EWTFile
	if err := json.Unmarshal(data, &env); err != nil {
		fmt.Fprintln(os.Stderr, "not a vault file:", err)
		os.Exit(1)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.CipherText)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad cipherText encoding:", err)
		os.Exit(1)
	}

	fmt.Printf("network:    %s\n", env.Network)
	fmt.Printf("address:    %s\n", env.Address)
	fmt.Printf("createdAt:  %s\n", env.CreatedAt)
	fmt.Printf("hasQR:      %t\n", env.QR != "")
	fmt.Printf("cipherText: %d bytes\n", len(ciphertext))
}
