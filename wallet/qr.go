package wallet

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/skip2/go-qrcode"
)

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}

// usdValue multiplies a balance by a rate for display only; floats are never
// used for amounts that go on chain.
func usdValue(balance, rate string) string {
	balanceFloat, err := strconv.ParseFloat(balance, 64)
	if err != nil {
		return ""
	}
	rateFloat, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%.2f", balanceFloat*rateFloat)
}
