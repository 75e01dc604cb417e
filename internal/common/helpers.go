package common

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/voxwallet/walletd/internal/apperr"
)

const (
	// EtherDecimals is the number of decimals of the native unit (wei)
	EtherDecimals = 18
)

// WeiToEther converts wei to a decimal ether string without float precision loss
func WeiToEther(wei *big.Int) string {
	return formatWithDecimals(wei, EtherDecimals)
}

// EtherToWei converts a decimal ether string to wei without float precision loss.
// Negative amounts are rejected.
func EtherToWei(ether string) (*big.Int, error) {
	return parseWithDecimals(ether, EtherDecimals)
}

// formatWithDecimals converts an integer to a decimal string by inserting the decimal point
// Example: formatWithDecimals(1500000000000000000, 18) = "1.500000000000000000"
func formatWithDecimals(value *big.Int, decimals int) string {
	s := value.String()

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts a decimal string to an integer by removing the decimal point
// Example: parseWithDecimals("0.01", 18) = 10000000000000000
func parseWithDecimals(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperr.New(apperr.KindInvalidAmount, "empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, apperr.Newf(apperr.KindInvalidAmount, "negative amount %q", s)
	}

	parts := strings.Split(s, ".")

	if len(parts) == 1 {
		n, ok := new(big.Int).SetString(parts[0], 10)
		if !ok {
			return nil, apperr.Newf(apperr.KindInvalidAmount, "invalid amount %q", s)
		}
		return n.Mul(n, pow10(decimals)), nil
	}

	if len(parts) != 2 {
		return nil, apperr.Newf(apperr.KindInvalidAmount, "invalid decimal format %q", s)
	}

	whole := parts[0]
	frac := parts[1]
	if whole == "" {
		whole = "0"
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	combined := whole + frac
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidAmount, "invalid amount %q", s)
	}
	return n, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CompareEtherAmounts compares two decimal ether string amounts without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareEtherAmounts(a, b string) (int, error) {
	aVal, err := parseWithDecimals(a, EtherDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := parseWithDecimals(b, EtherDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}
