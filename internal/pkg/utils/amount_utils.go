package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// RawToAmount converts a base-10 integer string scaled by 10^decimals into a
// decimal-adjusted value.
// Example: raw="1234500000000000000", decimals=18 => 1.2345
func RawToAmount(raw string, decimals int32) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid raw amount %q: %w", raw, err)
	}
	return d.Shift(-decimals).InexactFloat64(), nil
}

// HexToAmount converts a 0x-prefixed hex quantity (leading zeros allowed, up to
// 32 bytes) scaled by 10^decimals into a decimal-adjusted value.
func HexToAmount(hexValue string, decimals int32) (float64, error) {
	hexValue = strings.TrimSpace(hexValue)
	if hexValue == "" || hexValue == "0x" {
		return 0, nil
	}
	if !strings.HasPrefix(hexValue, "0x") && !strings.HasPrefix(hexValue, "0X") {
		return 0, fmt.Errorf("hex quantity %q lacks 0x prefix", hexValue)
	}
	if len(hexValue) > 66 {
		return 0, fmt.Errorf("hex quantity %q exceeds 256 bits", hexValue)
	}
	for _, c := range hexValue[2:] {
		if !isHexDigit(c) {
			return 0, fmt.Errorf("invalid hex quantity %q", hexValue)
		}
	}
	v := common.HexToHash(hexValue).Big()
	return decimal.NewFromBigInt(v, -decimals).InexactFloat64(), nil
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// WeiToNative converts a wei amount string into native units (18 decimals).
func WeiToNative(wei string) (float64, error) {
	return RawToAmount(wei, 18)
}

// FormatUSD renders v as a dollar amount with thousands separators, e.g. 1234567.891 => "$1,234,567.89".
func FormatUSD(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0.00"
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
