package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidEVMAddress reports whether addr is a 0x-prefixed 20-byte hex address.
func IsValidEVMAddress(addr string) bool {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return false
	}
	return common.IsHexAddress(addr)
}

// ChecksumAddress returns the EIP-55 mixed-case form of a valid address.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
