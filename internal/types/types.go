package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StringPtr converts a string to a pointer to a string
func StringPtr(s string) *string {
	return &s
}

// SafeString returns a safe string from a pointer to a string
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BoolPtr converts a bool to a pointer to a bool
func BoolPtr(b bool) *bool {
	return &b
}

// Int32Ptr converts an int32 to a pointer to an int32
func Int32Ptr(i int32) *int32 {
	return &i
}

// Int64Ptr converts an int64 to a pointer to an int64
func Int64Ptr(i int64) *int64 {
	return &i
}

// IsEthereumAddress checks if a string is a valid Ethereum address
func IsEthereumAddress(s string) bool {
	return common.IsHexAddress(s)
}

// BigIntString returns the decimal form of a big integer, "0" for nil
func BigIntString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// BigIntStringPtr returns a pointer to the decimal form of a big integer
func BigIntStringPtr(v *big.Int) *string {
	return StringPtr(BigIntString(v))
}

// ParseBigInt parses a decimal string, an empty string is zero
func ParseBigInt(s string) (*big.Int, bool) {
	if s == "" {
		return new(big.Int), true
	}
	return new(big.Int).SetString(s, 10)
}

// Pow10 returns 10^n
func Pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// BigIntsToInt64s converts on-chain integers that are known to fit in 64 bits
func BigIntsToInt64s(values []*big.Int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = v.Int64()
		}
	}
	return out
}

// BigIntsToStrings converts on-chain integers to their decimal form
func BigIntsToStrings(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = BigIntString(v)
	}
	return out
}

// Uint8sToInt32s widens packed single byte values
func Uint8sToInt32s(values []uint8) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = int32(v)
	}
	return out
}

// BigIntInt64 returns the low 64 bits of a big integer, 0 for nil
func BigIntInt64(v *big.Int) int64 {
	if v == nil {
		return 0
	}
	return v.Int64()
}

// BigIntOrZero returns v, or a new zero value for nil
func BigIntOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
