package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumGoerli  Chain = "eip155:5"
	ChainEthereumKovan   Chain = "eip155:42"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumGoerli ||
		chain == ChainEthereumKovan
}

// ProtocolLog is a raw protocol log enriched with the block and transaction
// context the decoder cannot recover from the log itself.
// This is the standard format published to NATS
type ProtocolLog struct {
	Chain          Chain     `json:"chain"`
	Log            types.Log `json:"log"`
	BlockTimestamp uint64    `json:"block_timestamp"`
	TxOrigin       string    `json:"tx_origin"`
}

// Valid checks that the log can be decoded and ordered
func (l *ProtocolLog) Valid() bool {
	if !IsValidChain(l.Chain) {
		return false
	}
	if len(l.Log.Topics) == 0 || l.Log.Removed {
		return false
	}
	if l.BlockTimestamp == 0 {
		return false
	}
	return common.IsHexAddress(l.TxOrigin)
}

// NormalizeAddress lower-cases an address, which is the form used in entity keys
func NormalizeAddress(address string) string {
	return strings.ToLower(common.HexToAddress(address).Hex())
}
