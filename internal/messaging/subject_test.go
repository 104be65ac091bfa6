package messaging_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/messaging"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "notional.eip155:1.LendBorrowTrade", messaging.Subject(domain.ChainEthereumMainnet, domain.EventKindLendBorrowTrade))
	assert.Equal(t, "notional.eip155:42.>", messaging.ChainSubjects(domain.ChainEthereumKovan))
}

func TestMessageID(t *testing.T) {
	log := &domain.ProtocolLog{
		Chain: domain.ChainEthereumMainnet,
		Log: types.Log{
			TxHash: common.HexToHash("0xAB"),
			Index:  12,
		},
	}
	assert.Equal(t, "eip155:1:0x00000000000000000000000000000000000000000000000000000000000000ab:12", messaging.MessageID(log))
}
