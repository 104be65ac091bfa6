package messaging

import (
	"fmt"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

// SubjectPrefix is the root of every subject carrying protocol logs
const SubjectPrefix = "notional"

// Subject is the subject a log of the given kind is published on, e.g. notional.eip155:1.LendBorrowTrade
func Subject(chain domain.Chain, kind domain.EventKind) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, chain, kind)
}

// ChainSubjects matches every log subject of a chain
func ChainSubjects(chain domain.Chain) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, chain)
}

// MessageID identifies a log for broker side deduplication
func MessageID(log *domain.ProtocolLog) string {
	return fmt.Sprintf("%s:%s:%d", log.Chain, domain.HashKey(log.Log.TxHash), log.Log.Index)
}
