package messaging

import (
	"context"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

// LogHandler is called for every protocol log, in chain order
type LogHandler func(log *domain.ProtocolLog) error

// Subscriber defines the interface for subscribing to protocol logs
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeLogs delivers every protocol log from fromBlock onwards, then
	// follows the chain head. fromBlock 0 means the head only.
	// It returns when ctx is done, the subscription drops or handler fails.
	SubscribeLogs(ctx context.Context, fromBlock uint64, handler LogHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}
