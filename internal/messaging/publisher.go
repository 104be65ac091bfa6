package messaging

import (
	"context"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

// Publisher defines the interface for publishing protocol logs to the message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishLog publishes an enriched protocol log to the message broker
	PublishLog(ctx context.Context, log *domain.ProtocolLog) error
	// Close closes the connection
	Close()
	// CloseChan returns a channel that is closed when the publisher is closed
	CloseChan() <-chan struct{}
}
