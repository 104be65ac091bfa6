package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/messaging"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
	closed     chan struct{}
	closeOnce  sync.Once
}

// ConnectionOptions are the NATS options shared by the publisher and the indexer consumer.
// onClosed runs once the connection is closed for good.
func ConnectionOptions(name string, maxReconnects int, reconnectWait time.Duration, onClosed func()) []nats.Option {
	return []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
			if onClosed != nil {
				onClosed()
			}
		}),
	}
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	p := &publisher{
		streamName: cfg.StreamName,
		json:       jsonAdapter,
		closed:     make(chan struct{}),
	}

	opts := ConnectionOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait, p.markClosed)
	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	p.nc = nc
	p.js = js
	return p, nil
}

// PublishLog publishes an enriched protocol log to NATS JetStream. The message
// id lets the stream drop a log republished after an emitter restart.
func (p *publisher) PublishLog(ctx context.Context, log *domain.ProtocolLog) error {
	if len(log.Log.Topics) == 0 {
		return fmt.Errorf("%w: log %s:%d has no topics", domain.ErrDecode, log.Log.TxHash.Hex(), log.Log.Index)
	}

	kind, ok := notional.EventKindOf(log.Log.Topics[0])
	if !ok {
		return fmt.Errorf("%w: topic %s", domain.ErrUnknownEvent, log.Log.Topics[0].Hex())
	}

	data, err := p.json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	subject := messaging.Subject(log.Chain, kind)
	msgID := messaging.MessageID(log)

	logger.DebugCtx(ctx, "Publishing protocol log",
		zap.String("subject", subject),
		zap.String("msgID", msgID),
		zap.Uint64("blockNumber", log.Log.BlockNumber))

	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID), jetstream.WithExpectStream(p.streamName))
	if err != nil {
		return fmt.Errorf("failed to publish log: %w", err)
	}

	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Log already in stream", zap.String("msgID", msgID), zap.Uint64("sequence", ack.Sequence))
	}

	return nil
}

func (p *publisher) markClosed() {
	p.closeOnce.Do(func() { close(p.closed) })
}

// CloseChan is closed once the NATS connection is closed
func (p *publisher) CloseChan() <-chan struct{} {
	return p.closed
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
	p.markClosed()
}
