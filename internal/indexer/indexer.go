package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/handler"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/messaging"
	jsprovider "github.com/notional-finance/notional-indexer/internal/providers/jetstream"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
)

// Config holds the configuration for the indexer
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	ChainID        domain.Chain
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	// RedeliveryDelay delays the redelivery of an event that failed for a transient reason
	RedeliveryDelay time.Duration
}

// Indexer defines the interface for the indexer
type Indexer interface {
	// Run consumes protocol logs until ctx is done
	Run(ctx context.Context) error
	// Close closes the indexer and cleans up resources
	Close()
}

type indexer struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	dispatcher handler.Dispatcher
	cursor     store.CursorStore
	json       adapter.JSON
	config     Config
}

// CursorKey is the block cursor key of the indexer of a chain
func CursorKey(chain domain.Chain) string {
	return "indexer:" + string(chain)
}

// NewIndexer connects to NATS and creates an indexer feeding the dispatcher
func NewIndexer(
	cfg Config,
	natsJS adapter.NatsJetStream,
	dispatcher handler.Dispatcher,
	cursor store.CursorStore,
	jsonAdapter adapter.JSON,
) (Indexer, error) {
	opts := jsprovider.ConnectionOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait, nil)
	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &indexer{
		nc:         nc,
		js:         js,
		dispatcher: dispatcher,
		cursor:     cursor,
		json:       jsonAdapter,
		config:     cfg,
	}, nil
}

// Run consumes the logs of one chain in stream order. Only one message is in
// flight at a time, so events are applied strictly in chain order.
func (i *indexer) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting indexer", zap.String("stream", i.config.StreamName), zap.String("consumer", i.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       i.config.ConsumerName,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       i.config.AckWaitTimeout,
		MaxDeliver:    i.config.MaxDeliver,
		MaxAckPending: 1,
		FilterSubject: messaging.ChainSubjects(i.config.ChainID),
	}

	consumer, err := i.js.CreateOrUpdateConsumer(ctx, i.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved",
		zap.String("consumer", consumerInfo.Name),
		zap.Uint64("pending", consumerInfo.NumPending))

	msgChan := make(chan adapter.Message)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		select {
		case msgChan <- msg:
		case <-ctx.Done():
		}
	}, jetstream.ConsumeErrHandler(func(_ jetstream.ConsumeContext, err error) {
		logger.ErrorCtx(ctx, err, zap.String("message", "Consumer error"))
	}))
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Shutting down indexer")
			return ctx.Err()
		case msg := <-msgChan:
			i.handleMessage(ctx, msg)
		}
	}
}

// handleMessage applies a single NATS message. A log that can never be applied
// is logged and terminated so the stream moves on. Any other failure is
// redelivered until MaxDeliver is reached.
func (i *indexer) handleMessage(ctx context.Context, msg adapter.Message) {
	var numDelivered uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		numDelivered = metadata.NumDelivered
	}

	var log domain.ProtocolLog
	if err := i.json.Unmarshal(msg.Data(), &log); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal protocol log"))
		i.term(ctx, msg)
		return
	}

	ctx = logger.WithFields(ctx,
		zap.String("chain", string(log.Chain)),
		zap.String("txHash", domain.HashKey(log.Log.TxHash)),
		zap.Uint("logIndex", log.Log.Index),
		zap.Uint64("blockNumber", log.Log.BlockNumber),
		zap.Uint64("deliveryCount", numDelivered))

	if !log.Valid() {
		logger.ErrorCtx(ctx, fmt.Errorf("%w: invalid protocol log", domain.ErrDecode))
		i.term(ctx, msg)
		return
	}

	event, err := notional.DecodeLog(&log)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEvent) {
			logger.WarnCtx(ctx, "Skipping unknown protocol log", zap.Error(err))
			i.ack(ctx, msg, log.Log.BlockNumber)
			return
		}
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to decode protocol log"))
		i.term(ctx, msg)
		return
	}

	if err := i.dispatcher.Dispatch(ctx, event); err != nil {
		if ctx.Err() != nil {
			// interrupted by shutdown, the event is redelivered on restart
			if err := msg.Nak(); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
			}
			return
		}
		if isPermanent(err) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to apply event"))
			i.term(ctx, msg)
			return
		}

		if i.config.MaxDeliver > 0 && numDelivered >= uint64(i.config.MaxDeliver) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to apply event on last delivery attempt"))
		} else {
			logger.WarnCtx(ctx, "Failed to apply event, redelivering", zap.Error(err), zap.Duration("delay", i.config.RedeliveryDelay))
		}
		if err := msg.NakWithDelay(i.config.RedeliveryDelay); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	i.ack(ctx, msg, log.Log.BlockNumber)
}

// isPermanent reports whether applying the event fails the same way on every
// delivery. Reads are pinned to the event's block, so reverts and decode errors
// repeat.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrDecode) ||
		errors.Is(err, domain.ErrReverted) ||
		errors.Is(err, domain.ErrMarketNotFound)
}

func (i *indexer) ack(ctx context.Context, msg adapter.Message, blockNumber uint64) {
	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
		return
	}

	if err := i.cursor.SetBlockCursor(ctx, CursorKey(i.config.ChainID), blockNumber); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to save block cursor"))
	}
}

func (i *indexer) term(ctx context.Context, msg adapter.Message) {
	if err := msg.Term(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
	}
}

// Close closes the indexer and cleans up resources
func (i *indexer) Close() {
	if i.nc == nil {
		return
	}

	i.nc.Close()
}
