package emitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/messaging"
	"github.com/notional-finance/notional-indexer/internal/store"
)

// Config holds the configuration for the event emitter
type Config struct {
	ChainID         domain.Chain
	StartBlock      uint64
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Emitter defines the interface for the event emitter
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run follows the chain until ctx is done or the subscription fails
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

// emitter follows the Notional router logs and publishes them to NATS
type emitter struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	store      store.CursorStore
	config     Config
	clock      adapter.Clock
}

// CursorKey is the block cursor key of the emitter of a chain
func CursorKey(chain domain.Chain) string {
	return "emitter:" + string(chain)
}

// NewEmitter creates a new event emitter
func NewEmitter(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	st store.CursorStore,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	return &emitter{
		subscriber: sub,
		publisher:  pub,
		store:      st,
		config:     cfg,
		clock:      clock,
	}
}

// startBlock resolves where to resume. A saved cursor wins over the configured
// start block; the cursor block itself is replayed since it may be partly published.
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	lastBlock, err := e.store.GetBlockCursor(ctx, CursorKey(e.config.ChainID))
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	if lastBlock > 0 {
		logger.InfoCtx(ctx, "Resuming from last published block", zap.String("chain", string(e.config.ChainID)), zap.Uint64("block", lastBlock))
		return lastBlock, nil
	}

	if e.config.StartBlock > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", zap.String("chain", string(e.config.ChainID)), zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	latestBlock, err := e.subscriber.GetLatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	logger.InfoCtx(ctx, "Starting from latest block", zap.String("chain", string(e.config.ChainID)), zap.Uint64("block", latestBlock))
	return latestBlock, nil
}

// Run starts the event emitter
func (e *emitter) Run(ctx context.Context) error {
	startBlock, err := e.startBlock(ctx)
	if err != nil {
		return err
	}

	cursorKey := CursorKey(e.config.ChainID)
	logger.InfoCtx(ctx, "Starting log subscription", zap.String("chain", string(e.config.ChainID)))

	lastSavedBlock := uint64(0)
	lastPublishedBlock := uint64(0)
	lastSaveTime := e.clock.Now()

	saveCursor := func(ctx context.Context, blockNumber uint64) {
		if err := e.store.SetBlockCursor(ctx, cursorKey, blockNumber); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to save block cursor"), zap.Uint64("block", blockNumber))
			return
		}
		lastSavedBlock = blockNumber
		lastSaveTime = e.clock.Now()
	}

	handler := func(log *domain.ProtocolLog) error {
		if err := e.publisher.PublishLog(ctx, log); err != nil {
			return fmt.Errorf("failed to publish log %s: %w", log.Log.TxHash.Hex(), err)
		}
		lastPublishedBlock = log.Log.BlockNumber

		// Save cursor periodically (every N blocks or N seconds)
		shouldSave := lastPublishedBlock-lastSavedBlock >= e.config.CursorSaveFreq ||
			e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay

		if shouldSave {
			saveCursor(ctx, lastPublishedBlock)
		}

		return nil
	}

	err = e.subscriber.SubscribeLogs(ctx, startBlock, handler)

	// keep the progress made since the last periodic save
	if lastPublishedBlock > lastSavedBlock {
		saveCursor(context.WithoutCancel(ctx), lastPublishedBlock)
	}

	if err == nil {
		err = ctx.Err()
	}
	return err
}

// Close closes the emitter and cleans up resources
func (e *emitter) Close() {
	e.subscriber.Close()
	e.publisher.Close()
}
