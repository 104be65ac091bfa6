package emitter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/emitter"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/messaging"
	"github.com/notional-finance/notional-indexer/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

const cursorKey = "emitter:eip155:1"

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl       *gomock.Controller
	subscriber *mocks.MockSubscriber
	publisher  *mocks.MockPublisher
	store      *mocks.MockStore
	clock      *mocks.MockClock
	emitter    emitter.Emitter
}

// setupTestEmitter creates all the mocks and an emitter with the given start block
func setupTestEmitter(t *testing.T, startBlock uint64, saveFreq uint64) *testEmitterMocks {
	ctrl := gomock.NewController(t)

	tm := &testEmitterMocks{
		ctrl:       ctrl,
		subscriber: mocks.NewMockSubscriber(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		store:      mocks.NewMockStore(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}

	tm.emitter = emitter.NewEmitter(
		tm.subscriber,
		tm.publisher,
		tm.store,
		emitter.Config{
			ChainID:         domain.ChainEthereumMainnet,
			StartBlock:      startBlock,
			CursorSaveFreq:  saveFreq,
			CursorSaveDelay: 5 * time.Second,
		},
		tm.clock,
	)

	return tm
}

// tearDownTestEmitter cleans up the test mocks
func tearDownTestEmitter(mocks *testEmitterMocks) {
	mocks.ctrl.Finish()
}

// expectFrozenClock makes time stand still so only the block frequency triggers saves
func (tm *testEmitterMocks) expectFrozenClock() {
	now := time.Now()
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Duration(0)).AnyTimes()
}

func testLog(blockNumber uint64) *domain.ProtocolLog {
	return &domain.ProtocolLog{
		Chain: domain.ChainEthereumMainnet,
		Log: types.Log{
			BlockNumber: blockNumber,
			TxHash:      common.BigToHash(common.Big1),
			Topics:      []common.Hash{common.HexToHash("0x01")},
		},
		BlockTimestamp: 1_640_000_000,
		TxOrigin:       "0x0000000000000000000000000000000000000001",
	}
}

func TestEmitter_Run_WithStartBlock(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 10)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)

	log := testLog(1001)
	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			_ = handler(log)

			// Cancel context to stop the emitter
			cancel()
			return nil
		})

	mocks.publisher.EXPECT().PublishLog(gomock.Any(), log).Return(nil)

	// 1001 - 0 >= 10, so the cursor is saved at block 1001
	mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1001)).Return(nil)

	err := mocks.emitter.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorWinsOverStartBlock(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 10)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(5000), nil)

	// the cursor block is replayed, duplicates are dropped by the stream
	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(5000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			cancel()
			return ctx.Err()
		})

	err := mocks.emitter.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_WithNoLastBlockCursor(t *testing.T) {
	mocks := setupTestEmitter(t, 0, 10)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)
	mocks.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)

	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			cancel()
			return nil
		})

	err := mocks.emitter.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveByBlockFrequency(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 5)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)

	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			// Block 1000: 1000 - 0 >= 5, saves at 1000
			// Block 1002: 1002 - 1000 < 5, no save
			// Block 1005: 1005 - 1000 >= 5, saves at 1005
			for _, blockNum := range []uint64{1000, 1002, 1005} {
				if err := handler(testLog(blockNum)); err != nil {
					return err
				}
			}

			cancel()
			return nil
		})

	mocks.publisher.EXPECT().PublishLog(gomock.Any(), gomock.Any()).Return(nil).Times(3)
	gomock.InOrder(
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1000)).Return(nil),
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1005)).Return(nil),
	)

	err := mocks.emitter.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveByDelay(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 100)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()
	mocks.clock.EXPECT().Since(now).Return(6 * time.Second)

	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)
	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			// 1000 is saved by frequency, 1001 only because the delay elapsed
			_ = handler(testLog(1000))
			_ = handler(testLog(1001))
			cancel()
			return nil
		})

	mocks.publisher.EXPECT().PublishLog(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1000)).Return(nil),
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1001)).Return(nil),
	)

	err := mocks.emitter.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_SavesProgressOnExit(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 10)
	defer tearDownTestEmitter(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)

	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			for _, blockNum := range []uint64{1000, 1003} {
				if err := handler(testLog(blockNum)); err != nil {
					return err
				}
			}
			return assert.AnError
		})

	mocks.publisher.EXPECT().PublishLog(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1000)).Return(nil),
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(1003)).Return(nil),
	)

	err := mocks.emitter.Run(ctx)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestEmitter_Run_GetBlockCursorError(t *testing.T) {
	mocks := setupTestEmitter(t, 0, 10)
	defer tearDownTestEmitter(mocks)

	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), assert.AnError)

	err := mocks.emitter.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get block cursor")
}

func TestEmitter_Run_GetLatestBlockError(t *testing.T) {
	mocks := setupTestEmitter(t, 0, 10)
	defer tearDownTestEmitter(mocks)

	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)
	mocks.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(0), assert.AnError)

	err := mocks.emitter.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get latest block number")
}

func TestEmitter_Run_SubscribeLogsError(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 10)
	defer tearDownTestEmitter(mocks)

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)
	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		Return(assert.AnError)

	err := mocks.emitter.Run(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
}

func TestEmitter_Run_PublishLogError(t *testing.T) {
	mocks := setupTestEmitter(t, 1000, 10)
	defer tearDownTestEmitter(mocks)

	mocks.expectFrozenClock()
	mocks.store.EXPECT().GetBlockCursor(gomock.Any(), cursorKey).Return(uint64(0), nil)
	mocks.subscriber.
		EXPECT().
		SubscribeLogs(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
			return handler(testLog(1001))
		})

	mocks.publisher.EXPECT().PublishLog(gomock.Any(), gomock.Any()).Return(assert.AnError)

	err := mocks.emitter.Run(context.Background())

	// nothing was published, so no cursor is saved
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish log")
}

func TestEmitter_Close(t *testing.T) {
	mocks := setupTestEmitter(t, 0, 10)
	defer tearDownTestEmitter(mocks)

	mocks.subscriber.EXPECT().Close()
	mocks.publisher.EXPECT().Close()

	mocks.emitter.Close()
}
