package indexer_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/indexer"
	"github.com/notional-finance/notional-indexer/internal/logger"
	mockspkg "github.com/notional-finance/notional-indexer/internal/mocks"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
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

const cursorKey = "indexer:eip155:1"

var testConfig = indexer.Config{
	URL:             "nats://localhost:4222",
	StreamName:      "NOTIONAL",
	ConsumerName:    "notional-indexer",
	ChainID:         domain.ChainEthereumMainnet,
	MaxReconnects:   10,
	ReconnectWait:   time.Second,
	ConnectionName:  "test-indexer",
	AckWaitTimeout:  30 * time.Second,
	MaxDeliver:      5,
	RedeliveryDelay: 10 * time.Second,
}

// testIndexerMocks contains all the mocks needed for testing the indexer
type testIndexerMocks struct {
	ctrl           *gomock.Controller
	natsJS         *mockspkg.MockNatsJetStream
	natsConn       *mockspkg.MockNatsConn
	jetStream      *mockspkg.MockJetStream
	consumer       *mockspkg.MockNatsConsumer
	consumeContext *mockspkg.MockConsumeContext
	dispatcher     *mockspkg.MockDispatcher
	store          *mockspkg.MockStore
	indexer        indexer.Indexer
}

// setupTestIndexer creates all the mocks and a connected indexer
func setupTestIndexer(t *testing.T) *testIndexerMocks {
	ctrl := gomock.NewController(t)

	tm := &testIndexerMocks{
		ctrl:           ctrl,
		natsJS:         mockspkg.NewMockNatsJetStream(ctrl),
		natsConn:       mockspkg.NewMockNatsConn(ctrl),
		jetStream:      mockspkg.NewMockJetStream(ctrl),
		consumer:       mockspkg.NewMockNatsConsumer(ctrl),
		consumeContext: mockspkg.NewMockConsumeContext(ctrl),
		dispatcher:     mockspkg.NewMockDispatcher(ctrl),
		store:          mockspkg.NewMockStore(ctrl),
	}

	tm.natsJS.EXPECT().
		Connect(testConfig.URL, gomock.Any()).
		Return(tm.natsConn, tm.jetStream, nil)

	idx, err := indexer.NewIndexer(testConfig, tm.natsJS, tm.dispatcher, tm.store, adapter.NewJSON())
	require.NoError(t, err)
	tm.indexer = idx

	return tm
}

// tearDownTestIndexer cleans up the test mocks
func tearDownTestIndexer(mocks *testIndexerMocks) {
	mocks.ctrl.Finish()
}

// deliver sets up a consumer that hands the messages to the indexer in order
func (tm *testIndexerMocks) deliver(msgs ...adapter.Message) {
	tm.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), testConfig.StreamName, gomock.Any()).
		Return(tm.consumer, nil)
	tm.consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: testConfig.ConsumerName}, nil)
	tm.consumer.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, _ ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			go func() {
				for _, msg := range msgs {
					handler(msg)
				}
			}()
			return tm.consumeContext, nil
		})
	tm.consumeContext.EXPECT().Stop()
}

func (tm *testIndexerMocks) message(data []byte) *mockspkg.MockJetStreamMessage {
	msg := mockspkg.NewMockJetStreamMessage(tm.ctrl)
	msg.EXPECT().Data().Return(data).AnyTimes()
	msg.EXPECT().Metadata().Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil).AnyTimes()
	return msg
}

func listCurrencyLog(t *testing.T, currencyID uint16, blockNumber uint64) []byte {
	event := notional.RouterABI.Events[string(domain.EventKindListCurrency)]
	packed, err := event.Inputs.NonIndexed().Pack(currencyID)
	require.NoError(t, err)

	data, err := json.Marshal(&domain.ProtocolLog{
		Chain: domain.ChainEthereumMainnet,
		Log: types.Log{
			Address:     common.HexToAddress("0x1344A36A1B56144C3Bc62E7757377D288fDE0369"),
			Topics:      []common.Hash{event.ID},
			Data:        packed,
			BlockNumber: blockNumber,
			TxHash:      common.BigToHash(common.Big2),
			Index:       uint(currencyID),
		},
		BlockTimestamp: 1_630_000_000,
		TxOrigin:       "0x00000000000000000000000000000000000000aa",
	})
	require.NoError(t, err)
	return data
}

func TestIndexer_NewIndexer_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mockspkg.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, assert.AnError)

	idx, err := indexer.NewIndexer(testConfig, natsJS, mockspkg.NewMockDispatcher(ctrl), mockspkg.NewMockStore(ctrl), adapter.NewJSON())

	assert.Error(t, err)
	assert.Nil(t, idx)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

func TestIndexer_Run_CreateConsumerError(t *testing.T) {
	mocks := setupTestIndexer(t)
	defer tearDownTestIndexer(mocks)

	mocks.jetStream.
		EXPECT().
		CreateOrUpdateConsumer(gomock.Any(),
			"NOTIONAL",
			jetstream.ConsumerConfig{
				Durable:       "notional-indexer",
				DeliverPolicy: jetstream.DeliverAllPolicy,
				AckPolicy:     jetstream.AckExplicitPolicy,
				AckWait:       30 * time.Second,
				MaxDeliver:    5,
				MaxAckPending: 1,
				FilterSubject: "notional.eip155:1.>",
			}).
		Return(nil, assert.AnError)

	err := mocks.indexer.Run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create/update consumer")
}

func TestIndexer_Run_AppliesInOrder(t *testing.T) {
	mocks := setupTestIndexer(t)
	defer tearDownTestIndexer(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := mocks.message(listCurrencyLog(t, 1, 100))
	second := mocks.message(listCurrencyLog(t, 2, 101))
	mocks.deliver(first, second)

	gomock.InOrder(
		mocks.dispatcher.EXPECT().
			Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event domain.Event) error {
				listCurrency, ok := event.(*domain.ListCurrency)
				require.True(t, ok)
				assert.Equal(t, uint16(1), listCurrency.NewCurrencyId)
				assert.Equal(t, uint64(100), listCurrency.BlockNumber)
				return nil
			}),
		first.EXPECT().Ack().Return(nil),
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(100)).Return(nil),
		mocks.dispatcher.EXPECT().
			Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event domain.Event) error {
				assert.Equal(t, uint16(2), event.(*domain.ListCurrency).NewCurrencyId)
				return nil
			}),
		second.EXPECT().Ack().Return(nil),
		mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(101)).
			DoAndReturn(func(context.Context, string, uint64) error {
				cancel()
				return nil
			}),
	)

	err := mocks.indexer.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_PermanentFailureIsTerminated(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "reverted read", err: fmt.Errorf("failed to get currency 1: %w", domain.ErrReverted)},
		{name: "undecodable parameters", err: fmt.Errorf("%w: short collateral parameters", domain.ErrDecode)},
		{name: "maturity outside markets", err: domain.ErrMarketNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := setupTestIndexer(t)
			defer tearDownTestIndexer(mocks)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			failing := mocks.message(listCurrencyLog(t, 1, 100))
			next := mocks.message(listCurrencyLog(t, 2, 101))
			mocks.deliver(failing, next)

			gomock.InOrder(
				mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(tt.err),
				failing.EXPECT().Term().Return(nil),
				mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil),
				next.EXPECT().Ack().Return(nil),
				mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(101)).
					DoAndReturn(func(context.Context, string, uint64) error {
						cancel()
						return nil
					}),
			)

			err := mocks.indexer.Run(ctx)

			assert.Equal(t, context.Canceled, err)
		})
	}
}

func TestIndexer_Run_TransientFailureIsRedelivered(t *testing.T) {
	mocks := setupTestIndexer(t)
	defer tearDownTestIndexer(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := mocks.message(listCurrencyLog(t, 1, 100))
	mocks.deliver(msg)

	gomock.InOrder(
		mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			Return(errors.New("failed to persist ListCurrency: dial tcp 127.0.0.1:5432: connection refused")),
		msg.EXPECT().NakWithDelay(testConfig.RedeliveryDelay).
			DoAndReturn(func(time.Duration) error {
				cancel()
				return nil
			}),
	)
	msg.EXPECT().Term().Times(0)
	msg.EXPECT().Ack().Times(0)
	mocks.store.EXPECT().SetBlockCursor(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := mocks.indexer.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Run_MalformedMessages(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{
			name: "not json",
			data: func(*testing.T) []byte { return []byte("not json") },
		},
		{
			name: "invalid log",
			data: func(t *testing.T) []byte {
				var log domain.ProtocolLog
				require.NoError(t, json.Unmarshal(listCurrencyLog(t, 1, 100), &log))
				log.BlockTimestamp = 0
				data, err := json.Marshal(&log)
				require.NoError(t, err)
				return data
			},
		},
		{
			name: "truncated data",
			data: func(t *testing.T) []byte {
				var log domain.ProtocolLog
				require.NoError(t, json.Unmarshal(listCurrencyLog(t, 1, 100), &log))
				log.Log.Data = log.Log.Data[:4]
				data, err := json.Marshal(&log)
				require.NoError(t, err)
				return data
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := setupTestIndexer(t)
			defer tearDownTestIndexer(mocks)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			msg := mocks.message(tt.data(t))
			mocks.deliver(msg)

			mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Times(0)
			msg.EXPECT().Term().DoAndReturn(func() error {
				cancel()
				return nil
			})

			err := mocks.indexer.Run(ctx)

			assert.Equal(t, context.Canceled, err)
		})
	}
}

func TestIndexer_Run_UnknownEventIsSkipped(t *testing.T) {
	mocks := setupTestIndexer(t)
	defer tearDownTestIndexer(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log domain.ProtocolLog
	require.NoError(t, json.Unmarshal(listCurrencyLog(t, 1, 100), &log))
	log.Log.Topics[0] = common.HexToHash("0xdeadbeef")
	data, err := json.Marshal(&log)
	require.NoError(t, err)

	msg := mocks.message(data)
	mocks.deliver(msg)

	mocks.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Times(0)
	msg.EXPECT().Ack().Return(nil)
	mocks.store.EXPECT().SetBlockCursor(gomock.Any(), cursorKey, uint64(100)).
		DoAndReturn(func(context.Context, string, uint64) error {
			cancel()
			return nil
		})

	err = mocks.indexer.Run(ctx)

	assert.Equal(t, context.Canceled, err)
}

func TestIndexer_Close(t *testing.T) {
	mocks := setupTestIndexer(t)
	defer tearDownTestIndexer(mocks)

	mocks.natsConn.EXPECT().Close()

	mocks.indexer.Close()
}
