package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/adapter"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
)

// EthereumClient is the log source of the emitter
//
//go:generate mockgen -source=client.go -destination=../../mocks/ethereum_client.go -package=mocks -mock_names=EthereumClient=MockEthereumClient
type EthereumClient interface {
	// SubscribeFilterLogs subscribes to new logs matching the query
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)

	// FilterLogs returns the historical logs matching the query, paging through
	// the block range so that providers with result limits can serve it
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// LatestBlock returns the number of the chain head
	LatestBlock(ctx context.Context) (uint64, error)

	// EnrichLog attaches the block timestamp and transaction origin to a log
	EnrichLog(ctx context.Context, vLog types.Log) (*domain.ProtocolLog, error)

	// Close closes the connection
	Close()
}

// ClientConfig holds the tuning of the client
type ClientConfig struct {
	// HeaderCacheSize is the number of block timestamps kept in memory
	HeaderCacheSize int
	// OriginCacheSize is the number of transaction senders kept in memory
	OriginCacheSize int
	// LogPageSize is the initial number of blocks requested per eth_getLogs call
	LogPageSize uint64
	// RetryInitialInterval is the first wait after a failed RPC call
	RetryInitialInterval time.Duration
	// RetryMaxElapsedTime bounds the time spent retrying a single RPC call
	RetryMaxElapsedTime time.Duration
}

type ethereumClient struct {
	chainID    domain.Chain
	client     adapter.EthClient
	config     ClientConfig
	timestamps *lru.Cache[common.Hash, uint64]
	origins    *lru.Cache[common.Hash, common.Address]
}

// NewClient creates a client over an RPC connection
func NewClient(chainID domain.Chain, client adapter.EthClient, cfg ClientConfig) (EthereumClient, error) {
	if cfg.HeaderCacheSize <= 0 {
		cfg.HeaderCacheSize = 1024
	}
	if cfg.OriginCacheSize <= 0 {
		cfg.OriginCacheSize = 1024
	}
	if cfg.LogPageSize == 0 {
		cfg.LogPageSize = 100_000
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = 500 * time.Millisecond
	}
	if cfg.RetryMaxElapsedTime <= 0 {
		cfg.RetryMaxElapsedTime = time.Minute
	}

	timestamps, err := lru.New[common.Hash, uint64](cfg.HeaderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create header cache: %w", err)
	}
	origins, err := lru.New[common.Hash, common.Address](cfg.OriginCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create origin cache: %w", err)
	}

	return &ethereumClient{
		chainID:    chainID,
		client:     client,
		config:     cfg,
		timestamps: timestamps,
		origins:    origins,
	}, nil
}

// SubscribeFilterLogs subscribes to filter logs
func (c *ethereumClient) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return c.client.SubscribeFilterLogs(ctx, query, ch)
}

// LatestBlock returns the number of the chain head
func (c *ethereumClient) LatestBlock(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.retry(ctx, "eth_blockNumber", func() error {
		header, err := c.client.HeaderByNumber(ctx, nil)
		if err != nil {
			return err
		}
		number = header.Number.Uint64()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return number, nil
}

// FilterLogs pages through [FromBlock, ToBlock]. A missing ToBlock means the chain head.
func (c *ethereumClient) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	if query.BlockHash != nil {
		return c.client.FilterLogs(ctx, query)
	}

	fromBlock := uint64(0)
	if query.FromBlock != nil {
		fromBlock = query.FromBlock.Uint64()
	}

	var toBlock uint64
	if query.ToBlock != nil {
		toBlock = query.ToBlock.Uint64()
	} else {
		latest, err := c.LatestBlock(ctx)
		if err != nil {
			return nil, err
		}
		toBlock = latest
	}

	var allLogs []types.Log
	stepSize := c.config.LogPageSize
	currentFrom := fromBlock

	for currentFrom <= toBlock {
		currentTo := currentFrom + stepSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		pageQuery := query
		pageQuery.FromBlock = new(big.Int).SetUint64(currentFrom)
		pageQuery.ToBlock = new(big.Int).SetUint64(currentTo)

		var logs []types.Log
		err := c.retry(ctx, "eth_getLogs", func() error {
			var err error
			logs, err = c.client.FilterLogs(ctx, pageQuery)
			if err != nil && isTooManyResultsError(err) {
				return backoff.Permanent(err)
			}
			return err
		})
		if err != nil {
			if !isTooManyResultsError(err) || stepSize == 1 {
				return nil, fmt.Errorf("failed to get logs for range %d-%d: %w", currentFrom, currentTo, err)
			}

			stepSize = stepSize / 2
			logger.WarnCtx(ctx, "Too many results, reducing step size",
				zap.Uint64("oldStepSize", stepSize*2),
				zap.Uint64("newStepSize", stepSize),
				zap.Uint64("fromBlock", currentFrom),
				zap.Uint64("toBlock", currentTo))
			continue
		}

		allLogs = append(allLogs, logs...)
		currentFrom = currentTo + 1
	}

	return allLogs, nil
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum")
}

// EnrichLog resolves what a log does not carry itself: the timestamp of its
// block and the externally owned account that sent its transaction
func (c *ethereumClient) EnrichLog(ctx context.Context, vLog types.Log) (*domain.ProtocolLog, error) {
	timestamp, err := c.blockTimestamp(ctx, vLog.BlockHash)
	if err != nil {
		return nil, err
	}

	origin, err := c.transactionOrigin(ctx, vLog)
	if err != nil {
		return nil, err
	}

	return &domain.ProtocolLog{
		Chain:          c.chainID,
		Log:            vLog,
		BlockTimestamp: timestamp,
		TxOrigin:       domain.AddressKey(origin),
	}, nil
}

func (c *ethereumClient) blockTimestamp(ctx context.Context, blockHash common.Hash) (uint64, error) {
	if timestamp, ok := c.timestamps.Get(blockHash); ok {
		return timestamp, nil
	}

	var header *types.Header
	err := c.retry(ctx, "eth_getBlockByHash", func() error {
		var err error
		header, err = c.client.HeaderByHash(ctx, blockHash)
		if err == nil && header == nil {
			return backoff.Permanent(ethereum.NotFound)
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get header %s: %w", blockHash.Hex(), err)
	}

	c.timestamps.Add(blockHash, header.Time)
	return header.Time, nil
}

func (c *ethereumClient) transactionOrigin(ctx context.Context, vLog types.Log) (common.Address, error) {
	if origin, ok := c.origins.Get(vLog.TxHash); ok {
		return origin, nil
	}

	var origin common.Address
	err := c.retry(ctx, "eth_getTransactionByHash", func() error {
		tx, _, err := c.client.TransactionByHash(ctx, vLog.TxHash)
		if err != nil {
			return err
		}
		origin, err = c.client.TransactionSender(ctx, tx, vLog.BlockHash, vLog.TxIndex)
		return err
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get sender of %s: %w", vLog.TxHash.Hex(), err)
	}

	c.origins.Add(vLog.TxHash, origin)
	return origin, nil
}

// retry runs an RPC call with exponential backoff. ethereum.NotFound is permanent.
func (c *ethereumClient) retry(ctx context.Context, method string, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.RetryInitialInterval
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = c.config.RetryMaxElapsedTime

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "RPC call failed, retrying",
			zap.Error(err),
			zap.String("method", method),
			zap.Duration("wait", wait))
	}

	return backoff.RetryNotify(func() error {
		err := operation()
		if err == ethereum.NotFound {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), notify)
}

// Close closes the connection
func (c *ethereumClient) Close() {
	c.client.Close()
}
