package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/messaging"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
)

// Config holds the configuration for Ethereum subscription
type Config struct {
	WebSocketURL    string         // WebSocket URL (e.g., wss://mainnet.infura.io/ws/v3/YOUR_PROJECT_ID)
	ChainID         domain.Chain   // e.g., "eip155:1" for Ethereum mainnet
	NotionalAddress common.Address // the Notional router, source of every protocol event
}

type ethSubscriber struct {
	client          EthereumClient
	chainID         domain.Chain
	notionalAddress common.Address
}

// NewSubscriber creates a new Notional log subscriber
func NewSubscriber(cfg Config, ethereumClient EthereumClient) messaging.Subscriber {
	return &ethSubscriber{
		client:          ethereumClient,
		chainID:         cfg.ChainID,
		notionalAddress: cfg.NotionalAddress,
	}
}

func (s *ethSubscriber) filterQuery() ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{s.notionalAddress},
		Topics:    [][]common.Hash{notional.EventTopics()},
	}
}

// SubscribeLogs replays [fromBlock, head] from history, then follows new blocks.
// Logs at or below the last replayed block are dropped from the live stream so
// that the overlap between history and subscription is delivered once.
func (s *ethSubscriber) SubscribeLogs(ctx context.Context, fromBlock uint64, handler messaging.LogHandler) error {
	var cutoff uint64
	if fromBlock > 0 {
		cutoff = fromBlock - 1

		latest, err := s.client.LatestBlock(ctx)
		if err != nil {
			return err
		}
		if fromBlock <= latest {
			if err := s.replay(ctx, fromBlock, latest, handler); err != nil {
				return err
			}
			cutoff = latest
		}
	}

	logs := make(chan types.Log)
	sub, err := s.client.SubscribeFilterLogs(ctx, s.filterQuery(), logs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSubscriptionFailed, err)
	}
	defer func() {
		logger.InfoCtx(ctx, "Unsubscribing from notional logs")
		sub.Unsubscribe()
		logger.InfoCtx(ctx, "Unsubscribed from notional logs")
	}()

	// blocks mined while the replay ran are not in the live stream
	if fromBlock > 0 {
		head, err := s.client.LatestBlock(ctx)
		if err != nil {
			return err
		}
		if head > cutoff {
			if err := s.replay(ctx, cutoff+1, head, handler); err != nil {
				return err
			}
			cutoff = head
		}
	}

	logger.InfoCtx(ctx, "Following notional logs",
		zap.String("chain", string(s.chainID)),
		zap.Uint64("afterBlock", cutoff))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("%w: subscription error: %w", domain.ErrSubscriptionFailed, err)
		case vLog := <-logs:
			if vLog.BlockNumber <= cutoff {
				continue
			}
			if err := s.deliver(ctx, vLog, handler); err != nil {
				return err
			}
		}
	}
}

func (s *ethSubscriber) replay(ctx context.Context, fromBlock, toBlock uint64, handler messaging.LogHandler) error {
	query := s.filterQuery()
	query.FromBlock = new(big.Int).SetUint64(fromBlock)
	query.ToBlock = new(big.Int).SetUint64(toBlock)

	logs, err := s.client.FilterLogs(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to replay blocks %d-%d: %w", fromBlock, toBlock, err)
	}

	logger.InfoCtx(ctx, "Replaying notional logs",
		zap.Uint64("fromBlock", fromBlock),
		zap.Uint64("toBlock", toBlock),
		zap.Int("count", len(logs)))

	for _, vLog := range logs {
		if err := s.deliver(ctx, vLog, handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *ethSubscriber) deliver(ctx context.Context, vLog types.Log, handler messaging.LogHandler) error {
	if vLog.Removed {
		logger.WarnCtx(ctx, "Skipping log removed by a reorg",
			zap.String("txHash", vLog.TxHash.Hex()),
			zap.Uint("logIndex", vLog.Index),
			zap.Uint64("blockNumber", vLog.BlockNumber))
		return nil
	}

	protocolLog, err := s.client.EnrichLog(ctx, vLog)
	if err != nil {
		return fmt.Errorf("failed to enrich log %s:%d: %w", vLog.TxHash.Hex(), vLog.Index, err)
	}

	if err := handler(protocolLog); err != nil {
		return fmt.Errorf("failed to handle log %s:%d: %w", vLog.TxHash.Hex(), vLog.Index, err)
	}
	return nil
}

// GetLatestBlock returns the latest block number
func (s *ethSubscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	return s.client.LatestBlock(ctx)
}

// Close closes the connection
func (s *ethSubscriber) Close() {
	if s.client == nil {
		return
	}

	s.client.Close()
	logger.Info("Ethereum WebSocket connection closed")
}
