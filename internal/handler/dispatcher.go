package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/projection"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
)

// Dispatcher applies decoded protocol events to the entity store
//
//go:generate mockgen -source=dispatcher.go -destination=../mocks/dispatcher.go -package=mocks -mock_names=Dispatcher=MockDispatcher
type Dispatcher interface {
	// Dispatch applies one event. Either every write of the event is persisted or none is.
	Dispatch(ctx context.Context, event domain.Event) error
}

type dispatcher struct {
	accessor  notional.Accessor
	projector *projection.Projector
	store     store.Store
}

// NewDispatcher creates a dispatcher reading contract state through the accessor
func NewDispatcher(accessor notional.Accessor, s store.Store) Dispatcher {
	return &dispatcher{
		accessor:  accessor,
		projector: projection.NewProjector(accessor),
		store:     s,
	}
}

// Dispatch stages the writes of the event's handler and commits them once the
// handler has finished every read
func (d *dispatcher) Dispatch(ctx context.Context, event domain.Event) error {
	meta := event.Metadata()
	ctx = logger.WithFields(ctx,
		zap.String("event", string(event.Kind())),
		zap.Uint64("blockNumber", meta.BlockNumber),
		zap.String("txHash", domain.HashKey(meta.TxHash)),
		zap.Uint("logIndex", meta.LogIndex))

	batch := store.NewBatch(d.store)
	if err := d.handle(ctx, batch, event); err != nil {
		return fmt.Errorf("failed to handle %s: %w", event.Kind(), err)
	}

	writes := batch.Len()
	if err := batch.Commit(ctx, d.store); err != nil {
		return fmt.Errorf("failed to persist %s: %w", event.Kind(), err)
	}

	logger.DebugCtx(ctx, "Applied event", zap.Int("writes", writes))
	return nil
}

func (d *dispatcher) handle(ctx context.Context, s store.EntityStore, event domain.Event) error {
	switch e := event.(type) {
	case *domain.ListCurrency:
		return d.handleListCurrency(ctx, s, e)
	case *domain.UpdateMaxCollateralBalance:
		return d.handleUpdateMaxCollateralBalance(ctx, s, e)
	case *domain.UpdateETHRate:
		return d.handleUpdateETHRate(ctx, s, e)
	case *domain.UpdateAssetRate:
		return d.handleUpdateAssetRate(ctx, s, e)
	case *domain.UpdateCashGroup:
		return d.handleUpdateCashGroup(ctx, s, e)
	case *domain.DeployNToken:
		return d.handleDeployNToken(ctx, s, e)
	case *domain.UpdateDepositParameters:
		return d.handleUpdateDepositParameters(ctx, s, e)
	case *domain.UpdateInitializationParameters:
		return d.handleUpdateInitializationParameters(ctx, s, e)
	case *domain.UpdateIncentiveEmissionRate:
		return d.handleUpdateIncentiveEmissionRate(ctx, s, e)
	case *domain.UpdateTokenCollateralParameters:
		return d.handleUpdateTokenCollateralParameters(ctx, s, e)
	case *domain.UpdateGlobalTransferOperator:
		return d.handleUpdateGlobalTransferOperator(ctx, s, e)
	case *domain.UpdateAuthorizedCallbackContract:
		return d.handleUpdateAuthorizedCallbackContract(ctx, s, e)
	case *domain.SetSettlementRate:
		return d.handleSetSettlementRate(ctx, s, e)
	case *domain.MarketsInitialized:
		return d.handleMarketsInitialized(ctx, s, e)
	case *domain.SweepCashIntoMarkets:
		return d.handleSweepCashIntoMarkets(ctx, s, e)
	case *domain.AccountContextUpdate:
		return d.projector.UpdateAccount(ctx, s, e.Account, &e.EventMeta)
	case *domain.AccountSettled:
		return d.projector.UpdateAccount(ctx, s, e.Account, &e.EventMeta)
	case *domain.NTokenSupplyChange:
		return d.handleNTokenSupplyChange(ctx, s, e)
	case *domain.AddRemoveLiquidity:
		return d.handleAddRemoveLiquidity(ctx, s, e)
	case *domain.SettledCashDebt:
		return d.handleSettledCashDebt(ctx, s, e)
	case *domain.NTokenResidualPurchase:
		return d.handleNTokenResidualPurchase(ctx, s, e)
	case *domain.LendBorrowTrade:
		return d.handleLendBorrowTrade(ctx, s, e)
	case *domain.LiquidateLocalCurrency:
		return d.handleLiquidateLocalCurrency(ctx, s, e)
	case *domain.LiquidateCollateralCurrency:
		return d.handleLiquidateCollateralCurrency(ctx, s, e)
	case *domain.LiquidatefCash:
		return d.handleLiquidatefCash(ctx, s, e)
	}
	return fmt.Errorf("%w: %T", domain.ErrUnknownEvent, event)
}

// tokenMetadata reads the name and symbol of a token. A token that does not
// implement either getter gets the unknown sentinel.
func (d *dispatcher) tokenMetadata(ctx context.Context, blockNumber uint64, token common.Address) (string, string, error) {
	name, err := recoverMetadata(d.accessor.TokenName(ctx, blockNumber, token))
	if err != nil {
		return "", "", err
	}
	symbol, err := recoverMetadata(d.accessor.TokenSymbol(ctx, blockNumber, token))
	if err != nil {
		return "", "", err
	}
	return name, symbol, nil
}

func recoverMetadata(value string, err error) (string, error) {
	if err == nil {
		return value, nil
	}
	if errors.Is(err, domain.ErrReverted) || errors.Is(err, domain.ErrDecode) {
		return codec.Unknown, nil
	}
	return "", err
}
