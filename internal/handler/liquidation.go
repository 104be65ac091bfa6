package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

func newLiquidation(liquidationType string, e *domain.EventMeta) *schema.Liquidation {
	return &schema.Liquidation{
		ID:     domain.LiquidationKey(e.TxHash, e.LogIndex),
		Type:   liquidationType,
		Origin: schema.NewOrigin(e),
	}
}

func (d *dispatcher) handleLiquidateLocalCurrency(ctx context.Context, s store.EntityStore, e *domain.LiquidateLocalCurrency) error {
	liquidation := newLiquidation(schema.LiquidationTypeLocalCurrency, &e.EventMeta)
	liquidation.Account = domain.AddressKey(e.Liquidated)
	liquidation.Liquidator = domain.AddressKey(e.Liquidator)
	liquidation.LocalCurrency = domain.CurrencyKey(e.LocalCurrencyId)
	liquidation.NetLocalFromLiquidator = types.BigIntString(e.NetLocalFromLiquidator)
	return saveLiquidation(ctx, s, liquidation)
}

func (d *dispatcher) handleLiquidateCollateralCurrency(ctx context.Context, s store.EntityStore, e *domain.LiquidateCollateralCurrency) error {
	liquidation := newLiquidation(schema.LiquidationTypeCollateralCurrency, &e.EventMeta)
	liquidation.Account = domain.AddressKey(e.Liquidated)
	liquidation.Liquidator = domain.AddressKey(e.Liquidator)
	liquidation.LocalCurrency = domain.CurrencyKey(e.LocalCurrencyId)
	liquidation.CollateralOrFcashCurrency = types.StringPtr(domain.CurrencyKey(e.CollateralCurrencyId))
	liquidation.NetLocalFromLiquidator = types.BigIntString(e.NetLocalFromLiquidator)
	liquidation.NetCollateralTransfer = types.BigIntStringPtr(e.NetCollateralTransfer)
	liquidation.NetNTokenTransfer = types.BigIntStringPtr(e.NetNTokenTransfer)
	return saveLiquidation(ctx, s, liquidation)
}

func (d *dispatcher) handleLiquidatefCash(ctx context.Context, s store.EntityStore, e *domain.LiquidatefCash) error {
	liquidation := newLiquidation(types.FCashLiquidationType(e.LocalCurrencyId, e.FCashCurrency), &e.EventMeta)
	liquidation.Account = domain.AddressKey(e.Liquidated)
	liquidation.Liquidator = domain.AddressKey(e.Liquidator)
	liquidation.LocalCurrency = domain.CurrencyKey(e.LocalCurrencyId)
	liquidation.CollateralOrFcashCurrency = types.StringPtr(domain.CurrencyKey(e.FCashCurrency))
	liquidation.NetLocalFromLiquidator = types.BigIntString(e.NetLocalFromLiquidator)
	liquidation.FCashMaturities = types.BigIntsToInt64s(e.FCashMaturities)
	liquidation.FCashNotionalTransfer = types.BigIntsToStrings(e.FCashNotionalTransfer)
	return saveLiquidation(ctx, s, liquidation)
}

func saveLiquidation(ctx context.Context, s store.EntityStore, liquidation *schema.Liquidation) error {
	if err := s.Save(ctx, liquidation); err != nil {
		return err
	}
	logger.DebugCtx(ctx, "Recorded liquidation",
		zap.String("id", liquidation.ID),
		zap.String("type", liquidation.Type),
		zap.String("account", liquidation.Account))
	return nil
}
