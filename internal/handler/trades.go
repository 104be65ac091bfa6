package handler

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/projection"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

// Markets are refreshed before a trade is written so the trade's market
// reference resolves to the post trade market state.

func (d *dispatcher) handleLendBorrowTrade(ctx context.Context, s store.EntityStore, e *domain.LendBorrowTrade) error {
	blockTime := int64(e.BlockTimestamp)
	if _, err := d.projector.UpdateMarkets(ctx, s, e.CurrencyId, blockTime, &e.EventMeta); err != nil {
		return err
	}

	netUnderlyingCash, err := d.projector.ConvertAssetToUnderlying(ctx, e.CurrencyId, e.NetAssetCash, &e.EventMeta)
	if err != nil {
		return err
	}

	maturity := types.BigIntInt64(e.Maturity)
	trade := projection.NewTrade(e.CurrencyId, e.Account, &e.EventMeta)
	trade.TradeType = types.LendBorrowTradeType(e.NetAssetCash)
	trade.NetAssetCash = types.BigIntString(e.NetAssetCash)
	trade.NetUnderlyingCash = types.BigIntStringPtr(netUnderlyingCash)
	trade.NetfCash = types.BigIntString(e.NetfCash)
	trade.Maturity = maturity
	trade.Market = projection.MarketKeyFor(e.CurrencyId, maturity, blockTime)

	// a redelivered trade is already counted in its day's volume
	applied, err := store.Get[schema.Trade](ctx, s, trade.ID)
	if err != nil {
		return fmt.Errorf("failed to load trade %s: %w", trade.ID, err)
	}
	if applied == nil {
		if err := projection.UpdateDailyLendBorrowVolume(ctx, s, e.CurrencyId, trade, &e.EventMeta); err != nil {
			return err
		}
	}
	return d.saveTrades(ctx, s, trade)
}

func (d *dispatcher) handleAddRemoveLiquidity(ctx context.Context, s store.EntityStore, e *domain.AddRemoveLiquidity) error {
	blockTime := int64(e.BlockTimestamp)
	if _, err := d.projector.UpdateMarkets(ctx, s, e.CurrencyId, blockTime, &e.EventMeta); err != nil {
		return err
	}

	netUnderlyingCash, err := d.projector.ConvertAssetToUnderlying(ctx, e.CurrencyId, e.NetAssetCash, &e.EventMeta)
	if err != nil {
		return err
	}

	maturity := types.BigIntInt64(e.Maturity)
	trade := projection.NewTrade(e.CurrencyId, e.Account, &e.EventMeta)
	trade.TradeType = types.LiquidityTradeType(e.NetLiquidityTokens)
	trade.NetAssetCash = types.BigIntString(e.NetAssetCash)
	trade.NetUnderlyingCash = types.BigIntStringPtr(netUnderlyingCash)
	trade.NetfCash = types.BigIntString(e.NetfCash)
	trade.NetLiquidityTokens = types.BigIntStringPtr(e.NetLiquidityTokens)
	trade.Maturity = maturity
	trade.Market = projection.MarketKeyFor(e.CurrencyId, maturity, blockTime)

	return d.saveTrades(ctx, s, trade)
}

func (d *dispatcher) handleSettledCashDebt(ctx context.Context, s store.EntityStore, e *domain.SettledCashDebt) error {
	blockTime := int64(e.BlockTimestamp)
	if _, err := d.projector.UpdateMarkets(ctx, s, e.CurrencyId, blockTime, &e.EventMeta); err != nil {
		return err
	}

	// settled debt becomes fCash in the three month market
	maturity := codec.TimeRef(blockTime) + domain.Quarter
	settled, settler, err := d.mirroredTrades(ctx, e.CurrencyId, e.SettledAccount, e.Settler,
		e.AmountToSettleAsset, e.FCashAmount, maturity, &e.EventMeta)
	if err != nil {
		return err
	}
	settled.TradeType = schema.TradeTypeSettleCashDebt
	settler.TradeType = schema.TradeTypeSettleCashDebt

	return d.saveTrades(ctx, s, settled, settler)
}

func (d *dispatcher) handleNTokenResidualPurchase(ctx context.Context, s store.EntityStore, e *domain.NTokenResidualPurchase) error {
	if _, err := d.projector.UpdateMarkets(ctx, s, e.CurrencyId, int64(e.BlockTimestamp), &e.EventMeta); err != nil {
		return err
	}

	nTokenAddress, err := d.accessor.NTokenAddress(ctx, e.BlockNumber, e.CurrencyId)
	if err != nil {
		return err
	}

	nTokenTrade, purchaserTrade, err := d.mirroredTrades(ctx, e.CurrencyId, nTokenAddress, e.Purchaser,
		e.NetAssetCashNToken, e.FCashAmountToPurchase, types.BigIntInt64(e.Maturity), &e.EventMeta)
	if err != nil {
		return err
	}
	nTokenTrade.TradeType = schema.TradeTypePurchaseNTokenResidual
	purchaserTrade.TradeType = schema.TradeTypePurchaseNTokenResidual

	return d.saveTrades(ctx, s, nTokenTrade, purchaserTrade)
}

// mirroredTrades builds the two sides of a transfer between accounts. The
// first side receives the amounts as given, the second their negation. The
// asset amount is converted once so both sides mirror exactly.
func (d *dispatcher) mirroredTrades(
	ctx context.Context,
	currencyID uint16,
	account common.Address,
	counterparty common.Address,
	netAssetCash *big.Int,
	netfCash *big.Int,
	maturity int64,
	meta *domain.EventMeta,
) (*schema.Trade, *schema.Trade, error) {
	netUnderlyingCash, err := d.projector.ConvertAssetToUnderlying(ctx, currencyID, netAssetCash, meta)
	if err != nil {
		return nil, nil, err
	}

	assetCash := types.BigIntOrZero(netAssetCash)
	fCash := types.BigIntOrZero(netfCash)
	market := projection.MarketKeyFor(currencyID, maturity, int64(meta.BlockTimestamp))

	side := projection.NewTrade(currencyID, account, meta)
	side.NetAssetCash = assetCash.String()
	side.NetUnderlyingCash = types.BigIntStringPtr(netUnderlyingCash)
	side.NetfCash = fCash.String()
	side.Maturity = maturity
	side.Market = market

	other := projection.NewTrade(currencyID, counterparty, meta)
	other.NetAssetCash = new(big.Int).Neg(assetCash).String()
	other.NetUnderlyingCash = types.BigIntStringPtr(new(big.Int).Neg(netUnderlyingCash))
	other.NetfCash = new(big.Int).Neg(fCash).String()
	other.Maturity = maturity
	other.Market = market

	return side, other, nil
}

func (d *dispatcher) saveTrades(ctx context.Context, s store.EntityStore, trades ...*schema.Trade) error {
	for _, trade := range trades {
		if err := s.Save(ctx, trade); err != nil {
			return err
		}
		logger.DebugCtx(ctx, "Recorded trade",
			zap.String("id", trade.ID),
			zap.String("tradeType", trade.TradeType),
			zap.String("netAssetCash", trade.NetAssetCash))
	}
	return nil
}
