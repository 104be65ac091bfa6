package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/projection"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

func (d *dispatcher) handleSetSettlementRate(ctx context.Context, s store.EntityStore, e *domain.SetSettlementRate) error {
	if e.CurrencyId == nil || !e.CurrencyId.IsUint64() || e.CurrencyId.Uint64() > 0xffff {
		return fmt.Errorf("%w: currency id %s out of range", domain.ErrDecode, e.CurrencyId)
	}
	currencyID := uint16(e.CurrencyId.Uint64())
	maturity := types.BigIntInt64(e.Maturity)

	// settlement rates are write once on-chain
	rate := &schema.SettlementRate{
		ID:                domain.SettlementRateKey(currencyID, maturity),
		Currency:          domain.CurrencyKey(currencyID),
		AssetExchangeRate: domain.CurrencyKey(currencyID),
		Maturity:          maturity,
		Rate:              types.BigIntString(e.Rate),
	}
	rate.Stamp(&e.EventMeta)
	if err := s.Save(ctx, rate); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Set settlement rate", zap.String("id", rate.ID), zap.String("rate", rate.Rate))
	return nil
}

func (d *dispatcher) handleMarketsInitialized(ctx context.Context, s store.EntityStore, e *domain.MarketsInitialized) error {
	tRef := codec.TimeRef(int64(e.BlockTimestamp))
	keys, err := d.projector.UpdateMarkets(ctx, s, e.CurrencyId, tRef, &e.EventMeta)
	if err != nil {
		return err
	}

	initialization := &schema.MarketInitialization{
		ID:       domain.MarketInitializationKey(e.CurrencyId, tRef),
		Currency: domain.CurrencyKey(e.CurrencyId),
		Markets:  keys,
		Origin:   schema.NewOrigin(&e.EventMeta),
	}
	if err := s.Save(ctx, initialization); err != nil {
		return err
	}

	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	if err := d.projector.UpdateNTokenPortfolio(ctx, s, nToken, &e.EventMeta, nil); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Initialized markets",
		zap.String("id", initialization.ID),
		zap.Int("markets", len(keys)))
	return nil
}

func (d *dispatcher) handleSweepCashIntoMarkets(ctx context.Context, s store.EntityStore, e *domain.SweepCashIntoMarkets) error {
	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	if err := d.projector.UpdateNTokenPortfolio(ctx, s, nToken, &e.EventMeta, nil); err != nil {
		return err
	}

	_, err = d.projector.UpdateMarkets(ctx, s, e.CurrencyId, int64(e.BlockTimestamp), &e.EventMeta)
	return err
}

func (d *dispatcher) handleNTokenSupplyChange(ctx context.Context, s store.EntityStore, e *domain.NTokenSupplyChange) error {
	nToken, err := projection.GetNToken(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}
	if err := d.projector.UpdateNTokenPortfolio(ctx, s, nToken, &e.EventMeta, &e.Account); err != nil {
		return err
	}

	_, err = d.projector.UpdateMarkets(ctx, s, e.CurrencyId, int64(e.BlockTimestamp), &e.EventMeta)
	return err
}
