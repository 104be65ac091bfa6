package handler

import (
	"context"
	"fmt"

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

const etherDecimals = 18

func getCurrency(ctx context.Context, s store.EntityStore, currencyID uint16) (*schema.Currency, error) {
	id := domain.CurrencyKey(currencyID)
	currency, err := store.Get[schema.Currency](ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load currency %s: %w", id, err)
	}
	if currency == nil {
		currency = &schema.Currency{ID: id}
	}
	return currency, nil
}

func (d *dispatcher) handleListCurrency(ctx context.Context, s store.EntityStore, e *domain.ListCurrency) error {
	assetToken, underlyingToken, err := d.accessor.GetCurrency(ctx, e.BlockNumber, e.NewCurrencyId)
	if err != nil {
		return err
	}

	currency, err := getCurrency(ctx, s, e.NewCurrencyId)
	if err != nil {
		return err
	}

	name, symbol, err := d.tokenMetadata(ctx, e.BlockNumber, assetToken.TokenAddress)
	if err != nil {
		return err
	}
	currency.TokenType = codec.TokenTypeString(assetToken.TokenType)
	currency.Name = name
	currency.Symbol = symbol
	currency.TokenAddress = domain.AddressKey(assetToken.TokenAddress)
	currency.Decimals = types.BigIntString(assetToken.Decimals)
	currency.HasTransferFee = assetToken.HasTransferFee
	currency.MaxCollateralBalance = types.BigIntStringPtr(assetToken.MaxCollateralBalance)

	if underlyingToken.TokenAddress != (common.Address{}) {
		underlyingName, underlyingSymbol, err := d.tokenMetadata(ctx, e.BlockNumber, underlyingToken.TokenAddress)
		if err != nil {
			return err
		}
		currency.UnderlyingName = types.StringPtr(underlyingName)
		currency.UnderlyingSymbol = types.StringPtr(underlyingSymbol)
		currency.UnderlyingTokenAddress = types.StringPtr(domain.AddressKey(underlyingToken.TokenAddress))
		currency.UnderlyingDecimals = types.BigIntStringPtr(underlyingToken.Decimals)
		currency.UnderlyingHasTransferFee = types.BoolPtr(underlyingToken.HasTransferFee)
	} else if currency.TokenType == codec.TokenTypeCETH {
		// cETH wraps native ether, which has no token contract
		currency.UnderlyingName = types.StringPtr("Ether")
		currency.UnderlyingSymbol = types.StringPtr("ETH")
		currency.UnderlyingDecimals = types.BigIntStringPtr(types.Pow10(etherDecimals))
		currency.UnderlyingHasTransferFee = types.BoolPtr(false)
	}

	if patch, ok := codec.LookupCurrencyPatch(currency.TokenAddress); ok {
		if patch.TokenAddress != nil {
			currency.TokenAddress = domain.AddressKey(*patch.TokenAddress)
		}
		if patch.UnderlyingSymbol != nil {
			currency.UnderlyingSymbol = types.StringPtr(*patch.UnderlyingSymbol)
		}
	}

	currency.Stamp(&e.EventMeta)
	if err := s.Save(ctx, currency); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Updated currency",
		zap.String("currency", currency.ID),
		zap.String("tokenType", currency.TokenType),
		zap.String("symbol", currency.Symbol))
	return nil
}

func (d *dispatcher) handleUpdateMaxCollateralBalance(ctx context.Context, s store.EntityStore, e *domain.UpdateMaxCollateralBalance) error {
	currency, err := getCurrency(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}

	currency.MaxCollateralBalance = types.BigIntStringPtr(e.MaxCollateralBalance)
	currency.Stamp(&e.EventMeta)
	if err := s.Save(ctx, currency); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Updated max collateral balance", zap.String("currency", currency.ID))
	return nil
}

func (d *dispatcher) handleUpdateETHRate(ctx context.Context, s store.EntityStore, e *domain.UpdateETHRate) error {
	ethRate, _, err := d.accessor.GetRateStorage(ctx, e.BlockNumber, e.CurrencyId)
	if err != nil {
		return err
	}

	id := domain.CurrencyKey(e.CurrencyId)
	rate, err := store.Get[schema.EthExchangeRate](ctx, s, id)
	if err != nil {
		return err
	}
	if rate == nil {
		rate = &schema.EthExchangeRate{ID: id}
	}

	rate.BaseCurrency = id
	rate.RateOracle = domain.AddressKey(ethRate.RateOracle)
	rate.RateDecimalPlaces = int32(ethRate.RateDecimalPlaces)
	rate.MustInvert = ethRate.MustInvert
	rate.Buffer = int32(ethRate.Buffer)
	rate.Haircut = int32(ethRate.Haircut)
	rate.LiquidationDiscount = int32(ethRate.LiquidationDiscount)
	rate.Stamp(&e.EventMeta)
	if err := s.Save(ctx, rate); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Updated ETH exchange rate", zap.String("currency", id))
	return nil
}

func (d *dispatcher) handleUpdateAssetRate(ctx context.Context, s store.EntityStore, e *domain.UpdateAssetRate) error {
	_, assetRate, err := d.accessor.GetRateStorage(ctx, e.BlockNumber, e.CurrencyId)
	if err != nil {
		return err
	}

	id := domain.CurrencyKey(e.CurrencyId)
	rate, err := store.Get[schema.AssetExchangeRate](ctx, s, id)
	if err != nil {
		return err
	}
	if rate == nil {
		rate = &schema.AssetExchangeRate{ID: id}
	}

	rate.AssetCurrency = id
	rate.RateAdapterAddress = domain.AddressKey(assetRate.RateOracle)
	rate.UnderlyingDecimalPlaces = int32(assetRate.UnderlyingDecimalPlaces)
	rate.Stamp(&e.EventMeta)
	if err := s.Save(ctx, rate); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Updated asset exchange rate", zap.String("currency", id))
	return nil
}

func (d *dispatcher) handleUpdateCashGroup(ctx context.Context, s store.EntityStore, e *domain.UpdateCashGroup) error {
	settings, err := d.accessor.GetCashGroup(ctx, e.BlockNumber, e.CurrencyId)
	if err != nil {
		return err
	}

	cashGroup, err := projection.GetCashGroup(ctx, s, e.CurrencyId)
	if err != nil {
		return err
	}

	cashGroup.MaxMarketIndex = int32(settings.MaxMarketIndex)
	cashGroup.MaxMarketMaturityLengthSeconds = codec.MarketMaturityLengthSeconds(int(settings.MaxMarketIndex))
	cashGroup.RateOracleTimeWindowSeconds = codec.ScaleFiveMinutes(int64(settings.RateOracleTimeWindow5Min))
	cashGroup.TotalFeeBasisPoints = codec.ScaleBasisPoints(int64(settings.TotalFeeBPS), domain.OneBasisPointStep)
	cashGroup.ReserveFeeSharePercent = int32(settings.ReserveFeeShare)
	cashGroup.DebtBufferBasisPoints = codec.ScaleBasisPoints(int64(settings.DebtBuffer5BPS), domain.FiveBasisPointStep)
	cashGroup.FCashHaircutBasisPoints = codec.ScaleBasisPoints(int64(settings.FCashHaircut5BPS), domain.FiveBasisPointStep)
	cashGroup.SettlementPenaltyRateBasisPoints = codec.ScaleBasisPoints(int64(settings.SettlementPenaltyRate5BPS), domain.FiveBasisPointStep)
	cashGroup.LiquidationFCashHaircutBasisPoints = codec.ScaleBasisPoints(int64(settings.LiquidationfCashHaircut5BPS), domain.FiveBasisPointStep)
	cashGroup.LiquidationDebtBufferBasisPoints = codec.ScaleBasisPoints(int64(settings.LiquidationDebtBuffer5BPS), domain.FiveBasisPointStep)
	cashGroup.LiquidityTokenHaircutsPercent = types.Uint8sToInt32s(settings.LiquidityTokenHaircuts)
	// rate scalars are scaled by the contract itself
	cashGroup.RateScalars = types.Uint8sToInt32s(settings.RateScalars)
	cashGroup.Stamp(&e.EventMeta)
	if err := s.Save(ctx, cashGroup); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Updated cash group",
		zap.String("currency", cashGroup.ID),
		zap.Int32("maxMarketIndex", cashGroup.MaxMarketIndex))
	return nil
}
