package projection

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

// NewTrade creates the trade of one account for an event
func NewTrade(currencyID uint16, account common.Address, meta *domain.EventMeta) *schema.Trade {
	return &schema.Trade{
		ID:       domain.TradeKey(currencyID, account, meta.TxHash, meta.LogIndex),
		Currency: domain.CurrencyKey(currencyID),
		Account:  domain.AddressKey(account),
		NetfCash: "0",
		Origin:   schema.NewOrigin(meta),
	}
}

// ConvertAssetToUnderlying converts asset cash into underlying at the asset
// rate of the event's block
func (p *Projector) ConvertAssetToUnderlying(ctx context.Context, currencyID uint16, assetAmount *big.Int, meta *domain.EventMeta) (*big.Int, error) {
	rates, err := p.accessor.GetCurrencyAndRates(ctx, meta.BlockNumber, currencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset rate of currency %d: %w", currencyID, err)
	}
	return codec.AssetToUnderlying(assetAmount, codec.AssetRate{
		Rate:               rates.AssetRate.Rate,
		UnderlyingDecimals: rates.AssetRate.UnderlyingDecimals,
	}), nil
}

// UpdateDailyLendBorrowVolume adds a lend or borrow trade to the volume of its
// day. Volumes accumulate absolute amounts.
func UpdateDailyLendBorrowVolume(ctx context.Context, s store.EntityStore, currencyID uint16, trade *schema.Trade, meta *domain.EventMeta) error {
	dayID := int64(meta.BlockTimestamp) / domain.DaySeconds
	id := domain.DailyVolumeKey(dayID, currencyID, trade.TradeType)

	volume, err := store.Get[schema.DailyLendBorrowVolume](ctx, s, id)
	if err != nil {
		return fmt.Errorf("failed to load daily volume %s: %w", id, err)
	}
	if volume == nil {
		volume = &schema.DailyLendBorrowVolume{
			ID:                        id,
			Date:                      dayID * domain.DaySeconds,
			Currency:                  domain.CurrencyKey(currencyID),
			TradeType:                 trade.TradeType,
			TotalVolumeUnderlyingCash: "0",
			TotalVolumeNetAssetCash:   "0",
			TotalVolumeNetfCash:       "0",
		}
	}

	if volume.TotalVolumeUnderlyingCash, err = addAbs(volume.TotalVolumeUnderlyingCash, types.SafeString(trade.NetUnderlyingCash)); err != nil {
		return err
	}
	if volume.TotalVolumeNetAssetCash, err = addAbs(volume.TotalVolumeNetAssetCash, trade.NetAssetCash); err != nil {
		return err
	}
	if volume.TotalVolumeNetfCash, err = addAbs(volume.TotalVolumeNetfCash, trade.NetfCash); err != nil {
		return err
	}
	volume.Market = trade.Market
	volume.TxCount++

	if err := s.Save(ctx, volume); err != nil {
		return fmt.Errorf("failed to save daily volume %s: %w", id, err)
	}
	return nil
}

// addAbs returns total + |delta| for decimal strings
func addAbs(total string, delta string) (string, error) {
	t, ok := types.ParseBigInt(total)
	if !ok {
		return "", fmt.Errorf("invalid volume total %q", total)
	}
	d, ok := types.ParseBigInt(delta)
	if !ok {
		return "", fmt.Errorf("invalid trade amount %q", delta)
	}
	return t.Add(t, d.Abs(d)).String(), nil
}
