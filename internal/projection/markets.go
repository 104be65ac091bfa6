package projection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

// UpdateMarkets snapshots every active market of a currency as of blockTime and
// returns the market keys in slot order. It must complete before a trade that
// references one of the markets is written.
func (p *Projector) UpdateMarkets(ctx context.Context, s store.EntityStore, currencyID uint16, blockTime int64, meta *domain.EventMeta) ([]string, error) {
	markets, err := p.accessor.GetActiveMarketsAtBlockTime(ctx, meta.BlockNumber, currencyID, uint32(blockTime))
	if err != nil {
		return nil, fmt.Errorf("failed to get active markets of currency %d: %w", currencyID, err)
	}

	// every active market was last initialized on the current quarter
	settlementDate := codec.TimeRef(blockTime) + domain.Quarter

	keys := make([]string, 0, len(markets))
	for i, m := range markets {
		marketIndex := i + 1
		maturity := types.BigIntInt64(m.Maturity)

		market := &schema.Market{
			ID:                          domain.MarketKey(currencyID, settlementDate, maturity),
			Currency:                    domain.CurrencyKey(currencyID),
			MarketIndex:                 int32(marketIndex),
			SettlementDate:              settlementDate,
			Maturity:                    maturity,
			MarketMaturityLengthSeconds: codec.MarketMaturityLengthSeconds(marketIndex),
			TotalfCash:                  types.BigIntString(m.TotalfCash),
			TotalAssetCash:              types.BigIntString(m.TotalAssetCash),
			TotalLiquidity:              types.BigIntString(m.TotalLiquidity),
			LastImpliedRate:             types.BigIntInt64(m.LastImpliedRate),
			OracleRate:                  types.BigIntInt64(m.OracleRate),
			PreviousTradeTime:           types.BigIntInt64(m.PreviousTradeTime),
		}
		market.Stamp(meta)

		if err := s.Save(ctx, market); err != nil {
			return nil, fmt.Errorf("failed to save market %s: %w", market.ID, err)
		}
		keys = append(keys, market.ID)
	}

	logger.DebugCtx(ctx, "Updated markets",
		zap.Uint16("currencyId", currencyID),
		zap.Int64("settlementDate", settlementDate),
		zap.Int("count", len(keys)))

	return keys, nil
}

// MarketKeyFor returns the key of the market a maturity trades in at blockTime,
// nil when the maturity is not an active market slot
func MarketKeyFor(currencyID uint16, maturity int64, blockTime int64) *string {
	_, settlementDate, err := codec.MarketFor(maturity, blockTime)
	if err != nil {
		return nil
	}
	return types.StringPtr(domain.MarketKey(currencyID, settlementDate, maturity))
}
