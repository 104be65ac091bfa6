package projection

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/notional-finance/notional-indexer/internal/codec"
	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/logger"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/types"
)

// UpdateAccount replaces the account's settlement state, balances and portfolio
// with the on-chain snapshot. Assets that left the portfolio are deleted.
func (p *Projector) UpdateAccount(ctx context.Context, s store.EntityStore, address common.Address, meta *domain.EventMeta) error {
	snapshot, err := p.accessor.GetAccount(ctx, meta.BlockNumber, address)
	if err != nil {
		return fmt.Errorf("failed to get account %s: %w", address.Hex(), err)
	}

	id := domain.AddressKey(address)
	account, err := store.Get[schema.Account](ctx, s, id)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", id, err)
	}
	if account == nil {
		account = &schema.Account{ID: id}
	}

	accountContext := snapshot.Context
	account.NextSettleTime = types.BigIntInt64(accountContext.NextSettleTime)
	account.HasPortfolioAssetDebt = accountContext.HasDebt[0]&domain.HasAssetDebt != 0
	account.HasCashDebt = accountContext.HasDebt[0]&domain.HasCashDebt != 0
	account.AssetBitmapCurrency = nil
	if accountContext.BitmapCurrencyId != 0 {
		account.AssetBitmapCurrency = types.StringPtr(domain.CurrencyKey(accountContext.BitmapCurrencyId))
	}

	balances := make([]string, 0, len(snapshot.Balances))
	for _, b := range snapshot.Balances {
		// unused balance slots are returned with currency 0
		if b.CurrencyId == 0 {
			continue
		}
		balance, err := GetBalance(ctx, s, id, b.CurrencyId)
		if err != nil {
			return err
		}
		balance.AssetCashBalance = types.BigIntString(b.CashBalance)
		balance.NTokenBalance = types.BigIntString(b.NTokenBalance)
		balance.LastClaimTime = types.BigIntInt64(b.LastClaimTime)
		balance.LastClaimIntegralSupply = types.BigIntString(b.LastClaimIntegralSupply)
		balance.Stamp(meta)
		if err := s.Save(ctx, balance); err != nil {
			return fmt.Errorf("failed to save balance %s: %w", balance.ID, err)
		}
		balances = append(balances, balance.ID)
	}

	portfolio := make([]string, 0, len(snapshot.Portfolio))
	held := make(map[string]bool, len(snapshot.Portfolio))
	for _, a := range snapshot.Portfolio {
		asset := newAsset(id, a.CurrencyId, a.AssetType, a.Maturity, a.Notional)
		asset.Stamp(meta)
		if err := s.Save(ctx, asset); err != nil {
			return fmt.Errorf("failed to save asset %s: %w", asset.ID, err)
		}
		portfolio = append(portfolio, asset.ID)
		held[asset.ID] = true
	}

	for _, assetID := range account.Portfolio {
		if held[assetID] {
			continue
		}
		if err := s.Delete(ctx, &schema.Asset{ID: assetID}); err != nil {
			return fmt.Errorf("failed to delete asset %s: %w", assetID, err)
		}
	}

	account.Balances = balances
	account.Portfolio = portfolio
	account.Stamp(meta)
	if err := s.Save(ctx, account); err != nil {
		return fmt.Errorf("failed to save account %s: %w", id, err)
	}

	logger.DebugCtx(ctx, "Updated account",
		zap.String("account", id),
		zap.Int("balances", len(balances)),
		zap.Int("assets", len(portfolio)))

	return nil
}

// newAsset builds a portfolio asset. Liquidity tokens are numbered by market
// index plus one, which locates the quarter their market settles on.
func newAsset(account string, currency, assetType, maturity, notional *big.Int) *schema.Asset {
	currencyID := uint16(types.BigIntInt64(currency))
	rawType := types.BigIntInt64(assetType)
	assetMaturity := types.BigIntInt64(maturity)
	assetTypeName := codec.AssetTypeString(rawType)

	settlementDate := assetMaturity
	if assetTypeName != codec.AssetTypeFCash && assetTypeName != codec.Unknown {
		settlementDate = codec.SettlementDate(assetMaturity, int(rawType-1))
	}

	return &schema.Asset{
		ID:             domain.AssetKey(account, currencyID, assetTypeName, assetMaturity),
		Account:        account,
		Currency:       domain.CurrencyKey(currencyID),
		AssetType:      assetTypeName,
		Maturity:       assetMaturity,
		SettlementDate: settlementDate,
		Notional:       types.BigIntString(notional),
	}
}

// UpdateNTokenPortfolio refreshes the supply of an nToken and the account
// projection of the nToken. When counterparty is set that account is refreshed
// as well, since supply changes are two sided.
func (p *Projector) UpdateNTokenPortfolio(ctx context.Context, s store.EntityStore, nToken *schema.NToken, meta *domain.EventMeta, counterparty *common.Address) error {
	if !types.IsEthereumAddress(nToken.TokenAddress) {
		return fmt.Errorf("nToken %s has no token address", nToken.ID)
	}
	tokenAddress := common.HexToAddress(nToken.TokenAddress)

	state, err := p.accessor.GetNTokenAccount(ctx, meta.BlockNumber, tokenAddress)
	if err != nil {
		return fmt.Errorf("failed to get nToken account %s: %w", nToken.TokenAddress, err)
	}

	nToken.TotalSupply = types.BigIntStringPtr(state.TotalSupply)
	nToken.IntegralTotalSupply = types.BigIntStringPtr(state.IntegralTotalSupply)
	nToken.LastSupplyChangeTime = types.BigIntStringPtr(state.LastSupplyChangeTime)
	nToken.Stamp(meta)
	if err := s.Save(ctx, nToken); err != nil {
		return fmt.Errorf("failed to save nToken %s: %w", nToken.ID, err)
	}

	if err := p.UpdateAccount(ctx, s, tokenAddress, meta); err != nil {
		return err
	}
	if counterparty != nil {
		if err := p.UpdateAccount(ctx, s, *counterparty, meta); err != nil {
			return err
		}
	}
	return nil
}
