package projection

import (
	"context"
	"fmt"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// Projector keeps market and account entities in line with the live contract.
// Every refresh is a full snapshot read at the event's block, never a delta.
type Projector struct {
	accessor notional.Accessor
}

// NewProjector creates a projector reading through the accessor
func NewProjector(accessor notional.Accessor) *Projector {
	return &Projector{accessor: accessor}
}

// GetNToken loads the nToken of a currency, or a new one keyed by the currency
func GetNToken(ctx context.Context, s store.EntityStore, currencyID uint16) (*schema.NToken, error) {
	id := domain.CurrencyKey(currencyID)
	nToken, err := store.Get[schema.NToken](ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load nToken %s: %w", id, err)
	}
	if nToken == nil {
		nToken = &schema.NToken{ID: id, Currency: id, CashGroup: id}
	}
	return nToken, nil
}

// GetCashGroup loads the cash group of a currency, or a new one with no reserve balance
func GetCashGroup(ctx context.Context, s store.EntityStore, currencyID uint16) (*schema.CashGroup, error) {
	id := domain.CurrencyKey(currencyID)
	cashGroup, err := store.Get[schema.CashGroup](ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cash group %s: %w", id, err)
	}
	if cashGroup == nil {
		cashGroup = &schema.CashGroup{ID: id, Currency: id, ReserveBalance: "0"}
	}
	return cashGroup, nil
}

// GetBalance loads the balance of an account in a currency, or an empty one
func GetBalance(ctx context.Context, s store.EntityStore, account string, currencyID uint16) (*schema.Balance, error) {
	id := domain.BalanceKey(account, currencyID)
	balance, err := store.Get[schema.Balance](ctx, s, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance %s: %w", id, err)
	}
	if balance == nil {
		balance = &schema.Balance{
			ID:                      id,
			Account:                 account,
			Currency:                domain.CurrencyKey(currencyID),
			AssetCashBalance:        "0",
			NTokenBalance:           "0",
			LastClaimIntegralSupply: "0",
		}
	}
	return balance, nil
}
