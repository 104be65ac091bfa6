package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildTestProvenance(blockNumber uint64) schema.Provenance {
	return schema.Provenance{
		LastUpdateBlockNumber:     blockNumber,
		LastUpdateTimestamp:       1_650_000_000 + blockNumber,
		LastUpdateBlockHash:       "0xblockhash",
		LastUpdateTransactionHash: "0xtxhash",
	}
}

func buildTestAccount(address string) *schema.Account {
	currency := "2"
	return &schema.Account{
		ID:                    address,
		NextSettleTime:        1_656_000_000,
		HasPortfolioAssetDebt: true,
		AssetBitmapCurrency:   &currency,
		Balances:              datatypes.JSONSlice[string]{address + ":2", address + ":3"},
		Portfolio:             datatypes.JSONSlice[string]{address + ":2:fCash:1656000000"},
		Provenance:            buildTestProvenance(100),
	}
}

// =============================================================================
// Tests
// =============================================================================

func testEntityRoundTrip(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("load missing entity", func(t *testing.T) {
		var currency schema.Currency
		found, err := store.Load(ctx, "999", &currency)
		require.NoError(t, err)
		assert.False(t, found)

		got, err := Get[schema.Currency](ctx, store, "999")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save and load account", func(t *testing.T) {
		account := buildTestAccount("0x1111111111111111111111111111111111111111")
		require.NoError(t, store.Save(ctx, account))

		got, err := Get[schema.Account](ctx, store, account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, account.NextSettleTime, got.NextSettleTime)
		assert.True(t, got.HasPortfolioAssetDebt)
		assert.False(t, got.HasCashDebt)
		require.NotNil(t, got.AssetBitmapCurrency)
		assert.Equal(t, "2", *got.AssetBitmapCurrency)
		assert.Equal(t, []string(account.Balances), []string(got.Balances))
		assert.Equal(t, []string(account.Portfolio), []string(got.Portfolio))
		assert.Nil(t, got.NToken)
		assert.Equal(t, uint64(100), got.LastUpdateBlockNumber)
	})

	t.Run("large numeric values", func(t *testing.T) {
		balance := &schema.Balance{
			ID:                      "0x2222222222222222222222222222222222222222:1",
			Account:                 "0x2222222222222222222222222222222222222222",
			Currency:                "1",
			AssetCashBalance:        "-115792089237316195423570985008687907853269984665640564039457584007913129639935",
			NTokenBalance:           "0",
			LastClaimIntegralSupply: "340282366920938463463374607431768211455",
			Provenance:              buildTestProvenance(1),
		}
		require.NoError(t, store.Save(ctx, balance))

		got, err := Get[schema.Balance](ctx, store, balance.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, balance.AssetCashBalance, got.AssetCashBalance)
		assert.Equal(t, balance.LastClaimIntegralSupply, got.LastClaimIntegralSupply)
	})
}

func testSaveOverwrites(t *testing.T, store Store) {
	ctx := context.Background()

	cashGroup := &schema.CashGroup{
		ID:                            "1",
		Currency:                      "1",
		MaxMarketIndex:                2,
		LiquidityTokenHaircutsPercent: datatypes.JSONSlice[int32]{99, 98},
		RateScalars:                   datatypes.JSONSlice[int32]{21, 21},
		ReserveBalance:                "0",
		Provenance:                    buildTestProvenance(10),
	}
	require.NoError(t, store.Save(ctx, cashGroup))

	cashGroup.MaxMarketIndex = 3
	cashGroup.LiquidityTokenHaircutsPercent = datatypes.JSONSlice[int32]{99, 98, 97}
	cashGroup.Provenance = buildTestProvenance(11)
	require.NoError(t, store.Save(ctx, cashGroup))

	got, err := Get[schema.CashGroup](ctx, store, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int32(3), got.MaxMarketIndex)
	assert.Equal(t, []int32{99, 98, 97}, []int32(got.LiquidityTokenHaircutsPercent))
	assert.Equal(t, uint64(11), got.LastUpdateBlockNumber)
}

func testDelete(t *testing.T, store Store) {
	ctx := context.Background()

	operator := &schema.GlobalTransferOperator{ID: "0x3333333333333333333333333333333333333333", Provenance: buildTestProvenance(5)}
	require.NoError(t, store.Save(ctx, operator))
	require.NoError(t, store.Delete(ctx, operator))

	got, err := Get[schema.GlobalTransferOperator](ctx, store, operator.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// deleting an absent entity is not an error
	require.NoError(t, store.Delete(ctx, operator))
}

func testTransaction(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := store.WithTransaction(ctx, func(tx Store) error {
			if err := tx.Save(ctx, &schema.SettlementRate{ID: "1:1656000000", Currency: "1", AssetExchangeRate: "1", Maturity: 1656000000, Rate: "200000000000000000000000000"}); err != nil {
				return err
			}
			return tx.Save(ctx, &schema.SettlementRate{ID: "2:1656000000", Currency: "2", AssetExchangeRate: "2", Maturity: 1656000000, Rate: "1"})
		})
		require.NoError(t, err)

		got, err := Get[schema.SettlementRate](ctx, store, "2:1656000000")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTransaction(ctx, func(tx Store) error {
			if err := tx.Save(ctx, &schema.SettlementRate{ID: "3:1656000000", Currency: "3", AssetExchangeRate: "3", Maturity: 1656000000, Rate: "1"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := Get[schema.SettlementRate](ctx, store, "3:1656000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func testBatchCommit(t *testing.T, store Store) {
	ctx := context.Background()
	address := "0x4444444444444444444444444444444444444444"

	require.NoError(t, store.Save(ctx, &schema.Asset{ID: address + ":1:fCash:100", Account: address, Currency: "1", AssetType: "fCash", Maturity: 100, Notional: "5"}))

	batch := NewBatch(store)
	require.NoError(t, batch.Save(ctx, buildTestAccount(address)))
	require.NoError(t, batch.Delete(ctx, &schema.Asset{ID: address + ":1:fCash:100"}))
	require.NoError(t, batch.Commit(ctx, store))

	account, err := Get[schema.Account](ctx, store, address)
	require.NoError(t, err)
	assert.NotNil(t, account)

	asset, err := Get[schema.Asset](ctx, store, address+":1:fCash:100")
	require.NoError(t, err)
	assert.Nil(t, asset)
}

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("get non-existent cursor returns 0", func(t *testing.T) {
		cursor, err := store.GetBlockCursor(ctx, "test_chain_nonexistent")
		require.NoError(t, err)
		assert.Equal(t, uint64(0), cursor)
	})

	t.Run("set and get cursor", func(t *testing.T) {
		chain := "test_chain_cursor"
		blockNum := uint64(12345)

		err := store.SetBlockCursor(ctx, chain, blockNum)
		require.NoError(t, err)

		cursor, err := store.GetBlockCursor(ctx, chain)
		require.NoError(t, err)
		assert.Equal(t, blockNum, cursor)
	})

	t.Run("update existing cursor", func(t *testing.T) {
		chain := "test_chain_update"

		err := store.SetBlockCursor(ctx, chain, 100)
		require.NoError(t, err)

		err = store.SetBlockCursor(ctx, chain, 200)
		require.NoError(t, err)

		cursor, err := store.GetBlockCursor(ctx, chain)
		require.NoError(t, err)
		assert.Equal(t, uint64(200), cursor)
	})
}

// RunStoreTests runs every store test against an implementation
func RunStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"EntityRoundTrip", testEntityRoundTrip},
		{"SaveOverwrites", testSaveOverwrites},
		{"Delete", testDelete},
		{"Transaction", testTransaction},
		{"BatchCommit", testBatchCommit},
		{"BlockCursor", testBlockCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	open, idle, lifetime, idleTime := NormalizeConnectionPoolSettings(0, 0, 0, 0)
	assert.Equal(t, 10, open)
	assert.Equal(t, 2, idle)
	assert.NotZero(t, lifetime)
	assert.NotZero(t, idleTime)

	open, idle, _, _ = NormalizeConnectionPoolSettings(3, 8, 0, 0)
	assert.Equal(t, 3, open)
	assert.Equal(t, 3, idle)
}
