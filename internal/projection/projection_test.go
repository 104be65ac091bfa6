package projection_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/mocks"
	"github.com/notional-finance/notional-indexer/internal/projection"
	"github.com/notional-finance/notional-indexer/internal/providers/notional"
	"github.com/notional-finance/notional-indexer/internal/store"
	"github.com/notional-finance/notional-indexer/internal/store/schema"
	"github.com/notional-finance/notional-indexer/internal/store/storetest"
)

const (
	testBlockNumber = uint64(13_000_000)
	testTRef        = 20 * domain.Quarter
	testBlockTime   = testTRef + 1000
)

var (
	testAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testNToken  = common.HexToAddress("0x6ebce2453398af200c688c7c4ebd479171231818")
)

type testProjectorMocks struct {
	ctrl      *gomock.Controller
	accessor  *mocks.MockAccessor
	store     *storetest.MemoryStore
	projector *projection.Projector
}

func setupTestProjector(t *testing.T) *testProjectorMocks {
	ctrl := gomock.NewController(t)
	accessor := mocks.NewMockAccessor(ctrl)
	return &testProjectorMocks{
		ctrl:      ctrl,
		accessor:  accessor,
		store:     storetest.NewMemoryStore(),
		projector: projection.NewProjector(accessor),
	}
}

func buildTestMeta() *domain.EventMeta {
	return &domain.EventMeta{
		BlockNumber:    testBlockNumber,
		BlockTimestamp: uint64(testBlockTime),
		BlockHash:      common.HexToHash("0xb1"),
		TxHash:         common.HexToHash("0xa1"),
		LogIndex:       3,
		TxOrigin:       testAccount,
	}
}

func buildTestMarket(maturity int64, totalfCash int64) notional.MarketParameters {
	return notional.MarketParameters{
		Maturity:          big.NewInt(maturity),
		TotalfCash:        big.NewInt(totalfCash),
		TotalAssetCash:    big.NewInt(2 * totalfCash),
		TotalLiquidity:    big.NewInt(3 * totalfCash),
		LastImpliedRate:   big.NewInt(45_000_000),
		OracleRate:        big.NewInt(44_000_000),
		PreviousTradeTime: big.NewInt(testBlockTime - 10),
	}
}

func buildTestAccount(hasDebt byte, bitmapCurrency uint16, portfolio ...notional.PortfolioAsset) notional.Account {
	return notional.Account{
		Context: notional.AccountContext{
			NextSettleTime:   big.NewInt(testTRef + domain.Quarter),
			HasDebt:          [1]byte{hasDebt},
			BitmapCurrencyId: bitmapCurrency,
		},
		Balances: []notional.AccountBalance{
			{
				CurrencyId:              2,
				CashBalance:             big.NewInt(-500),
				NTokenBalance:           big.NewInt(10),
				LastClaimTime:           big.NewInt(1_600_000_000),
				LastClaimIntegralSupply: big.NewInt(99),
			},
			{CurrencyId: 0},
		},
		Portfolio: portfolio,
	}
}

func buildTestAsset(currencyID int64, assetType int64, maturity int64, notionalAmount int64) notional.PortfolioAsset {
	return notional.PortfolioAsset{
		CurrencyId: big.NewInt(currencyID),
		Maturity:   big.NewInt(maturity),
		AssetType:  big.NewInt(assetType),
		Notional:   big.NewInt(notionalAmount),
	}
}

func TestUpdateMarkets(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()
	meta := buildTestMeta()

	m.accessor.EXPECT().
		GetActiveMarketsAtBlockTime(gomock.Any(), testBlockNumber, uint16(2), uint32(testBlockTime)).
		Return([]notional.MarketParameters{
			buildTestMarket(testTRef+domain.Quarter, 1000),
			buildTestMarket(testTRef+2*domain.Quarter, -5),
		}, nil)

	keys, err := m.projector.UpdateMarkets(ctx, m.store, 2, testBlockTime, meta)
	require.NoError(t, err)

	settlementDate := testTRef + domain.Quarter
	require.Equal(t, []string{
		domain.MarketKey(2, settlementDate, testTRef+domain.Quarter),
		domain.MarketKey(2, settlementDate, testTRef+2*domain.Quarter),
	}, keys)

	market, err := store.Get[schema.Market](ctx, m.store, keys[1])
	require.NoError(t, err)
	require.NotNil(t, market)
	assert.Equal(t, int32(2), market.MarketIndex)
	assert.Equal(t, 2*domain.Quarter, market.MarketMaturityLengthSeconds)
	assert.Equal(t, settlementDate, market.SettlementDate)
	assert.Equal(t, "-5", market.TotalfCash)
	assert.Equal(t, "-10", market.TotalAssetCash)
	assert.Equal(t, int64(45_000_000), market.LastImpliedRate)
	assert.Equal(t, testBlockNumber, market.LastUpdateBlockNumber)
	assert.Equal(t, domain.HashKey(meta.TxHash), market.LastUpdateTransactionHash)
}

func TestUpdateMarkets_TimeReferenceGivesSameKeys(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()

	markets := []notional.MarketParameters{buildTestMarket(testTRef+domain.Quarter, 1)}
	m.accessor.EXPECT().
		GetActiveMarketsAtBlockTime(gomock.Any(), gomock.Any(), uint16(2), gomock.Any()).
		Return(markets, nil).
		Times(2)

	fromBlockTime, err := m.projector.UpdateMarkets(ctx, m.store, 2, testBlockTime, buildTestMeta())
	require.NoError(t, err)
	fromTRef, err := m.projector.UpdateMarkets(ctx, m.store, 2, testTRef, buildTestMeta())
	require.NoError(t, err)
	assert.Equal(t, fromBlockTime, fromTRef)
	assert.Equal(t, 1, m.store.Count(schema.Market{}.TableName()))
}

func TestUpdateMarkets_AccessorError(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()

	m.accessor.EXPECT().
		GetActiveMarketsAtBlockTime(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrReverted)

	_, err := m.projector.UpdateMarkets(context.Background(), m.store, 2, testBlockTime, buildTestMeta())
	assert.ErrorIs(t, err, domain.ErrReverted)
	assert.Equal(t, 0, m.store.Total())
}

func TestMarketKeyFor(t *testing.T) {
	key := projection.MarketKeyFor(2, testTRef+domain.Year, testBlockTime)
	require.NotNil(t, key)
	assert.Equal(t, domain.MarketKey(2, testTRef+domain.Quarter, testTRef+domain.Year), *key)

	assert.Nil(t, projection.MarketKeyFor(2, testTRef+domain.Year+1, testBlockTime))
}

func TestUpdateAccount(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()
	meta := buildTestMeta()

	maturity := testTRef + domain.Quarter
	m.accessor.EXPECT().
		GetAccount(gomock.Any(), testBlockNumber, testAccount).
		Return(buildTestAccount(domain.HasAssetDebt|domain.HasCashDebt, 0,
			buildTestAsset(2, 1, maturity, -1000),
			buildTestAsset(2, 3, testTRef+2*domain.Quarter, 50),
		), nil)

	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, meta))

	id := domain.AddressKey(testAccount)
	account, err := store.Get[schema.Account](ctx, m.store, id)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.HasCashDebt)
	assert.True(t, account.HasPortfolioAssetDebt)
	assert.Nil(t, account.AssetBitmapCurrency)
	assert.Equal(t, testTRef+domain.Quarter, account.NextSettleTime)
	assert.Equal(t, []string{domain.BalanceKey(id, 2)}, []string(account.Balances))
	require.Len(t, account.Portfolio, 2)

	balance, err := store.Get[schema.Balance](ctx, m.store, domain.BalanceKey(id, 2))
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.Equal(t, "-500", balance.AssetCashBalance)
	assert.Equal(t, "10", balance.NTokenBalance)
	assert.Equal(t, "99", balance.LastClaimIntegralSupply)
	assert.Equal(t, 1, m.store.Count(schema.Balance{}.TableName()))

	fCash, err := store.Get[schema.Asset](ctx, m.store, domain.AssetKey(id, 2, "fCash", maturity))
	require.NoError(t, err)
	require.NotNil(t, fCash)
	assert.Equal(t, "-1000", fCash.Notional)
	assert.Equal(t, maturity, fCash.SettlementDate)

	liquidityToken, err := store.Get[schema.Asset](ctx, m.store, domain.AssetKey(id, 2, "LiquidityToken_6Month", testTRef+2*domain.Quarter))
	require.NoError(t, err)
	require.NotNil(t, liquidityToken)
	assert.Equal(t, testTRef+domain.Quarter, liquidityToken.SettlementDate)
}

func TestUpdateAccount_DebtFlags(t *testing.T) {
	tests := []struct {
		name          string
		hasDebt       byte
		portfolioDebt bool
		cashDebt      bool
	}{
		{name: "no debt", hasDebt: 0x00},
		{name: "portfolio debt", hasDebt: 0x01, portfolioDebt: true},
		{name: "cash debt", hasDebt: 0x02, cashDebt: true},
		{name: "both", hasDebt: 0x03, portfolioDebt: true, cashDebt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestProjector(t)
			defer m.ctrl.Finish()
			ctx := context.Background()

			m.accessor.EXPECT().
				GetAccount(gomock.Any(), gomock.Any(), testAccount).
				Return(buildTestAccount(tt.hasDebt, 3), nil)

			require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, buildTestMeta()))

			account, err := store.Get[schema.Account](ctx, m.store, domain.AddressKey(testAccount))
			require.NoError(t, err)
			require.NotNil(t, account)
			assert.Equal(t, tt.portfolioDebt, account.HasPortfolioAssetDebt)
			assert.Equal(t, tt.cashDebt, account.HasCashDebt)
			require.NotNil(t, account.AssetBitmapCurrency)
			assert.Equal(t, "3", *account.AssetBitmapCurrency)
		})
	}
}

func TestUpdateAccount_RemovesClosedPositions(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()

	kept := buildTestAsset(2, 1, testTRef+domain.Quarter, -1000)
	closed := buildTestAsset(2, 1, testTRef+2*domain.Quarter, 300)

	gomock.InOrder(
		m.accessor.EXPECT().
			GetAccount(gomock.Any(), gomock.Any(), testAccount).
			Return(buildTestAccount(0, 0, kept, closed), nil),
		m.accessor.EXPECT().
			GetAccount(gomock.Any(), gomock.Any(), testAccount).
			Return(buildTestAccount(0, 0, kept), nil),
	)

	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, buildTestMeta()))
	assert.Equal(t, 2, m.store.Count(schema.Asset{}.TableName()))

	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, buildTestMeta()))
	id := domain.AddressKey(testAccount)
	assert.Equal(t, []string{domain.AssetKey(id, 2, "fCash", testTRef+domain.Quarter)}, m.store.IDs(schema.Asset{}.TableName()))

	account, err := store.Get[schema.Account](ctx, m.store, id)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Len(t, account.Portfolio, 1)
}

func TestUpdateAccount_Idempotent(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()

	m.accessor.EXPECT().
		GetAccount(gomock.Any(), gomock.Any(), testAccount).
		Return(buildTestAccount(domain.HasCashDebt, 0, buildTestAsset(2, 1, testTRef+domain.Quarter, -1)), nil).
		Times(2)

	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, buildTestMeta()))
	first := m.store.Snapshot()
	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testAccount, buildTestMeta()))
	assert.Equal(t, first, m.store.Snapshot())
}

func TestUpdateAccount_KeepsNTokenMarker(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()

	id := domain.AddressKey(testNToken)
	nTokenMarker := "2"
	require.NoError(t, m.store.Save(ctx, &schema.Account{ID: id, NToken: &nTokenMarker}))

	m.accessor.EXPECT().
		GetAccount(gomock.Any(), gomock.Any(), testNToken).
		Return(buildTestAccount(0, 2), nil)

	require.NoError(t, m.projector.UpdateAccount(ctx, m.store, testNToken, buildTestMeta()))

	account, err := store.Get[schema.Account](ctx, m.store, id)
	require.NoError(t, err)
	require.NotNil(t, account.NToken)
	assert.Equal(t, "2", *account.NToken)
}

func TestUpdateNTokenPortfolio(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()
	meta := buildTestMeta()

	nToken, err := projection.GetNToken(ctx, m.store, 2)
	require.NoError(t, err)
	nToken.TokenAddress = domain.AddressKey(testNToken)

	m.accessor.EXPECT().
		GetNTokenAccount(gomock.Any(), testBlockNumber, testNToken).
		Return(notional.NTokenAccount{
			CurrencyId:           2,
			TotalSupply:          big.NewInt(5_000_000_000),
			IntegralTotalSupply:  big.NewInt(123),
			LastSupplyChangeTime: big.NewInt(testBlockTime),
		}, nil)
	m.accessor.EXPECT().
		GetAccount(gomock.Any(), testBlockNumber, testNToken).
		Return(buildTestAccount(0, 2), nil)
	m.accessor.EXPECT().
		GetAccount(gomock.Any(), testBlockNumber, testAccount).
		Return(buildTestAccount(0, 0), nil)

	counterparty := testAccount
	require.NoError(t, m.projector.UpdateNTokenPortfolio(ctx, m.store, nToken, meta, &counterparty))

	saved, err := store.Get[schema.NToken](ctx, m.store, "2")
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.NotNil(t, saved.TotalSupply)
	assert.Equal(t, "5000000000", *saved.TotalSupply)
	assert.Equal(t, "123", *saved.IntegralTotalSupply)
	assert.Equal(t, 2, m.store.Count(schema.Account{}.TableName()))
}

func TestUpdateNTokenPortfolio_WithoutCounterparty(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()
	ctx := context.Background()

	nToken := &schema.NToken{ID: "2", TokenAddress: domain.AddressKey(testNToken)}
	m.accessor.EXPECT().
		GetNTokenAccount(gomock.Any(), gomock.Any(), testNToken).
		Return(notional.NTokenAccount{TotalSupply: big.NewInt(1)}, nil)
	m.accessor.EXPECT().
		GetAccount(gomock.Any(), gomock.Any(), testNToken).
		Return(buildTestAccount(0, 2), nil)

	require.NoError(t, m.projector.UpdateNTokenPortfolio(ctx, m.store, nToken, buildTestMeta(), nil))
	assert.Equal(t, []string{domain.AddressKey(testNToken)}, m.store.IDs(schema.Account{}.TableName()))
}

func TestUpdateNTokenPortfolio_NotDeployed(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()

	err := m.projector.UpdateNTokenPortfolio(context.Background(), m.store, &schema.NToken{ID: "2"}, buildTestMeta(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, m.store.Total())
}

func TestGetHelpers_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewMemoryStore()

	cashGroup, err := projection.GetCashGroup(ctx, s, 4)
	require.NoError(t, err)
	assert.Equal(t, "4", cashGroup.ID)
	assert.Equal(t, "0", cashGroup.ReserveBalance)

	nToken, err := projection.GetNToken(ctx, s, 4)
	require.NoError(t, err)
	assert.Equal(t, "4", nToken.Currency)
	assert.Equal(t, "4", nToken.CashGroup)

	balance, err := projection.GetBalance(ctx, s, "0xabc", 4)
	require.NoError(t, err)
	assert.Equal(t, "0xabc:4", balance.ID)
	assert.Equal(t, "0", balance.AssetCashBalance)

	// nothing is written by a lookup
	assert.Equal(t, 0, s.Total())

	cashGroup.ReserveBalance = "77"
	require.NoError(t, s.Save(ctx, cashGroup))
	cashGroup, err = projection.GetCashGroup(ctx, s, 4)
	require.NoError(t, err)
	assert.Equal(t, "77", cashGroup.ReserveBalance)
}

func TestNewTrade(t *testing.T) {
	meta := buildTestMeta()
	trade := projection.NewTrade(2, testAccount, meta)

	assert.Equal(t, domain.TradeKey(2, testAccount, meta.TxHash, meta.LogIndex), trade.ID)
	assert.Equal(t, "2", trade.Currency)
	assert.Equal(t, domain.AddressKey(testAccount), trade.Account)
	assert.Equal(t, testBlockNumber, trade.BlockNumber)
	assert.Equal(t, domain.AddressKey(testAccount), trade.TransactionOrigin)
}

func TestConvertAssetToUnderlying(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()

	rate, _ := new(big.Int).SetString("200000000000000000000000000", 10)
	decimals, _ := new(big.Int).SetString("1000000000000000000", 10)
	m.accessor.EXPECT().
		GetCurrencyAndRates(gomock.Any(), testBlockNumber, uint16(2)).
		Return(notional.CurrencyAndRates{
			AssetRate: notional.AssetRateParameters{Rate: rate, UnderlyingDecimals: decimals},
		}, nil)

	underlying, err := m.projector.ConvertAssetToUnderlying(context.Background(), 2, big.NewInt(-5_000_000_000), buildTestMeta())
	require.NoError(t, err)
	assert.Equal(t, "-100000000", underlying.String())
}

func TestConvertAssetToUnderlying_Error(t *testing.T) {
	m := setupTestProjector(t)
	defer m.ctrl.Finish()

	m.accessor.EXPECT().
		GetCurrencyAndRates(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(notional.CurrencyAndRates{}, errors.New("connection refused"))

	_, err := m.projector.ConvertAssetToUnderlying(context.Background(), 2, big.NewInt(1), buildTestMeta())
	assert.Error(t, err)
}

func TestUpdateDailyLendBorrowVolume(t *testing.T) {
	ctx := context.Background()
	s := storetest.NewMemoryStore()
	meta := buildTestMeta()

	lend := projection.NewTrade(2, testAccount, meta)
	lend.TradeType = schema.TradeTypeLend
	lend.NetAssetCash = "-500"
	underlying := "-10"
	lend.NetUnderlyingCash = &underlying
	lend.NetfCash = "520"

	require.NoError(t, projection.UpdateDailyLendBorrowVolume(ctx, s, 2, lend, meta))
	require.NoError(t, projection.UpdateDailyLendBorrowVolume(ctx, s, 2, lend, meta))

	dayID := int64(meta.BlockTimestamp) / domain.DaySeconds
	volume, err := store.Get[schema.DailyLendBorrowVolume](ctx, s, domain.DailyVolumeKey(dayID, 2, schema.TradeTypeLend))
	require.NoError(t, err)
	require.NotNil(t, volume)
	assert.Equal(t, "1000", volume.TotalVolumeNetAssetCash)
	assert.Equal(t, "20", volume.TotalVolumeUnderlyingCash)
	assert.Equal(t, "1040", volume.TotalVolumeNetfCash)
	assert.Equal(t, int64(2), volume.TxCount)
	assert.Equal(t, dayID*domain.DaySeconds, volume.Date)

	// borrows aggregate separately
	borrow := projection.NewTrade(2, testAccount, meta)
	borrow.TradeType = schema.TradeTypeBorrow
	borrow.NetAssetCash = "5"
	require.NoError(t, projection.UpdateDailyLendBorrowVolume(ctx, s, 2, borrow, meta))
	assert.Equal(t, 2, s.Count(schema.DailyLendBorrowVolume{}.TableName()))
}
