package codec

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notional-finance/notional-indexer/internal/domain"
)

func TestScaleBasisPoints(t *testing.T) {
	tests := []struct {
		name     string
		value    int64
		step     int64
		expected int64
	}{
		{name: "zero", value: 0, step: domain.FiveBasisPointStep, expected: 0},
		{name: "one step", value: 1, step: domain.OneBasisPointStep, expected: domain.BasisPoints},
		{name: "five bps steps", value: 30, step: domain.FiveBasisPointStep, expected: 150 * domain.BasisPoints},
		{name: "ten bps steps", value: 255, step: domain.TenBasisPointStep, expected: 2550 * domain.BasisPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScaleBasisPoints(tt.value, tt.step))
		})
	}
}

func TestScaleBasisPoints_Linear(t *testing.T) {
	for n := int64(0); n <= 255; n++ {
		assert.Equal(t, n*domain.FiveBasisPointStep*domain.BasisPoints, ScaleBasisPoints(n, domain.FiveBasisPointStep))
	}
}

func TestScaleTime(t *testing.T) {
	assert.Equal(t, int64(0), ScaleFiveMinutes(0))
	assert.Equal(t, int64(72*300), ScaleFiveMinutes(72))
	assert.Equal(t, int64(0), HoursToSeconds(0))
	assert.Equal(t, int64(24*3600), HoursToSeconds(24))
}

func TestDecodeTokenCollateralParameters(t *testing.T) {
	params, err := DecodeTokenCollateralParameters([]byte{90, 10, 72, 95, 30})
	require.NoError(t, err)

	assert.Equal(t, int32(90), params.LiquidationHaircutPercentage)
	assert.Equal(t, int64(100)*domain.BasisPoints, params.CashWithholdingBufferBasisPoints)
	assert.Equal(t, int64(72*3600), params.ResidualPurchaseTimeBufferSeconds)
	assert.Equal(t, int32(95), params.PVHaircutPercentage)
	assert.Equal(t, int64(300)*domain.BasisPoints, params.ResidualPurchaseIncentiveBasisPoints)
}

func TestDecodeTokenCollateralParameters_IgnoresTrailingBytes(t *testing.T) {
	params, err := DecodeTokenCollateralParameters([]byte{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	assert.Equal(t, int32(1), params.LiquidationHaircutPercentage)
	assert.Equal(t, int32(4), params.PVHaircutPercentage)
}

func TestDecodeTokenCollateralParameters_Short(t *testing.T) {
	for _, input := range [][]byte{nil, {}, {1}, {1, 2, 3, 4}} {
		_, err := DecodeTokenCollateralParameters(input)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrDecode))

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.Equal(t, len(input), decodeErr.Length)
	}
}

func TestTimeRef(t *testing.T) {
	q := domain.Quarter
	assert.Equal(t, int64(0), TimeRef(0))
	assert.Equal(t, int64(0), TimeRef(q-1))
	assert.Equal(t, q, TimeRef(q))
	assert.Equal(t, 10*q, TimeRef(10*q+12345))
}

func TestMarketIndexAndSettlementDate(t *testing.T) {
	q := domain.Quarter
	blockTime := 20*q + 1000
	tRef := 20 * q

	tests := []struct {
		name           string
		maturity       int64
		marketIndex    int
		settlementDate int64
	}{
		{name: "3 month", maturity: tRef + q, marketIndex: 1, settlementDate: tRef + q},
		{name: "6 month", maturity: tRef + 2*q, marketIndex: 2, settlementDate: tRef + q},
		{name: "1 year", maturity: tRef + domain.Year, marketIndex: 3, settlementDate: tRef + q},
		{name: "2 year", maturity: tRef + 2*domain.Year, marketIndex: 4, settlementDate: tRef + q},
		{name: "5 year", maturity: tRef + 5*domain.Year, marketIndex: 5, settlementDate: tRef + q},
		{name: "10 year", maturity: tRef + 10*domain.Year, marketIndex: 6, settlementDate: tRef + q},
		{name: "20 year", maturity: tRef + 20*domain.Year, marketIndex: 7, settlementDate: tRef + q},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marketIndex, settlementDate, err := MarketFor(tt.maturity, blockTime)
			require.NoError(t, err)
			assert.Equal(t, tt.marketIndex, marketIndex)
			assert.Equal(t, tt.settlementDate, settlementDate)

			// deterministic
			again, againDate, err := MarketFor(tt.maturity, blockTime)
			require.NoError(t, err)
			assert.Equal(t, marketIndex, again)
			assert.Equal(t, settlementDate, againDate)
		})
	}
}

func TestMarketIndex_NotFound(t *testing.T) {
	_, err := MarketIndex(domain.Quarter+1, 0)
	assert.ErrorIs(t, err, domain.ErrMarketNotFound)
}

func TestMarketMaturityLengthSeconds_InvalidIndex(t *testing.T) {
	assert.Equal(t, int64(0), MarketMaturityLengthSeconds(0))
	assert.Equal(t, int64(0), MarketMaturityLengthSeconds(8))
}

func TestAssetToUnderlying(t *testing.T) {
	// cDAI like rate: 0.02 underlying per asset, 18 decimal underlying
	rate := AssetRate{
		Rate:               mustBig("200000000000000000000000000"),
		UnderlyingDecimals: mustBig("1000000000000000000"),
	}

	assert.Equal(t, "0", AssetToUnderlying(big.NewInt(0), rate).String())
	assert.Equal(t, "100000000", AssetToUnderlying(big.NewInt(5_000_000_000), rate).String())
	assert.Equal(t, "-100000000", AssetToUnderlying(big.NewInt(-5_000_000_000), rate).String())
}

func TestAssetToUnderlying_TruncatesTowardZero(t *testing.T) {
	rate := AssetRate{Rate: big.NewInt(3 * domain.AssetRateDecimalDifference), UnderlyingDecimals: big.NewInt(2)}

	// 5 * 3 / 2 = 7.5
	assert.Equal(t, "7", AssetToUnderlying(big.NewInt(5), rate).String())
	assert.Equal(t, "-7", AssetToUnderlying(big.NewInt(-5), rate).String())
}

func TestConversionRoundTrip(t *testing.T) {
	rate := AssetRate{
		Rate:               mustBig("211234567891234567891234567"),
		UnderlyingDecimals: mustBig("1000000000000000000"),
	}
	for _, s := range []string{"0", "1", "-1", "100000000", "-123456789012", "9999999999999999"} {
		x := mustBig(s)
		roundTrip := AssetToUnderlying(UnderlyingToAsset(x, rate), rate)
		diff := new(big.Int).Sub(x, roundTrip)
		assert.True(t, diff.CmpAbs(big.NewInt(1)) <= 0, "round trip of %s gave %s", s, roundTrip)
	}
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, TokenTypeUnderlying, TokenTypeString(0))
	assert.Equal(t, TokenTypeCToken, TokenTypeString(1))
	assert.Equal(t, TokenTypeCETH, TokenTypeString(2))
	assert.Equal(t, TokenTypeEther, TokenTypeString(3))
	assert.Equal(t, TokenTypeNonMintable, TokenTypeString(4))
	assert.Equal(t, Unknown, TokenTypeString(5))
}

func TestAssetTypeString(t *testing.T) {
	assert.Equal(t, AssetTypeFCash, AssetTypeString(1))
	assert.Equal(t, "LiquidityToken_3Month", AssetTypeString(2))
	assert.Equal(t, "LiquidityToken_20Year", AssetTypeString(8))
	assert.Equal(t, Unknown, AssetTypeString(0))
	assert.Equal(t, Unknown, AssetTypeString(9))
}

func TestLookupCurrencyPatch(t *testing.T) {
	patch, ok := LookupCurrencyPatch("0xC11b1268C1A384e55C48c2391d8d480264A3A7F4")
	require.True(t, ok)
	require.NotNil(t, patch.TokenAddress)
	assert.Equal(t, common.HexToAddress("0xccf4429db6322d5c611ee964527d42e5d685dd6a"), *patch.TokenAddress)
	assert.Nil(t, patch.UnderlyingSymbol)

	patch, ok = LookupCurrencyPatch("0xed36a75a9ca4f72ad0fd8f3fb56b2c9aa8cea28d")
	require.True(t, ok)
	require.NotNil(t, patch.UnderlyingSymbol)
	assert.Equal(t, "aDAI", *patch.UnderlyingSymbol)

	_, ok = LookupCurrencyPatch("0x0000000000000000000000000000000000000001")
	assert.False(t, ok)
	_, ok = LookupCurrencyPatch("not-an-address")
	assert.False(t, ok)
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}
