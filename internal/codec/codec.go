package codec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/notional-finance/notional-indexer/internal/domain"
	"github.com/notional-finance/notional-indexer/internal/types"
)

// ScaleBasisPoints converts a value stored in coarse basis point steps into
// RatePrecision basis points
func ScaleBasisPoints(value int64, step int64) int64 {
	return value * step * domain.BasisPoints
}

// ScaleFiveMinutes converts a value stored in five minute units into seconds
func ScaleFiveMinutes(value int64) int64 {
	return value * domain.FiveMinuteSeconds
}

// HoursToSeconds converts a value stored in hours into seconds
func HoursToSeconds(hours int64) int64 {
	return hours * domain.HourSeconds
}

// Byte offsets inside the packed nToken collateral parameters
const (
	liquidationHaircutPercentage = 0
	cashWithholdingBuffer        = 1
	residualPurchaseTimeBuffer   = 2
	pvHaircutPercentage          = 3
	residualPurchaseIncentive    = 4

	tokenCollateralParametersLength = 5
)

// DecodeError describes a packed value that is too short to decode
type DecodeError struct {
	Field  string
	Offset int
	Length int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: offset %d out of range for %d byte parameters", e.Field, e.Offset, e.Length)
}

func (e *DecodeError) Unwrap() error {
	return domain.ErrDecode
}

// TokenCollateralParameters is the decoded form of the packed nToken parameters
type TokenCollateralParameters struct {
	LiquidationHaircutPercentage         int32
	CashWithholdingBufferBasisPoints     int64
	ResidualPurchaseTimeBufferSeconds    int64
	PVHaircutPercentage                  int32
	ResidualPurchaseIncentiveBasisPoints int64
}

// DecodeTokenCollateralParameters decodes the five single byte parameters
// packed into an nToken's parameter bytes
func DecodeTokenCollateralParameters(parameters []byte) (TokenCollateralParameters, error) {
	if len(parameters) < tokenCollateralParametersLength {
		return TokenCollateralParameters{}, &DecodeError{
			Field:  "nTokenParameters",
			Offset: tokenCollateralParametersLength - 1,
			Length: len(parameters),
		}
	}

	return TokenCollateralParameters{
		LiquidationHaircutPercentage:         int32(parameters[liquidationHaircutPercentage]),
		CashWithholdingBufferBasisPoints:     ScaleBasisPoints(int64(parameters[cashWithholdingBuffer]), domain.TenBasisPointStep),
		ResidualPurchaseTimeBufferSeconds:    HoursToSeconds(int64(parameters[residualPurchaseTimeBuffer])),
		PVHaircutPercentage:                  int32(parameters[pvHaircutPercentage]),
		ResidualPurchaseIncentiveBasisPoints: ScaleBasisPoints(int64(parameters[residualPurchaseIncentive]), domain.TenBasisPointStep),
	}, nil
}

// TimeRef returns the quarter boundary at or before t
func TimeRef(t int64) int64 {
	return t - t%domain.Quarter
}

// MarketMaturityLengthSeconds returns the tenor of a market slot, 0 for an invalid slot
func MarketMaturityLengthSeconds(marketIndex int) int64 {
	switch marketIndex {
	case 1:
		return domain.Quarter
	case 2:
		return 2 * domain.Quarter
	case 3:
		return domain.Year
	case 4:
		return 2 * domain.Year
	case 5:
		return 5 * domain.Year
	case 6:
		return 10 * domain.Year
	case 7:
		return 20 * domain.Year
	}
	return 0
}

// MarketIndex returns the slot a maturity trades in relative to blockTime
func MarketIndex(maturity int64, blockTime int64) (int, error) {
	tRef := TimeRef(blockTime)
	for i := 1; i <= domain.MaxMarketIndex; i++ {
		if maturity == tRef+MarketMaturityLengthSeconds(i) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: maturity %d at time %d", domain.ErrMarketNotFound, maturity, blockTime)
}

// SettlementDate returns the quarter on which the market that owns maturity
// was last initialized
func SettlementDate(maturity int64, marketIndex int) int64 {
	if marketIndex == 1 {
		return maturity
	}
	return maturity - MarketMaturityLengthSeconds(marketIndex) + domain.Quarter
}

// MarketFor resolves the market slot and settlement date of a maturity
func MarketFor(maturity int64, blockTime int64) (int, int64, error) {
	marketIndex, err := MarketIndex(maturity, blockTime)
	if err != nil {
		return 0, 0, err
	}
	return marketIndex, SettlementDate(maturity, marketIndex), nil
}

// AssetRate is the on-chain rate converting asset cash into underlying
type AssetRate struct {
	Rate               *big.Int
	UnderlyingDecimals *big.Int
}

var assetRateDecimalDifference = big.NewInt(domain.AssetRateDecimalDifference)

// AssetToUnderlying converts an asset denominated amount into underlying.
// Division truncates toward zero like int256 division on-chain.
func AssetToUnderlying(assetAmount *big.Int, rate AssetRate) *big.Int {
	if assetAmount == nil || assetAmount.Sign() == 0 || rate.UnderlyingDecimals == nil || rate.UnderlyingDecimals.Sign() == 0 {
		return new(big.Int)
	}
	x := new(big.Int).Mul(rate.Rate, assetAmount)
	x.Quo(x, assetRateDecimalDifference)
	return x.Quo(x, rate.UnderlyingDecimals)
}

// UnderlyingToAsset is the inverse of AssetToUnderlying
func UnderlyingToAsset(underlyingAmount *big.Int, rate AssetRate) *big.Int {
	if underlyingAmount == nil || underlyingAmount.Sign() == 0 || rate.Rate == nil || rate.Rate.Sign() == 0 {
		return new(big.Int)
	}
	x := new(big.Int).Mul(underlyingAmount, assetRateDecimalDifference)
	x.Mul(x, rate.UnderlyingDecimals)
	return x.Quo(x, rate.Rate)
}

// Token types as enumerated by the protocol
const (
	TokenTypeUnderlying  = "UnderlyingToken"
	TokenTypeCToken      = "cToken"
	TokenTypeCETH        = "cETH"
	TokenTypeEther       = "Ether"
	TokenTypeNonMintable = "NonMintable"
	Unknown              = "unknown"
)

// TokenTypeString maps the on-chain token type enum to its name
func TokenTypeString(tokenType uint8) string {
	switch tokenType {
	case 0:
		return TokenTypeUnderlying
	case 1:
		return TokenTypeCToken
	case 2:
		return TokenTypeCETH
	case 3:
		return TokenTypeEther
	case 4:
		return TokenTypeNonMintable
	}
	return Unknown
}

const AssetTypeFCash = "fCash"

// AssetTypeString maps the on-chain portfolio asset type to its name.
// Liquidity tokens are numbered by their market index plus one.
func AssetTypeString(assetType int64) string {
	switch assetType {
	case 1:
		return AssetTypeFCash
	case 2:
		return "LiquidityToken_3Month"
	case 3:
		return "LiquidityToken_6Month"
	case 4:
		return "LiquidityToken_1Year"
	case 5:
		return "LiquidityToken_2Year"
	case 6:
		return "LiquidityToken_5Year"
	case 7:
		return "LiquidityToken_10Year"
	case 8:
		return "LiquidityToken_20Year"
	}
	return Unknown
}

// CurrencyPatch overrides fields of a listed currency
type CurrencyPatch struct {
	TokenAddress     *common.Address
	UnderlyingSymbol *string
}

// currencyPatches are permanent fixes for historical listings that were
// corrected on-chain without an event. Keyed by asset token address.
var currencyPatches = map[common.Address]CurrencyPatch{
	// mainnet: cWBTC1 was listed instead of cWBTC2
	common.HexToAddress("0xc11b1268c1a384e55c48c2391d8d480264a3a7f4"): {
		TokenAddress: addressPtr(common.HexToAddress("0xccf4429db6322d5c611ee964527d42e5d685dd6a")),
	},
	// kovan: the AAVE test DAI shares its symbol with the compound test DAI
	common.HexToAddress("0xed36a75a9ca4f72ad0fd8f3fb56b2c9aa8cea28d"): {
		UnderlyingSymbol: types.StringPtr("aDAI"),
	},
}

// LookupCurrencyPatch returns the patch for an asset token address, exact match only
func LookupCurrencyPatch(tokenAddress string) (CurrencyPatch, bool) {
	if !common.IsHexAddress(tokenAddress) {
		return CurrencyPatch{}, false
	}
	patch, ok := currencyPatches[common.HexToAddress(strings.TrimSpace(tokenAddress))]
	return patch, ok
}

func addressPtr(a common.Address) *common.Address {
	return &a
}
