package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)

// Protocol constants shared by the codec and the projections
const (
	// RatePrecision is the fixed point precision of on-chain interest rates
	RatePrecision int64 = 1_000_000_000
	// BasisPoints is one basis point expressed in RatePrecision units
	BasisPoints int64 = RatePrecision / 10_000

	// OneBasisPointStep, FiveBasisPointStep and TenBasisPointStep are the coarse
	// units packed storage values are kept in
	OneBasisPointStep  int64 = 1
	FiveBasisPointStep int64 = 5
	TenBasisPointStep  int64 = 10

	// FiveMinuteSeconds is the unit of the rate oracle time window
	FiveMinuteSeconds int64 = 300
	// HourSeconds is the unit of the residual purchase time buffer
	HourSeconds int64 = 3600
	// DaySeconds is the length of a day bucket for volume aggregation
	DaySeconds int64 = 86400

	// Quarter is the length of the shortest tenor, maturities settle on quarter boundaries
	Quarter int64 = 90 * DaySeconds
	// Year is four quarters (360 days)
	Year int64 = 4 * Quarter

	// MaxMarketIndex is the highest tenor slot a cash group can enable
	MaxMarketIndex = 7

	// AssetRateDecimalDifference scales asset rates down to underlying precision
	AssetRateDecimalDifference int64 = 10_000_000_000
	// InternalTokenPrecision is the precision of nTokens and emission rates
	InternalTokenPrecision int64 = 100_000_000
)

// Account context flags
const (
	HasAssetDebt byte = 0x01
	HasCashDebt  byte = 0x02
)
