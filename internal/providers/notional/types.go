package notional

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// The structs below mirror the router's return tuples field for field.
// Field names, order and types must match the ABI components exactly,
// since decoded tuples are converted into them by struct conversion.

// Token is a token entry of a listed currency
type Token struct {
	TokenAddress         common.Address
	HasTransferFee       bool
	Decimals             *big.Int
	TokenType            uint8
	MaxCollateralBalance *big.Int
}

// ETHRateStorage is the stored ETH exchange rate configuration of a currency
type ETHRateStorage struct {
	RateOracle          common.Address
	RateDecimalPlaces   uint8
	MustInvert          bool
	Buffer              uint8
	Haircut             uint8
	LiquidationDiscount uint8
}

// AssetRateStorage is the stored asset rate adapter configuration of a currency
type AssetRateStorage struct {
	RateOracle              common.Address
	UnderlyingDecimalPlaces uint8
}

// CashGroupSettings is the packed cash group configuration, in on-chain units
type CashGroupSettings struct {
	MaxMarketIndex              uint8
	RateOracleTimeWindow5Min    uint8
	TotalFeeBPS                 uint8
	ReserveFeeShare             uint8
	DebtBuffer5BPS              uint8
	FCashHaircut5BPS            uint8
	SettlementPenaltyRate5BPS   uint8
	LiquidationfCashHaircut5BPS uint8
	LiquidationDebtBuffer5BPS   uint8
	LiquidityTokenHaircuts      []uint8
	RateScalars                 []uint8
}

// NTokenAccount is the on-chain state of an nToken
type NTokenAccount struct {
	CurrencyId                  uint16
	TotalSupply                 *big.Int
	IncentiveAnnualEmissionRate *big.Int
	LastInitializedTime         *big.Int
	NTokenParameters            [5]byte
	CashBalance                 *big.Int
	IntegralTotalSupply         *big.Int
	LastSupplyChangeTime        *big.Int
}

// MarketParameters is the state of one active market
type MarketParameters struct {
	StorageSlot       [32]byte
	Maturity          *big.Int
	TotalfCash        *big.Int
	TotalAssetCash    *big.Int
	TotalLiquidity    *big.Int
	LastImpliedRate   *big.Int
	OracleRate        *big.Int
	PreviousTradeTime *big.Int
}

// AccountContext is the settlement and debt state of an account
type AccountContext struct {
	NextSettleTime   *big.Int
	HasDebt          [1]byte
	AssetArrayLength uint8
	BitmapCurrencyId uint16
	ActiveCurrencies [18]byte
}

// AccountBalance is the holding of an account in one currency
type AccountBalance struct {
	CurrencyId              uint16
	CashBalance             *big.Int
	NTokenBalance           *big.Int
	LastClaimTime           *big.Int
	LastClaimIntegralSupply *big.Int
}

// PortfolioAsset is one position of an account portfolio
type PortfolioAsset struct {
	CurrencyId   *big.Int
	Maturity     *big.Int
	AssetType    *big.Int
	Notional     *big.Int
	StorageSlot  *big.Int
	StorageState uint8
}

// ETHRate is the ETH exchange rate of a currency at a block
type ETHRate struct {
	RateDecimals        *big.Int
	Rate                *big.Int
	Buffer              *big.Int
	Haircut             *big.Int
	LiquidationDiscount *big.Int
}

// AssetRateParameters is the asset rate of a currency at a block
type AssetRateParameters struct {
	RateOracle         common.Address
	Rate               *big.Int
	UnderlyingDecimals *big.Int
}

// Account is the full on-chain state of an account
type Account struct {
	Context   AccountContext
	Balances  []AccountBalance
	Portfolio []PortfolioAsset
}

// CurrencyAndRates is a currency together with its rates at a block
type CurrencyAndRates struct {
	AssetToken      Token
	UnderlyingToken Token
	ETHRate         ETHRate
	AssetRate       AssetRateParameters
}

// DepositParameters are the nToken deposit shares and leverage thresholds
type DepositParameters struct {
	DepositShares      []*big.Int
	LeverageThresholds []*big.Int
}

// InitializationParameters are the nToken market initialization parameters
type InitializationParameters struct {
	AnnualizedAnchorRates []*big.Int
	Proportions           []*big.Int
}
