package notional

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// routerABI holds the view functions and events of the Notional V2 router that the indexer uses
const routerABI = `[
{"type":"function","name":"getCurrency","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"assetToken","type":"tuple","components":[{"name":"tokenAddress","type":"address"},{"name":"hasTransferFee","type":"bool"},{"name":"decimals","type":"int256"},{"name":"tokenType","type":"uint8"},{"name":"maxCollateralBalance","type":"uint256"}]},
	{"name":"underlyingToken","type":"tuple","components":[{"name":"tokenAddress","type":"address"},{"name":"hasTransferFee","type":"bool"},{"name":"decimals","type":"int256"},{"name":"tokenType","type":"uint8"},{"name":"maxCollateralBalance","type":"uint256"}]}]},
{"type":"function","name":"getRateStorage","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"ethRate","type":"tuple","components":[{"name":"rateOracle","type":"address"},{"name":"rateDecimalPlaces","type":"uint8"},{"name":"mustInvert","type":"bool"},{"name":"buffer","type":"uint8"},{"name":"haircut","type":"uint8"},{"name":"liquidationDiscount","type":"uint8"}]},
	{"name":"assetRate","type":"tuple","components":[{"name":"rateOracle","type":"address"},{"name":"underlyingDecimalPlaces","type":"uint8"}]}]},
{"type":"function","name":"getCashGroup","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"","type":"tuple","components":[{"name":"maxMarketIndex","type":"uint8"},{"name":"rateOracleTimeWindow5Min","type":"uint8"},{"name":"totalFeeBPS","type":"uint8"},{"name":"reserveFeeShare","type":"uint8"},{"name":"debtBuffer5BPS","type":"uint8"},{"name":"fCashHaircut5BPS","type":"uint8"},{"name":"settlementPenaltyRate5BPS","type":"uint8"},{"name":"liquidationfCashHaircut5BPS","type":"uint8"},{"name":"liquidationDebtBuffer5BPS","type":"uint8"},{"name":"liquidityTokenHaircuts","type":"uint8[]"},{"name":"rateScalars","type":"uint8[]"}]}]},
{"type":"function","name":"getDepositParameters","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"depositShares","type":"int256[]"},{"name":"leverageThresholds","type":"int256[]"}]},
{"type":"function","name":"getInitializationParameters","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"annualizedAnchorRates","type":"int256[]"},{"name":"proportions","type":"int256[]"}]},
{"type":"function","name":"getNTokenAccount","stateMutability":"view","inputs":[{"name":"tokenAddress","type":"address"}],"outputs":[
	{"name":"currencyId","type":"uint16"},{"name":"totalSupply","type":"uint256"},{"name":"incentiveAnnualEmissionRate","type":"uint256"},{"name":"lastInitializedTime","type":"uint256"},{"name":"nTokenParameters","type":"bytes5"},{"name":"cashBalance","type":"int256"},{"name":"integralTotalSupply","type":"uint256"},{"name":"lastSupplyChangeTime","type":"uint256"}]},
{"type":"function","name":"nTokenAddress","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"getActiveMarketsAtBlockTime","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"},{"name":"blockTime","type":"uint32"}],"outputs":[
	{"name":"","type":"tuple[]","components":[{"name":"storageSlot","type":"bytes32"},{"name":"maturity","type":"uint256"},{"name":"totalfCash","type":"int256"},{"name":"totalAssetCash","type":"int256"},{"name":"totalLiquidity","type":"int256"},{"name":"lastImpliedRate","type":"uint256"},{"name":"oracleRate","type":"uint256"},{"name":"previousTradeTime","type":"uint256"}]}]},
{"type":"function","name":"getAccount","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[
	{"name":"accountContext","type":"tuple","components":[{"name":"nextSettleTime","type":"uint40"},{"name":"hasDebt","type":"bytes1"},{"name":"assetArrayLength","type":"uint8"},{"name":"bitmapCurrencyId","type":"uint16"},{"name":"activeCurrencies","type":"bytes18"}]},
	{"name":"accountBalances","type":"tuple[]","components":[{"name":"currencyId","type":"uint16"},{"name":"cashBalance","type":"int256"},{"name":"nTokenBalance","type":"int256"},{"name":"lastClaimTime","type":"uint256"},{"name":"lastClaimIntegralSupply","type":"uint256"}]},
	{"name":"portfolio","type":"tuple[]","components":[{"name":"currencyId","type":"uint256"},{"name":"maturity","type":"uint256"},{"name":"assetType","type":"uint256"},{"name":"notional","type":"int256"},{"name":"storageSlot","type":"uint256"},{"name":"storageState","type":"uint8"}]}]},
{"type":"function","name":"getCurrencyAndRates","stateMutability":"view","inputs":[{"name":"currencyId","type":"uint16"}],"outputs":[
	{"name":"assetToken","type":"tuple","components":[{"name":"tokenAddress","type":"address"},{"name":"hasTransferFee","type":"bool"},{"name":"decimals","type":"int256"},{"name":"tokenType","type":"uint8"},{"name":"maxCollateralBalance","type":"uint256"}]},
	{"name":"underlyingToken","type":"tuple","components":[{"name":"tokenAddress","type":"address"},{"name":"hasTransferFee","type":"bool"},{"name":"decimals","type":"int256"},{"name":"tokenType","type":"uint8"},{"name":"maxCollateralBalance","type":"uint256"}]},
	{"name":"ethRate","type":"tuple","components":[{"name":"rateDecimals","type":"int256"},{"name":"rate","type":"int256"},{"name":"buffer","type":"int256"},{"name":"haircut","type":"int256"},{"name":"liquidationDiscount","type":"int256"}]},
	{"name":"assetRate","type":"tuple","components":[{"name":"rateOracle","type":"address"},{"name":"rate","type":"int256"},{"name":"underlyingDecimals","type":"int256"}]}]},

{"type":"event","name":"ListCurrency","anonymous":false,"inputs":[{"name":"newCurrencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateMaxCollateralBalance","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false},{"name":"maxCollateralBalance","type":"uint72","indexed":false}]},
{"type":"event","name":"UpdateETHRate","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateAssetRate","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateCashGroup","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"DeployNToken","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false},{"name":"nTokenAddress","type":"address","indexed":false}]},
{"type":"event","name":"UpdateDepositParameters","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateInitializationParameters","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateIncentiveEmissionRate","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false},{"name":"newEmissionRate","type":"uint32","indexed":false}]},
{"type":"event","name":"UpdateTokenCollateralParameters","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"UpdateGlobalTransferOperator","anonymous":false,"inputs":[{"name":"operator","type":"address","indexed":false},{"name":"approved","type":"bool","indexed":false}]},
{"type":"event","name":"UpdateAuthorizedCallbackContract","anonymous":false,"inputs":[{"name":"operator","type":"address","indexed":false},{"name":"approved","type":"bool","indexed":false}]},
{"type":"event","name":"SetSettlementRate","anonymous":false,"inputs":[{"name":"currencyId","type":"uint256","indexed":true},{"name":"maturity","type":"uint256","indexed":true},{"name":"rate","type":"uint128","indexed":false}]},
{"type":"event","name":"MarketsInitialized","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false}]},
{"type":"event","name":"SweepCashIntoMarkets","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":false},{"name":"cashIntoMarkets","type":"int256","indexed":false}]},
{"type":"event","name":"AccountContextUpdate","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true}]},
{"type":"event","name":"AccountSettled","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true}]},
{"type":"event","name":"nTokenSupplyChange","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"currencyId","type":"uint16","indexed":true},{"name":"tokenSupplyChange","type":"int256","indexed":false}]},
{"type":"event","name":"AddRemoveLiquidity","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"currencyId","type":"uint16","indexed":true},{"name":"maturity","type":"uint40","indexed":false},{"name":"netAssetCash","type":"int256","indexed":false},{"name":"netfCash","type":"int256","indexed":false},{"name":"netLiquidityTokens","type":"int256","indexed":false}]},
{"type":"event","name":"SettledCashDebt","anonymous":false,"inputs":[{"name":"settledAccount","type":"address","indexed":true},{"name":"currencyId","type":"uint16","indexed":true},{"name":"settler","type":"address","indexed":true},{"name":"amountToSettleAsset","type":"int256","indexed":false},{"name":"fCashAmount","type":"int256","indexed":false}]},
{"type":"event","name":"nTokenResidualPurchase","anonymous":false,"inputs":[{"name":"currencyId","type":"uint16","indexed":true},{"name":"maturity","type":"uint40","indexed":true},{"name":"purchaser","type":"address","indexed":true},{"name":"fCashAmountToPurchase","type":"int256","indexed":false},{"name":"netAssetCashNToken","type":"int256","indexed":false}]},
{"type":"event","name":"LendBorrowTrade","anonymous":false,"inputs":[{"name":"account","type":"address","indexed":true},{"name":"currencyId","type":"uint16","indexed":true},{"name":"maturity","type":"uint40","indexed":false},{"name":"netAssetCash","type":"int256","indexed":false},{"name":"netfCash","type":"int256","indexed":false}]},
{"type":"event","name":"LiquidateLocalCurrency","anonymous":false,"inputs":[{"name":"liquidated","type":"address","indexed":true},{"name":"liquidator","type":"address","indexed":true},{"name":"localCurrencyId","type":"uint16","indexed":false},{"name":"netLocalFromLiquidator","type":"int256","indexed":false}]},
{"type":"event","name":"LiquidateCollateralCurrency","anonymous":false,"inputs":[{"name":"liquidated","type":"address","indexed":true},{"name":"liquidator","type":"address","indexed":true},{"name":"localCurrencyId","type":"uint16","indexed":false},{"name":"collateralCurrencyId","type":"uint16","indexed":false},{"name":"netLocalFromLiquidator","type":"int256","indexed":false},{"name":"netCollateralTransfer","type":"int256","indexed":false},{"name":"netNTokenTransfer","type":"int256","indexed":false}]},
{"type":"event","name":"LiquidatefCashEvent","anonymous":false,"inputs":[{"name":"liquidated","type":"address","indexed":true},{"name":"liquidator","type":"address","indexed":true},{"name":"localCurrencyId","type":"uint16","indexed":false},{"name":"fCashCurrency","type":"uint16","indexed":false},{"name":"netLocalFromLiquidator","type":"int256","indexed":false},{"name":"fCashMaturities","type":"uint256[]","indexed":false},{"name":"fCashNotionalTransfer","type":"int256[]","indexed":false}]}
]`

// erc20ABI holds the token metadata getters
const erc20ABI = `[
{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

var (
	// RouterABI is the parsed Notional router ABI
	RouterABI = mustParseABI(routerABI)
	// ERC20ABI is the parsed ERC20 metadata ABI
	ERC20ABI = mustParseABI(erc20ABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return parsed
}
