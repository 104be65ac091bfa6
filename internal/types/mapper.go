package types

import (
	"math/big"

	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// LendBorrowTradeType classifies a lend/borrow trade by the sign of its asset
// cash: receiving cash is a borrow, anything else (including zero) is a lend
func LendBorrowTradeType(netAssetCash *big.Int) string {
	if netAssetCash != nil && netAssetCash.Sign() > 0 {
		return schema.TradeTypeBorrow
	}
	return schema.TradeTypeLend
}

// LiquidityTradeType classifies a liquidity trade by the sign of the liquidity token change
func LiquidityTradeType(netLiquidityTokens *big.Int) string {
	if netLiquidityTokens != nil && netLiquidityTokens.Sign() > 0 {
		return schema.TradeTypeAddLiquidity
	}
	return schema.TradeTypeRemoveLiquidity
}

// FCashLiquidationType distinguishes a same currency fCash liquidation from a cross currency one
func FCashLiquidationType(localCurrencyID, fCashCurrencyID uint16) string {
	if localCurrencyID == fCashCurrencyID {
		return schema.LiquidationTypeLocalFcash
	}
	return schema.LiquidationTypeCrossCurrencyFcash
}
