package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Entity keys are composed from integer and address components so that every
// event addressing the same logical record resolves to the same key.

// AddressKey returns the lower-case hex form of an address
func AddressKey(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// HashKey returns the lower-case hex form of a hash
func HashKey(hash common.Hash) string {
	return strings.ToLower(hash.Hex())
}

// CurrencyKey keys every per-currency entity (currency, rates, cash group, nToken)
func CurrencyKey(currencyID uint16) string {
	return fmt.Sprintf("%d", currencyID)
}

// SettlementRateKey returns currencyId:maturity
func SettlementRateKey(currencyID uint16, maturity int64) string {
	return fmt.Sprintf("%d:%d", currencyID, maturity)
}

// MarketInitializationKey returns currencyId:timeReference
func MarketInitializationKey(currencyID uint16, tRef int64) string {
	return fmt.Sprintf("%d:%d", currencyID, tRef)
}

// MarketKey returns currencyId:settlementDate:maturity
func MarketKey(currencyID uint16, settlementDate int64, maturity int64) string {
	return fmt.Sprintf("%d:%d:%d", currencyID, settlementDate, maturity)
}

// TradeKey returns currencyId:account:txHash:logIndex
func TradeKey(currencyID uint16, account common.Address, txHash common.Hash, logIndex uint) string {
	return fmt.Sprintf("%d:%s:%s:%d", currencyID, AddressKey(account), HashKey(txHash), logIndex)
}

// LiquidationKey returns txHash:logIndex
func LiquidationKey(txHash common.Hash, logIndex uint) string {
	return fmt.Sprintf("%s:%d", HashKey(txHash), logIndex)
}

// BalanceKey returns account:currencyId
func BalanceKey(account string, currencyID uint16) string {
	return fmt.Sprintf("%s:%d", account, currencyID)
}

// AssetKey returns account:currencyId:assetType:maturity
func AssetKey(account string, currencyID uint16, assetType string, maturity int64) string {
	return fmt.Sprintf("%s:%d:%s:%d", account, currencyID, assetType, maturity)
}

// DailyVolumeKey returns dayId:currencyId:tradeType
func DailyVolumeKey(dayID int64, currencyID uint16, tradeType string) string {
	return fmt.Sprintf("%d:%d:%s", dayID, currencyID, tradeType)
}
