package schema

// Trade types
const (
	TradeTypeLend                   = "Lend"
	TradeTypeBorrow                 = "Borrow"
	TradeTypeAddLiquidity           = "AddLiquidity"
	TradeTypeRemoveLiquidity        = "RemoveLiquidity"
	TradeTypeSettleCashDebt         = "SettleCashDebt"
	TradeTypePurchaseNTokenResidual = "PurchaseNTokenResidual"
)

// Trade represents the trades table - one account's side of an economic action
type Trade struct {
	// ID is currencyId:account:txHash:logIndex
	ID        string `gorm:"column:id;primaryKey;type:text"`
	Currency  string `gorm:"column:currency;not null;type:text;index"`
	Account   string `gorm:"column:account;not null;type:text;index"`
	TradeType string `gorm:"column:trade_type;not null;type:text"`

	NetAssetCash       string  `gorm:"column:net_asset_cash;not null;type:numeric(78,0)"`
	NetUnderlyingCash  *string `gorm:"column:net_underlying_cash;type:numeric(78,0)"`
	NetfCash           string  `gorm:"column:net_fcash;not null;type:numeric(78,0)"`
	NetLiquidityTokens *string `gorm:"column:net_liquidity_tokens;type:numeric(78,0)"`
	Maturity           int64   `gorm:"column:maturity;not null"`
	// Market is the market key, empty for trades outside an active market
	Market *string `gorm:"column:market;type:text"`

	Origin `gorm:"embedded"`
}

// TableName specifies the table name for the Trade model
func (Trade) TableName() string {
	return "trades"
}

func (t Trade) EntityID() string {
	return t.ID
}

// DailyLendBorrowVolume represents the daily_lend_borrow_volumes table - lend and borrow totals per day
type DailyLendBorrowVolume struct {
	// ID is dayId:currencyId:tradeType
	ID        string  `gorm:"column:id;primaryKey;type:text"`
	Date      int64   `gorm:"column:date;not null"`
	Currency  string  `gorm:"column:currency;not null;type:text"`
	Market    *string `gorm:"column:market;type:text"`
	TradeType string  `gorm:"column:trade_type;not null;type:text"`

	TotalVolumeUnderlyingCash string `gorm:"column:total_volume_underlying_cash;not null;type:numeric(78,0)"`
	TotalVolumeNetAssetCash   string `gorm:"column:total_volume_net_asset_cash;not null;type:numeric(78,0)"`
	TotalVolumeNetfCash       string `gorm:"column:total_volume_net_fcash;not null;type:numeric(78,0)"`
	TxCount                   int64  `gorm:"column:tx_count;not null"`
}

// TableName specifies the table name for the DailyLendBorrowVolume model
func (DailyLendBorrowVolume) TableName() string {
	return "daily_lend_borrow_volumes"
}

func (d DailyLendBorrowVolume) EntityID() string {
	return d.ID
}
