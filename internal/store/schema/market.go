package schema

import "gorm.io/datatypes"

// Market represents the markets table - the state of one fCash market curve
// for the quarter it was last initialized in
type Market struct {
	// ID is currencyId:settlementDate:maturity
	ID                          string `gorm:"column:id;primaryKey;type:text"`
	Currency                    string `gorm:"column:currency;not null;type:text;index"`
	MarketIndex                 int32  `gorm:"column:market_index;not null"`
	SettlementDate              int64  `gorm:"column:settlement_date;not null"`
	Maturity                    int64  `gorm:"column:maturity;not null"`
	MarketMaturityLengthSeconds int64  `gorm:"column:market_maturity_length_seconds;not null"`

	TotalfCash        string `gorm:"column:total_fcash;not null;type:numeric(78,0)"`
	TotalAssetCash    string `gorm:"column:total_asset_cash;not null;type:numeric(78,0)"`
	TotalLiquidity    string `gorm:"column:total_liquidity;not null;type:numeric(78,0)"`
	LastImpliedRate   int64  `gorm:"column:last_implied_rate;not null"`
	OracleRate        int64  `gorm:"column:oracle_rate;not null"`
	PreviousTradeTime int64  `gorm:"column:previous_trade_time;not null"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the Market model
func (Market) TableName() string {
	return "markets"
}

func (m Market) EntityID() string {
	return m.ID
}

// MarketInitialization represents the market_initializations table - a market reset at a quarter boundary
type MarketInitialization struct {
	// ID is currencyId:timeReference
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Currency string `gorm:"column:currency;not null;type:text"`
	// Markets holds the market keys in slot order
	Markets datatypes.JSONSlice[string] `gorm:"column:markets;type:jsonb"`

	Origin `gorm:"embedded"`
}

// TableName specifies the table name for the MarketInitialization model
func (MarketInitialization) TableName() string {
	return "market_initializations"
}

func (m MarketInitialization) EntityID() string {
	return m.ID
}
