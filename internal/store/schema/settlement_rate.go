package schema

// SettlementRate represents the settlement_rates table - the asset rate fixed when a maturity settles
type SettlementRate struct {
	// ID is currencyId:maturity
	ID                string `gorm:"column:id;primaryKey;type:text"`
	Currency          string `gorm:"column:currency;not null;type:text"`
	AssetExchangeRate string `gorm:"column:asset_exchange_rate;not null;type:text"`
	Maturity          int64  `gorm:"column:maturity;not null"`
	Rate              string `gorm:"column:rate;not null;type:numeric(78,0)"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the SettlementRate model
func (SettlementRate) TableName() string {
	return "settlement_rates"
}

func (s SettlementRate) EntityID() string {
	return s.ID
}
