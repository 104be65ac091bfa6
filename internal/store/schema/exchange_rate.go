package schema

// EthExchangeRate represents the eth_exchange_rates table - the oracle pricing a currency in ETH
type EthExchangeRate struct {
	// ID is the currency id
	ID string `gorm:"column:id;primaryKey;type:text"`
	// BaseCurrency references the priced currency
	BaseCurrency string `gorm:"column:base_currency;not null;type:text"`
	// RateOracle is the chainlink style oracle address
	RateOracle string `gorm:"column:rate_oracle;not null;type:text"`
	// RateDecimalPlaces is the number of decimals the oracle answers in
	RateDecimalPlaces int32 `gorm:"column:rate_decimal_places;not null"`
	// MustInvert is set when the oracle quotes ETH in the currency
	MustInvert bool `gorm:"column:must_invert;not null"`
	// Buffer is the debt buffer percentage
	Buffer int32 `gorm:"column:buffer;not null"`
	// Haircut is the collateral haircut percentage
	Haircut int32 `gorm:"column:haircut;not null"`
	// LiquidationDiscount is the liquidation discount percentage
	LiquidationDiscount int32 `gorm:"column:liquidation_discount;not null"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the EthExchangeRate model
func (EthExchangeRate) TableName() string {
	return "eth_exchange_rates"
}

func (e EthExchangeRate) EntityID() string {
	return e.ID
}

// AssetExchangeRate represents the asset_exchange_rates table - the adapter converting asset cash to underlying
type AssetExchangeRate struct {
	// ID is the currency id
	ID string `gorm:"column:id;primaryKey;type:text"`
	// AssetCurrency references the converted currency
	AssetCurrency string `gorm:"column:asset_currency;not null;type:text"`
	// RateAdapterAddress is the asset rate adapter contract
	RateAdapterAddress string `gorm:"column:rate_adapter_address;not null;type:text"`
	// UnderlyingDecimalPlaces is the number of decimals of the underlying token
	UnderlyingDecimalPlaces int32 `gorm:"column:underlying_decimal_places;not null"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the AssetExchangeRate model
func (AssetExchangeRate) TableName() string {
	return "asset_exchange_rates"
}

func (a AssetExchangeRate) EntityID() string {
	return a.ID
}
