package schema

// Currency represents the currencies table - an asset listed on the protocol
type Currency struct {
	// ID is the currency id
	ID string `gorm:"column:id;primaryKey;type:text"`
	// TokenType is the asset token type (UnderlyingToken, cToken, cETH, Ether, NonMintable or unknown)
	TokenType string `gorm:"column:token_type;not null;type:text"`
	// Name is the asset token name, "unknown" if the token does not expose one
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the asset token symbol, "unknown" if the token does not expose one
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// TokenAddress is the asset token contract
	TokenAddress string `gorm:"column:token_address;not null;type:text"`
	// Decimals is 10^decimals of the asset token
	Decimals string `gorm:"column:decimals;not null;type:numeric(78,0)"`
	// HasTransferFee is set for fee-on-transfer tokens
	HasTransferFee bool `gorm:"column:has_transfer_fee;not null"`
	// MaxCollateralBalance caps the asset balance counted as collateral
	MaxCollateralBalance *string `gorm:"column:max_collateral_balance;type:numeric(78,0)"`

	UnderlyingName           *string `gorm:"column:underlying_name;type:text"`
	UnderlyingSymbol         *string `gorm:"column:underlying_symbol;type:text"`
	UnderlyingTokenAddress   *string `gorm:"column:underlying_token_address;type:text"`
	UnderlyingDecimals       *string `gorm:"column:underlying_decimals;type:numeric(78,0)"`
	UnderlyingHasTransferFee *bool   `gorm:"column:underlying_has_transfer_fee"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the Currency model
func (Currency) TableName() string {
	return "currencies"
}

func (c Currency) EntityID() string {
	return c.ID
}
