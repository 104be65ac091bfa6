package schema

// Balance represents the balances table - an account's cash and nToken holdings in one currency
type Balance struct {
	// ID is account:currencyId
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Account  string `gorm:"column:account;not null;type:text;index"`
	Currency string `gorm:"column:currency;not null;type:text"`
	// AssetCashBalance is the signed asset cash held (stored as string to support up to 78 digits)
	AssetCashBalance string `gorm:"column:asset_cash_balance;not null;type:numeric(78,0)"`
	// NTokenBalance is the nToken balance (stored as string to support up to 78 digits)
	NTokenBalance           string `gorm:"column:ntoken_balance;not null;type:numeric(78,0)"`
	LastClaimTime           int64  `gorm:"column:last_claim_time;not null"`
	LastClaimIntegralSupply string `gorm:"column:last_claim_integral_supply;not null;type:numeric(78,0)"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the Balance model
func (Balance) TableName() string {
	return "balances"
}

func (b Balance) EntityID() string {
	return b.ID
}
