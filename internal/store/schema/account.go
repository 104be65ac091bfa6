package schema

import "gorm.io/datatypes"

// Account represents the accounts table - the aggregate position of an address
type Account struct {
	// ID is the lower-case hex address
	ID                    string  `gorm:"column:id;primaryKey;type:text"`
	NextSettleTime        int64   `gorm:"column:next_settle_time;not null"`
	HasCashDebt           bool    `gorm:"column:has_cash_debt;not null"`
	HasPortfolioAssetDebt bool    `gorm:"column:has_portfolio_asset_debt;not null"`
	AssetBitmapCurrency   *string `gorm:"column:asset_bitmap_currency;type:text"`
	// Balances holds balance keys, one per currency held
	Balances datatypes.JSONSlice[string] `gorm:"column:balances;type:jsonb"`
	// Portfolio holds asset keys in on-chain portfolio order
	Portfolio datatypes.JSONSlice[string] `gorm:"column:portfolio;type:jsonb"`
	// NToken is set when the account is an nToken, to its currency id
	NToken *string `gorm:"column:ntoken;type:text"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

func (a Account) EntityID() string {
	return a.ID
}

// Asset represents the assets table - one position of an account portfolio
type Asset struct {
	// ID is account:currencyId:assetType:maturity
	ID             string `gorm:"column:id;primaryKey;type:text"`
	Account        string `gorm:"column:account;not null;type:text;index"`
	Currency       string `gorm:"column:currency;not null;type:text"`
	AssetType      string `gorm:"column:asset_type;not null;type:text"`
	Maturity       int64  `gorm:"column:maturity;not null"`
	SettlementDate int64  `gorm:"column:settlement_date;not null"`
	Notional       string `gorm:"column:notional;not null;type:numeric(78,0)"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}

func (a Asset) EntityID() string {
	return a.ID
}
