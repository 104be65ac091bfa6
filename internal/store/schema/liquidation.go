package schema

import "gorm.io/datatypes"

// Liquidation types
const (
	LiquidationTypeLocalCurrency      = "LocalCurrency"
	LiquidationTypeLocalFcash         = "LocalFcash"
	LiquidationTypeCollateralCurrency = "CollateralCurrency"
	LiquidationTypeCrossCurrencyFcash = "CrossCurrencyFcash"
)

// Liquidation represents the liquidations table
type Liquidation struct {
	// ID is txHash:logIndex
	ID                        string  `gorm:"column:id;primaryKey;type:text"`
	Type                      string  `gorm:"column:type;not null;type:text"`
	Account                   string  `gorm:"column:account;not null;type:text;index"`
	Liquidator                string  `gorm:"column:liquidator;not null;type:text"`
	LocalCurrency             string  `gorm:"column:local_currency;not null;type:text"`
	CollateralOrFcashCurrency *string `gorm:"column:collateral_or_fcash_currency;type:text"`

	NetLocalFromLiquidator string  `gorm:"column:net_local_from_liquidator;not null;type:numeric(78,0)"`
	NetCollateralTransfer  *string `gorm:"column:net_collateral_transfer;type:numeric(78,0)"`
	NetNTokenTransfer      *string `gorm:"column:net_ntoken_transfer;type:numeric(78,0)"`

	FCashMaturities       datatypes.JSONSlice[int64]  `gorm:"column:fcash_maturities;type:jsonb"`
	FCashNotionalTransfer datatypes.JSONSlice[string] `gorm:"column:fcash_notional_transfer;type:jsonb"`

	Origin `gorm:"embedded"`
}

// TableName specifies the table name for the Liquidation model
func (Liquidation) TableName() string {
	return "liquidations"
}

func (l Liquidation) EntityID() string {
	return l.ID
}
