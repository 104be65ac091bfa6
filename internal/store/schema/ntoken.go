package schema

import "gorm.io/datatypes"

// NToken represents the ntokens table - the liquidity provider token of a currency
type NToken struct {
	// ID is the currency id
	ID           string  `gorm:"column:id;primaryKey;type:text"`
	Currency     string  `gorm:"column:currency;not null;type:text"`
	CashGroup    string  `gorm:"column:cash_group;not null;type:text"`
	TokenAddress string  `gorm:"column:token_address;type:text;index"`
	Name         string  `gorm:"column:name;type:text"`
	Symbol       string  `gorm:"column:symbol;type:text"`
	Decimals     *string `gorm:"column:decimals;type:numeric(78,0)"`

	TotalSupply          *string `gorm:"column:total_supply;type:numeric(78,0)"`
	IntegralTotalSupply  *string `gorm:"column:integral_total_supply;type:numeric(78,0)"`
	LastSupplyChangeTime *string `gorm:"column:last_supply_change_time;type:numeric(78,0)"`

	DepositShares         datatypes.JSONSlice[int64] `gorm:"column:deposit_shares;type:jsonb"`
	LeverageThresholds    datatypes.JSONSlice[int64] `gorm:"column:leverage_thresholds;type:jsonb"`
	AnnualizedAnchorRates datatypes.JSONSlice[int64] `gorm:"column:annualized_anchor_rates;type:jsonb"`
	Proportions           datatypes.JSONSlice[int64] `gorm:"column:proportions;type:jsonb"`

	IncentiveEmissionRate *string `gorm:"column:incentive_emission_rate;type:numeric(78,0)"`

	LiquidationHaircutPercentage         *int32 `gorm:"column:liquidation_haircut_percentage"`
	CashWithholdingBufferBasisPoints     *int64 `gorm:"column:cash_withholding_buffer_basis_points"`
	ResidualPurchaseTimeBufferSeconds    *int64 `gorm:"column:residual_purchase_time_buffer_seconds"`
	PVHaircutPercentage                  *int32 `gorm:"column:pv_haircut_percentage"`
	ResidualPurchaseIncentiveBasisPoints *int64 `gorm:"column:residual_purchase_incentive_basis_points"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the NToken model
func (NToken) TableName() string {
	return "ntokens"
}

func (n NToken) EntityID() string {
	return n.ID
}
