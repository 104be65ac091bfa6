package schema

import "gorm.io/datatypes"

// CashGroup represents the cash_groups table - per currency market and risk configuration
type CashGroup struct {
	// ID is the currency id
	ID       string `gorm:"column:id;primaryKey;type:text"`
	Currency string `gorm:"column:currency;not null;type:text"`

	MaxMarketIndex                     int32 `gorm:"column:max_market_index;not null"`
	MaxMarketMaturityLengthSeconds     int64 `gorm:"column:max_market_maturity_length_seconds;not null"`
	RateOracleTimeWindowSeconds        int64 `gorm:"column:rate_oracle_time_window_seconds;not null"`
	TotalFeeBasisPoints                int64 `gorm:"column:total_fee_basis_points;not null"`
	ReserveFeeSharePercent             int32 `gorm:"column:reserve_fee_share_percent;not null"`
	DebtBufferBasisPoints              int64 `gorm:"column:debt_buffer_basis_points;not null"`
	FCashHaircutBasisPoints            int64 `gorm:"column:fcash_haircut_basis_points;not null"`
	SettlementPenaltyRateBasisPoints   int64 `gorm:"column:settlement_penalty_rate_basis_points;not null"`
	LiquidationFCashHaircutBasisPoints int64 `gorm:"column:liquidation_fcash_haircut_basis_points;not null"`
	LiquidationDebtBufferBasisPoints   int64 `gorm:"column:liquidation_debt_buffer_basis_points;not null"`

	// LiquidityTokenHaircutsPercent has one entry per market, in market order
	LiquidityTokenHaircutsPercent datatypes.JSONSlice[int32] `gorm:"column:liquidity_token_haircuts_percent;type:jsonb"`
	// RateScalars has one entry per market, in market order
	RateScalars datatypes.JSONSlice[int32] `gorm:"column:rate_scalars;type:jsonb"`

	// ReserveBalance is the protocol reserve held for the currency, starts at zero
	ReserveBalance string `gorm:"column:reserve_balance;not null;type:numeric(78,0)"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the CashGroup model
func (CashGroup) TableName() string {
	return "cash_groups"
}

func (c CashGroup) EntityID() string {
	return c.ID
}
