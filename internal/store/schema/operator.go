package schema

// GlobalTransferOperator represents the global_transfer_operators table.
// A row exists only while the operator is approved.
type GlobalTransferOperator struct {
	// ID is the operator address
	ID string `gorm:"column:id;primaryKey;type:text"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the GlobalTransferOperator model
func (GlobalTransferOperator) TableName() string {
	return "global_transfer_operators"
}

func (g GlobalTransferOperator) EntityID() string {
	return g.ID
}

// AuthorizedCallbackContract represents the authorized_callback_contracts table.
// A row exists only while the contract is approved.
type AuthorizedCallbackContract struct {
	// ID is the contract address
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Name is the contract's token name, "unknown" if it does not expose one
	Name string `gorm:"column:name;not null;type:text"`

	Provenance `gorm:"embedded"`
}

// TableName specifies the table name for the AuthorizedCallbackContract model
func (AuthorizedCallbackContract) TableName() string {
	return "authorized_callback_contracts"
}

func (a AuthorizedCallbackContract) EntityID() string {
	return a.ID
}
