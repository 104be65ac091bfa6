package schema

import (
	"github.com/notional-finance/notional-indexer/internal/domain"
)

// Entity is a record stored by key. Every write replaces the whole row.
type Entity interface {
	// TableName specifies the table the entity lives in
	TableName() string
	// EntityID returns the primary key of the entity
	EntityID() string
}

// Provenance records the block and transaction of the last write to a mutable entity
type Provenance struct {
	// LastUpdateBlockNumber is the block number of the last update
	LastUpdateBlockNumber uint64 `gorm:"column:last_update_block_number;not null;type:bigint"`
	// LastUpdateTimestamp is the block timestamp (unix seconds) of the last update
	LastUpdateTimestamp uint64 `gorm:"column:last_update_timestamp;not null;type:bigint"`
	// LastUpdateBlockHash is the block hash of the last update
	LastUpdateBlockHash string `gorm:"column:last_update_block_hash;not null;type:text"`
	// LastUpdateTransactionHash is the transaction hash of the last update
	LastUpdateTransactionHash string `gorm:"column:last_update_transaction_hash;not null;type:text"`
}

// Stamp overwrites the provenance with the context of an event
func (p *Provenance) Stamp(meta *domain.EventMeta) {
	p.LastUpdateBlockNumber = meta.BlockNumber
	p.LastUpdateTimestamp = meta.BlockTimestamp
	p.LastUpdateBlockHash = domain.HashKey(meta.BlockHash)
	p.LastUpdateTransactionHash = domain.HashKey(meta.TxHash)
}

// Origin records the block and transaction that created an immutable record
type Origin struct {
	// BlockNumber is the block the record was emitted in
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// Timestamp is the block timestamp (unix seconds)
	Timestamp uint64 `gorm:"column:timestamp;not null;type:bigint"`
	// BlockHash is the hash of the block
	BlockHash string `gorm:"column:block_hash;not null;type:text"`
	// TransactionHash is the hash of the emitting transaction
	TransactionHash string `gorm:"column:transaction_hash;not null;type:text"`
	// TransactionOrigin is the externally owned account that sent the transaction
	TransactionOrigin string `gorm:"column:transaction_origin;not null;type:text"`
}

// NewOrigin builds an Origin from an event
func NewOrigin(meta *domain.EventMeta) Origin {
	return Origin{
		BlockNumber:       meta.BlockNumber,
		Timestamp:         meta.BlockTimestamp,
		BlockHash:         domain.HashKey(meta.BlockHash),
		TransactionHash:   domain.HashKey(meta.TxHash),
		TransactionOrigin: domain.AddressKey(meta.TxOrigin),
	}
}

// Models lists every entity type, in migration order
func Models() []interface{} {
	return []interface{}{
		&Currency{},
		&EthExchangeRate{},
		&AssetExchangeRate{},
		&CashGroup{},
		&NToken{},
		&SettlementRate{},
		&Market{},
		&MarketInitialization{},
		&Account{},
		&Balance{},
		&Asset{},
		&Trade{},
		&DailyLendBorrowVolume{},
		&Liquidation{},
		&GlobalTransferOperator{},
		&AuthorizedCallbackContract{},
		&KeyValueStore{},
	}
}
