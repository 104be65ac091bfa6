package schema

import (
	"fmt"
	"time"
)

// KeyValueStore holds runner state that is not part of the protocol model,
// such as the last indexed block per chain
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}

// BlockCursorKey namespaces a cursor key inside the table
func BlockCursorKey(key string) string {
	return fmt.Sprintf("block_cursor:%s", key)
}
