package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

// CursorStore keeps the last block a runner has handled. Keys name the runner
// and chain, e.g. "emitter:eip155:1".
type CursorStore interface {
	// GetBlockCursor returns 0 when no cursor was saved under key
	GetBlockCursor(ctx context.Context, key string) (uint64, error)
	SetBlockCursor(ctx context.Context, key string, blockNumber uint64) error
}

func (s *pgStore) GetBlockCursor(ctx context.Context, key string) (uint64, error) {
	var row schema.KeyValueStore
	err := s.db.WithContext(ctx).
		Where("key = ?", schema.BlockCursorKey(key)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor %s: %w", key, err)
	}

	blockNumber, err := strconv.ParseUint(row.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed block cursor %s=%q: %w", key, row.Value, err)
	}
	return blockNumber, nil
}

func (s *pgStore) SetBlockCursor(ctx context.Context, key string, blockNumber uint64) error {
	row := schema.KeyValueStore{
		Key:   schema.BlockCursorKey(key),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set block cursor %s: %w", key, err)
	}
	return nil
}
