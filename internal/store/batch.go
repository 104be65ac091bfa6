package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

type opKind int

const (
	opSave opKind = iota
	opDelete
)

type stagedOp struct {
	kind   opKind
	entity schema.Entity
}

// Batch stages entity writes in memory and applies them in one transaction on Commit.
// Loads see the staged state first, so code running against a Batch observes its
// own writes. Entities passed to Save and Delete must be pointers to entity structs.
// Staged entities are deep copied on the way in and out.
type Batch struct {
	base EntityStore
	ops  []stagedOp
	// latest staged entity per table and id, nil for a staged delete
	staged map[string]schema.Entity
}

// NewBatch creates an empty batch reading through to base
func NewBatch(base EntityStore) *Batch {
	return &Batch{
		base:   base,
		staged: make(map[string]schema.Entity),
	}
}

func stagedKey(entity schema.Entity, id string) string {
	return entity.TableName() + "/" + id
}

// Load returns the staged state of the entity if any, otherwise reads through
func (b *Batch) Load(ctx context.Context, id string, dest schema.Entity) (bool, error) {
	staged, ok := b.staged[stagedKey(dest, id)]
	if !ok {
		return b.base.Load(ctx, id, dest)
	}
	if staged == nil {
		return false, nil
	}

	src := reflect.ValueOf(staged)
	dst := reflect.ValueOf(dest)
	if src.Kind() != reflect.Ptr || dst.Kind() != reflect.Ptr || src.Elem().Type() != dst.Elem().Type() {
		return false, fmt.Errorf("cannot load staged %T into %T", staged, dest)
	}
	dst.Elem().Set(deepCopy(src.Elem()))
	return true, nil
}

// Save stages an upsert of a snapshot of the entity
func (b *Batch) Save(_ context.Context, entity schema.Entity) error {
	snapshot, err := snapshotOf(entity)
	if err != nil {
		return err
	}
	b.ops = append(b.ops, stagedOp{kind: opSave, entity: snapshot})
	b.staged[stagedKey(entity, entity.EntityID())] = snapshot
	return nil
}

// Delete stages a delete of the entity
func (b *Batch) Delete(_ context.Context, entity schema.Entity) error {
	snapshot, err := snapshotOf(entity)
	if err != nil {
		return err
	}
	b.ops = append(b.ops, stagedOp{kind: opDelete, entity: snapshot})
	b.staged[stagedKey(entity, entity.EntityID())] = nil
	return nil
}

// Len returns the number of staged writes
func (b *Batch) Len() int {
	return len(b.ops)
}

// Commit applies the staged writes in order inside one transaction of s
func (b *Batch) Commit(ctx context.Context, s Store) error {
	if len(b.ops) == 0 {
		return nil
	}

	err := s.WithTransaction(ctx, func(tx Store) error {
		for _, op := range b.ops {
			var err error
			switch op.kind {
			case opSave:
				err = tx.Save(ctx, op.entity)
			case opDelete:
				err = tx.Delete(ctx, op.entity)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to commit %d staged writes: %w", len(b.ops), err)
	}

	b.ops = nil
	b.staged = make(map[string]schema.Entity)
	return nil
}

// snapshotOf deep copies the struct an entity pointer refers to, so later
// mutations by the caller do not leak into the staged write
func snapshotOf(entity schema.Entity) (schema.Entity, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return nil, fmt.Errorf("entity %T must be a non-nil pointer", entity)
	}
	return deepCopy(v).Interface().(schema.Entity), nil
}

// deepCopy copies v along its pointers, slices and maps. Unexported struct
// fields, such as those of time.Time, are copied by value.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		cp := reflect.New(v.Elem().Type())
		cp.Elem().Set(deepCopy(v.Elem()))
		return cp
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			cp.Index(i).Set(deepCopy(v.Index(i)))
		}
		return cp
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return cp
	case reflect.Struct:
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if field := cp.Field(i); field.CanSet() {
				field.Set(deepCopy(v.Field(i)))
			}
		}
		return cp
	default:
		return v
	}
}
