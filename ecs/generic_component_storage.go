package ecs

import (
	"fmt"
	"iter"
	"reflect"
)

const (
	genericBlockSize = 64
)

// ComponentStore holds the components of one type. Rows are indexed by
// entity id and the backing blocks grow on demand, so the component at row
// i always belongs to entity i.
type ComponentStore[T any] struct {
	name   string
	blocks []*[genericBlockSize]T
	filled [][genericBlockSize]bool
	count  int
}

// NewComponentStore creates an empty store for T.
func NewComponentStore[T any]() *ComponentStore[T] {
	return &ComponentStore[T]{
		name: reflect.TypeFor[T]().String(),
	}
}

// Name returns the component type name.
func (cs *ComponentStore[T]) Name() string {
	return cs.name
}

func (cs *ComponentStore[T]) locate(id EntityId) (int, int, bool) {
	blockIdx := int(id) / genericBlockSize
	slotIdx := int(id) % genericBlockSize
	return blockIdx, slotIdx, blockIdx < len(cs.blocks)
}

// Put inserts or overwrites the row for id and returns the row handle,
// which is always id itself.
func (cs *ComponentStore[T]) Put(id EntityId, value T) EntityId {
	blockIdx, slotIdx, _ := cs.locate(id)

	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([genericBlockSize]T))
		cs.filled = append(cs.filled, [genericBlockSize]bool{})
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.filled[blockIdx][slotIdx] = true
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = value
	return id
}

// Get returns a copy of the component for id.
func (cs *ComponentStore[T]) Get(id EntityId) (T, error) {
	ptr, err := cs.GetMut(id)
	if err != nil {
		var zero T
		return zero, err
	}
	return *ptr, nil
}

// GetMut returns a pointer to the stored component for id. Blocks are
// allocated individually and never moved, so the pointer stays valid while
// the store grows.
func (cs *ComponentStore[T]) GetMut(id EntityId) (*T, error) {
	blockIdx, slotIdx, ok := cs.locate(id)
	if !ok || !cs.filled[blockIdx][slotIdx] {
		return nil, fmt.Errorf("%w: %s has no %s", ErrNotFound, id, cs.name)
	}
	return &cs.blocks[blockIdx][slotIdx], nil
}

// Remove clears the row for id.
func (cs *ComponentStore[T]) Remove(id EntityId) error {
	blockIdx, slotIdx, ok := cs.locate(id)
	if !ok || !cs.filled[blockIdx][slotIdx] {
		return fmt.Errorf("%w: %s has no %s", ErrNotFound, id, cs.name)
	}

	var zero T
	cs.filled[blockIdx][slotIdx] = false
	cs.blocks[blockIdx][slotIdx] = zero
	cs.count--
	return nil
}

// Contains reports whether a row exists for id.
func (cs *ComponentStore[T]) Contains(id EntityId) bool {
	blockIdx, slotIdx, ok := cs.locate(id)
	return ok && cs.filled[blockIdx][slotIdx]
}

// Len returns the number of occupied rows.
func (cs *ComponentStore[T]) Len() int {
	return cs.count
}

// Clear drops every row and releases the blocks.
func (cs *ComponentStore[T]) Clear() {
	cs.blocks = nil
	cs.filled = nil
	cs.count = 0
}

// Describe renders the component for id with fmt's %+v verb.
func (cs *ComponentStore[T]) Describe(id EntityId) (string, bool) {
	ptr, err := cs.GetMut(id)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%+v", *ptr), true
}

// Pointer returns the row for id as an untyped *T.
func (cs *ComponentStore[T]) Pointer(id EntityId) (any, bool) {
	ptr, err := cs.GetMut(id)
	if err != nil {
		return nil, false
	}
	return ptr, true
}

// Iter yields every present component in ascending row order.
func (cs *ComponentStore[T]) Iter() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for blockIdx := range cs.blocks {
			for slotIdx := 0; slotIdx < genericBlockSize; slotIdx++ {
				if !cs.filled[blockIdx][slotIdx] {
					continue
				}
				id := EntityId(blockIdx*genericBlockSize + slotIdx)
				if !yield(id, &cs.blocks[blockIdx][slotIdx]) {
					return
				}
			}
		}
	}
}

var _ iComponentStorage = (*ComponentStore[struct{}])(nil)
