package ecs

import (
	"fmt"
	"iter"
)

// EntityId names a row shared by every component store. It carries no
// payload of its own; an id is live while its registry slot is occupied.
type EntityId uint32

// String renders the entity id for logs and errors.
func (e EntityId) String() string {
	return fmt.Sprintf("entity(%d)", uint32(e))
}

// EntityRegistry owns entity identity. Freed ids are queued and handed out
// again in the order they were freed before any new slot is appended.
type EntityRegistry struct {
	slots    []bool
	free     []EntityId
	freeHead int
	live     int
}

// NewEntityRegistry creates an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{
		slots: make([]bool, 0, 256),
		free:  make([]EntityId, 0, 64),
	}
}

// Create allocates a fresh or recycled id and marks it live.
func (r *EntityRegistry) Create() EntityId {
	r.live++

	if r.freeHead < len(r.free) {
		id := r.free[r.freeHead]
		r.freeHead++
		r.compactFree()
		r.slots[id] = true
		return id
	}

	id := EntityId(len(r.slots))
	r.slots = append(r.slots, true)
	return id
}

// compactFree drops the consumed prefix of the free queue once it is at
// least half the queue, so a steady create/destroy churn reuses the same
// backing array.
func (r *EntityRegistry) compactFree() {
	if r.freeHead < len(r.free)-r.freeHead {
		return
	}
	n := copy(r.free, r.free[r.freeHead:])
	clear(r.free[n:])
	r.free = r.free[:n]
	r.freeHead = 0
}

// IsLive reports whether id currently names a live entity.
func (r *EntityRegistry) IsLive(id EntityId) bool {
	if int(id) >= len(r.slots) {
		return false
	}
	return r.slots[id]
}

// Destroy frees the slot and queues the id for reuse.
func (r *EntityRegistry) Destroy(id EntityId) error {
	if !r.IsLive(id) {
		return fmt.Errorf("%w: %s is not live", ErrNotFound, id)
	}

	r.slots[id] = false
	r.free = append(r.free, id)
	r.live--
	return nil
}

// Count returns the number of live entities.
func (r *EntityRegistry) Count() int {
	return r.live
}

// Cap returns the number of slots ever allocated, live or free.
func (r *EntityRegistry) Cap() int {
	return len(r.slots)
}

// Iter yields every live entity in ascending id order.
func (r *EntityRegistry) Iter() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for i, occupied := range r.slots {
			if !occupied {
				continue
			}
			if !yield(EntityId(i)) {
				return
			}
		}
	}
}

// EntityView is a read-only handle on an EntityRegistry. Entities are
// destroyed through World.Destroy or a Kill command so their component rows
// go with them.
type EntityView struct {
	registry *EntityRegistry
}

// IsLive reports whether id currently names a live entity.
func (v EntityView) IsLive(id EntityId) bool { return v.registry.IsLive(id) }

// Count returns the number of live entities.
func (v EntityView) Count() int { return v.registry.Count() }

// Cap returns the number of slots ever allocated, live or free.
func (v EntityView) Cap() int { return v.registry.Cap() }

// Iter yields every live entity in ascending id order.
func (v EntityView) Iter() iter.Seq[EntityId] { return v.registry.Iter() }
