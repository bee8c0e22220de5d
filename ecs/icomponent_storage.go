package ecs

// iComponentStorage is the type-erased face of a ComponentStore, used by the
// Storage collection for operations that do not need the concrete type.
type iComponentStorage interface {
	Name() string
	Contains(id EntityId) bool
	Remove(id EntityId) error
	Len() int
	Clear()
	Describe(id EntityId) (string, bool)
	Pointer(id EntityId) (any, bool)
}
