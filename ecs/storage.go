package ecs

import (
	"fmt"
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentId is the key of a registered component type, assigned in
// registration order.
type ComponentId uint32

// StoreInfo summarizes one registered component store.
type StoreInfo struct {
	Id   ComponentId
	Name string
	Len  int
}

// Storage is the component manager collection: one ComponentStore per
// registered component type, reachable by type or by ComponentId.
type Storage struct {
	ids    map[reflect.Type]ComponentId
	stores *intmap.Map[ComponentId, iComponentStorage]
	order  []ComponentId
}

// NewStorage creates an empty collection.
func NewStorage() *Storage {
	return &Storage{
		ids:    make(map[reflect.Type]ComponentId),
		stores: intmap.New[ComponentId, iComponentStorage](32),
	}
}

// RegisterComponent allocates the store for T. Each type may be registered once.
func RegisterComponent[T any](s *Storage) (ComponentId, error) {
	t := reflect.TypeFor[T]()
	if _, exists := s.ids[t]; exists {
		return 0, fmt.Errorf("%w: component %s", ErrDuplicateRegistration, t)
	}

	id := ComponentId(len(s.order))
	s.ids[t] = id
	s.stores.Put(id, NewComponentStore[T]())
	s.order = append(s.order, id)
	return id, nil
}

// ComponentIdOf returns the id assigned to T at registration.
func ComponentIdOf[T any](s *Storage) (ComponentId, error) {
	t := reflect.TypeFor[T]()
	id, ok := s.ids[t]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrStoreNotFound, t)
	}
	return id, nil
}

// StoreOf returns the concrete store for T.
func StoreOf[T any](s *Storage) (*ComponentStore[T], error) {
	id, err := ComponentIdOf[T](s)
	if err != nil {
		return nil, err
	}
	store, _ := s.stores.Get(id)
	return store.(*ComponentStore[T]), nil
}

func (s *Storage) lookup(cid ComponentId) (iComponentStorage, error) {
	store, ok := s.stores.Get(cid)
	if !ok {
		return nil, fmt.Errorf("%w: component id %d", ErrStoreNotFound, cid)
	}
	return store, nil
}

// Contains reports whether store cid holds a row for id.
func (s *Storage) Contains(cid ComponentId, id EntityId) (bool, error) {
	store, err := s.lookup(cid)
	if err != nil {
		return false, err
	}
	return store.Contains(id), nil
}

// Remove clears id's row from store cid.
func (s *Storage) Remove(cid ComponentId, id EntityId) error {
	store, err := s.lookup(cid)
	if err != nil {
		return err
	}
	return store.Remove(id)
}

// Describe renders id's component in store cid, if present.
func (s *Storage) Describe(cid ComponentId, id EntityId) (string, bool) {
	store, err := s.lookup(cid)
	if err != nil {
		return "", false
	}
	return store.Describe(id)
}

// Component returns a pointer to id's row in store cid for reflection based
// editors. The dynamic type is *T for the store's component type T.
func (s *Storage) Component(cid ComponentId, id EntityId) (any, bool) {
	store, err := s.lookup(cid)
	if err != nil {
		return nil, false
	}
	return store.Pointer(id)
}

// ComponentsOf lists the stores holding a row for id, in registration order.
func (s *Storage) ComponentsOf(id EntityId) []StoreInfo {
	var infos []StoreInfo
	for _, cid := range s.order {
		store, _ := s.stores.Get(cid)
		if store.Contains(id) {
			infos = append(infos, StoreInfo{Id: cid, Name: store.Name(), Len: store.Len()})
		}
	}
	return infos
}

// Stores lists the registered stores in registration order.
func (s *Storage) Stores() []StoreInfo {
	infos := make([]StoreInfo, 0, len(s.order))
	for _, cid := range s.order {
		store, _ := s.stores.Get(cid)
		infos = append(infos, StoreInfo{
			Id:   cid,
			Name: store.Name(),
			Len:  store.Len(),
		})
	}
	return infos
}

// Len returns the number of registered stores.
func (s *Storage) Len() int {
	return len(s.order)
}

// removeEntity drops id from every store that holds it and returns how many
// rows were removed.
func (s *Storage) removeEntity(id EntityId) int {
	removed := 0
	for _, cid := range s.order {
		store, _ := s.stores.Get(cid)
		if !store.Contains(id) {
			continue
		}
		if store.Remove(id) == nil {
			removed++
		}
	}
	return removed
}
