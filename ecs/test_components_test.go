package ecs_test

import (
	"testing"

	"github.com/plus3/ecsframe/ecs"
	"github.com/stretchr/testify/require"
)

// Common test component types
type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

// Custom primitive types for testing non-struct components
type Score int32
type Tag string

type Inventory struct {
	Items []string
}

// Unregistered is never registered with any test world.
type Unregistered struct {
	Value int
}

// Common test messages
type Tick struct{}

func (Tick) MessageName() string { return "Tick" }

type Damage struct {
	Target ecs.EntityId
	Amount int
}

func (Damage) MessageName() string { return "Damage" }

type Spawned struct {
	Entity ecs.EntityId
}

func (Spawned) MessageName() string { return "Spawned" }

// testApp and testScene stand in for the host's application handle and
// scene state.
type testApp struct {
	DeltaTime float32
	Frames    int
}

type testScene struct {
	Log []string
}

func newTestWorld(t testing.TB) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	_, err := ecs.Register[Position](w)
	require.NoError(t, err)
	_, err = ecs.Register[Velocity](w)
	require.NoError(t, err)
	_, err = ecs.Register[Name](w)
	require.NoError(t, err)
	_, err = ecs.Register[Health](w)
	require.NoError(t, err)
	_, err = ecs.Register[PlayerController](w)
	require.NoError(t, err)
	_, err = ecs.Register[Score](w)
	require.NoError(t, err)
	_, err = ecs.Register[Tag](w)
	require.NoError(t, err)
	_, err = ecs.Register[Inventory](w)
	require.NoError(t, err)
	return w
}

// spawn creates an entity at setup time and inserts the given components.
func spawn(t testing.TB, w *ecs.World, components ...func(ecs.EntityId) error) ecs.EntityId {
	t.Helper()
	id, err := w.Create()
	require.NoError(t, err)
	for _, insert := range components {
		require.NoError(t, insert(id))
	}
	return id
}

func with[T any](w *ecs.World, value T) func(ecs.EntityId) error {
	return func(id ecs.EntityId) error {
		return ecs.Insert(w, id, value)
	}
}
