package ecs_test

import (
	"errors"
	"testing"

	"github.com/plus3/ecsframe/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCommandQueueFIFO(t *testing.T) {
	w := newTestWorld(t)
	q := w.Commands()

	var order []int
	for i := range 3 {
		q.Defer(func(*ecs.World) error {
			order = append(order, i)
			return nil
		})
	}
	q.Enqueue(nil)
	q.Defer(nil)
	assert.Equal(t, 3, q.Len())

	require.NoError(t, w.Flush())
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 0, q.Len())
}

func TestCommandsAreDeferredUntilFlush(t *testing.T) {
	w := newTestWorld(t)
	e := spawn(t, w,
		with(w, Position{X: 1, Y: 1}),
		with(w, Health{Current: 3, Max: 3}),
	)

	q := w.Commands()
	ecs.Spawn(q, e, Velocity{DX: 2})
	ecs.Remove[Health](q, e)

	assert.False(t, ecs.Has[Velocity](w, e))
	assert.True(t, ecs.Has[Health](w, e))

	require.NoError(t, w.Flush())
	assert.True(t, ecs.Has[Velocity](w, e))
	assert.False(t, ecs.Has[Health](w, e))
}

func TestKillRemovesEntityFromEveryStore(t *testing.T) {
	w := newTestWorld(t)
	e := spawn(t, w,
		with(w, Position{X: 1, Y: 2}),
		with(w, Health{Current: 5, Max: 5}),
		with(w, Tag("enemy")),
	)
	other := spawn(t, w, with(w, Position{}))

	w.Commands().Kill(e)
	require.NoError(t, w.Flush())

	assert.False(t, w.IsLive(e))
	for _, info := range w.Storage().Stores() {
		ok, err := w.Storage().Contains(info.Id, e)
		require.NoError(t, err)
		assert.False(t, ok, "store %s still holds killed entity", info.Name)
	}
	assert.True(t, ecs.Has[Position](w, other))

	// The freed id is the next one handed out.
	reused, err := w.Create()
	require.NoError(t, err)
	assert.Equal(t, e, reused)
	assert.False(t, ecs.Has[Position](w, reused), "reused id must not inherit old rows")
}

func TestDoubleKillFailsCleanly(t *testing.T) {
	w := newTestWorld(t)
	e := spawn(t, w, with(w, Position{}))
	survivor := spawn(t, w, with(w, Position{}))

	q := w.Commands()
	q.Kill(e)
	q.Kill(e)
	ecs.Spawn(q, survivor, Velocity{DX: 1})

	err := w.Flush()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 1)

	var cmdErr *ecs.CommandError
	require.True(t, errors.As(errs[0], &cmdErr))
	assert.Equal(t, 1, cmdErr.Seq)
	assert.Equal(t, "Kill(entity(0))", cmdErr.Command)
	assert.ErrorIs(t, err, ecs.ErrNotFound)

	assert.True(t, ecs.Has[Velocity](w, survivor), "later commands still apply")
	assert.Equal(t, 1, w.Entities().Count())
}

func TestSpawnUnregisteredComponent(t *testing.T) {
	w := newTestWorld(t)
	e := spawn(t, w, with(w, Position{}))
	before := w.Entities().Count()

	ecs.Spawn(w.Commands(), e, Unregistered{Value: 7})
	err := w.Flush()

	assert.ErrorIs(t, err, ecs.ErrStoreNotFound)
	assert.Equal(t, before, w.Entities().Count())
	assert.True(t, w.IsLive(e))
	assert.True(t, ecs.Has[Position](w, e))
}

func TestSpawnOnDeadEntity(t *testing.T) {
	w := newTestWorld(t)

	ecs.Spawn(w.Commands(), ecs.EntityId(12), Position{})
	err := w.Flush()

	assert.ErrorIs(t, err, ecs.ErrNotFound)
	assert.Equal(t, 0, w.Entities().Count())
}

func TestCreateCommand(t *testing.T) {
	w := newTestWorld(t)

	var id ecs.EntityId
	w.Commands().Create(&id,
		ecs.With(Position{X: 4, Y: 4}),
		ecs.With(Name{Value: "bat"}),
	)
	assert.Equal(t, 0, w.Entities().Count())

	require.NoError(t, w.Flush())
	assert.True(t, w.IsLive(id))

	name, err := ecs.Get[Name](w, id)
	require.NoError(t, err)
	assert.Equal(t, "bat", name.Value)
}

func TestCreateCommandWithUnregisteredComponentAllocatesNothing(t *testing.T) {
	w := newTestWorld(t)

	w.Commands().Create(nil, ecs.With(Position{}), ecs.With(Unregistered{}))
	err := w.Flush()

	assert.ErrorIs(t, err, ecs.ErrStoreNotFound)
	assert.Equal(t, 0, w.Entities().Count())
	assert.Equal(t, 0, w.Entities().Cap())
}

func TestDrainIncludesCommandsEnqueuedDuringDrain(t *testing.T) {
	w := newTestWorld(t)

	var order []string
	w.Commands().Defer(func(w *ecs.World) error {
		order = append(order, "outer")
		w.Commands().Defer(func(*ecs.World) error {
			order = append(order, "nested")
			return nil
		})
		return nil
	})
	w.Commands().Defer(func(*ecs.World) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, w.Flush())
	assert.Equal(t, []string{"outer", "second", "nested"}, order)
	assert.Equal(t, 0, w.Commands().Len())
}

func TestDrainCollectsEveryFailure(t *testing.T) {
	w := newTestWorld(t)
	boom := errors.New("boom")

	q := w.Commands()
	q.Kill(100)
	q.Defer(func(*ecs.World) error { return boom })
	ecs.Remove[Position](q, 100)

	err := w.Flush()
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], ecs.ErrNotFound)
	assert.ErrorIs(t, errs[1], boom)
	assert.ErrorIs(t, errs[2], ecs.ErrNotFound)
	assert.Contains(t, errs[2].Error(), "Remove[ecs_test.Position]")
}

func TestCommandQueueReset(t *testing.T) {
	w := newTestWorld(t)
	applied := false
	w.Commands().Defer(func(*ecs.World) error {
		applied = true
		return nil
	})

	w.Commands().Reset()
	require.NoError(t, w.Flush())
	assert.False(t, applied)
}

// killer enqueues the death of its target; observer runs later in the same
// stage and must still see the entity.
type killer struct {
	target ecs.EntityId
}

func (k *killer) Update(app *testApp, scene *testScene, w *ecs.World) error {
	w.Commands().Kill(k.target)
	return nil
}

type observer struct {
	target  ecs.EntityId
	sawLive []bool
	sawPos  []bool
}

func (o *observer) Update(app *testApp, scene *testScene, w *ecs.World) error {
	o.sawLive = append(o.sawLive, w.IsLive(o.target))
	o.sawPos = append(o.sawPos, ecs.Has[Position](w, o.target))
	return nil
}

func TestKilledEntityVisibleUntilStageFlush(t *testing.T) {
	w := newTestWorld(t)
	e := spawn(t, w,
		with(w, Position{X: 1}),
		with(w, Health{Current: 1, Max: 1}),
	)

	obsSame := &observer{target: e}
	obsNext := &observer{target: e}

	p := ecs.NewPipeline[*testApp, *testScene](w)
	_, err := p.Register(ecs.StageUpdate, &killer{target: e})
	require.NoError(t, err)
	_, err = p.Register(ecs.StageUpdate, obsSame)
	require.NoError(t, err)

	type lateObserver struct{ *observer }
	_, err = p.Register(ecs.StagePostUpdate, lateObserver{obsNext})
	require.NoError(t, err)

	require.NoError(t, p.RunFrame(&testApp{}, &testScene{}))

	assert.Equal(t, []bool{true}, obsSame.sawLive)
	assert.Equal(t, []bool{true}, obsSame.sawPos)
	assert.Equal(t, []bool{false}, obsNext.sawLive)
	assert.Equal(t, []bool{false}, obsNext.sawPos)
	assert.False(t, ecs.Has[Health](w, e))
}

func TestKillScenarioThroughPipeline(t *testing.T) {
	w := ecs.NewWorld()
	_, err := ecs.Register[Position](w)
	require.NoError(t, err)
	_, err = ecs.Register[Health](w)
	require.NoError(t, err)

	e1 := spawn(t, w, with(w, Position{X: 0, Y: 0}), with(w, Health{Current: 3}))

	p := ecs.NewPipeline[*testApp, *testScene](w)
	_, err = p.Register(ecs.StageUpdate, &killer{target: e1})
	require.NoError(t, err)
	require.NoError(t, p.RunStages(&testApp{}, &testScene{}, ecs.StageUpdate, ecs.StageUpdate))

	assert.False(t, w.IsLive(e1))
	_, err = ecs.Get[Position](w, e1)
	assert.ErrorIs(t, err, ecs.ErrNotFound)
	_, err = ecs.Get[Health](w, e1)
	assert.ErrorIs(t, err, ecs.ErrNotFound)
}
