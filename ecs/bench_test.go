package ecs_test

import (
	"testing"

	"github.com/plus3/ecsframe/ecs"
)

func BenchmarkCreate(b *testing.B) {
	w := newTestWorld(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, _ := w.Create()
		ecs.Insert(w, id, Position{X: 1.0, Y: 2.0})
		ecs.Insert(w, id, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkCreateWithMultipleComponents(b *testing.B) {
	w := newTestWorld(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id, _ := w.Create()
		ecs.Insert(w, id, Position{X: 1.0, Y: 2.0})
		ecs.Insert(w, id, Velocity{DX: 0.5, DY: 0.5})
		ecs.Insert(w, id, Health{Current: 100, Max: 100})
		ecs.Insert(w, id, Name{Value: "Entity"})
	}
}

func BenchmarkDestroy(b *testing.B) {
	w := newTestWorld(b)

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i], _ = w.Create()
		ecs.Insert(w, ids[i], Position{X: 1.0, Y: 2.0})
		ecs.Insert(w, ids[i], Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Destroy(ids[i])
	}
}

func BenchmarkGetComponent(b *testing.B) {
	w := newTestWorld(b)
	id, _ := w.Create()
	ecs.Insert(w, id, Position{X: 1.0, Y: 2.0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.GetMut[Position](w, id)
	}
}

func BenchmarkStoreIter(b *testing.B) {
	store := ecs.NewComponentStore[Position]()
	for i := 0; i < 10000; i++ {
		store.Put(ecs.EntityId(i), Position{X: float32(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pos := range store.Iter() {
			pos.X += 1
		}
	}
}

func BenchmarkStoreIterSparse(b *testing.B) {
	store := ecs.NewComponentStore[Position]()
	for i := 0; i < 10000; i += 17 {
		store.Put(ecs.EntityId(i), Position{X: float32(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pos := range store.Iter() {
			pos.X += 1
		}
	}
}

func BenchmarkKillCommand(b *testing.B) {
	w := newTestWorld(b)
	ids := make([]ecs.EntityId, b.N)
	for i := range ids {
		ids[i], _ = w.Create()
		ecs.Insert(w, ids[i], Position{})
		ecs.Insert(w, ids[i], Health{Current: 1, Max: 1})
	}

	b.ResetTimer()
	for _, id := range ids {
		w.Commands().Kill(id)
	}
	w.Flush()
}

func BenchmarkBroadcast(b *testing.B) {
	w := ecs.NewWorld()
	p := ecs.NewPipeline[*testApp, *testScene](w)
	p.Register(ecs.StageUpdate, recorderA{&recorder{}})
	p.Register(ecs.StageUpdate, recorderB{&recorder{}})
	p.Register(ecs.StageUpdate, recorderC{&recorder{}})
	bus := w.Messages()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Broadcast(ecs.NoSystem, Tick{})
		if i%64 == 63 {
			bus.Clear()
		}
	}
}

type benchMovementSystem struct{}

func (s *benchMovementSystem) Update(app *testApp, scene *testScene, w *ecs.World) error {
	velocities, err := ecs.StoreOf[Velocity](w.Storage())
	if err != nil {
		return err
	}
	for id, pos := range ecs.Each[Position](w) {
		vel, err := velocities.GetMut(id)
		if err != nil {
			continue
		}
		pos.X += vel.DX * app.DeltaTime
		pos.Y += vel.DY * app.DeltaTime
	}
	return nil
}

type benchHealthSystem struct{}

func (s *benchHealthSystem) Update(app *testApp, scene *testScene, w *ecs.World) error {
	for _, h := range ecs.Each[Health](w) {
		if h.Current < h.Max {
			h.Current++
		}
	}
	return nil
}

func BenchmarkPipelineRunFrame(b *testing.B) {
	w := newTestWorld(b)
	for i := 0; i < 1000; i++ {
		id, _ := w.Create()
		ecs.Insert(w, id, Position{X: float32(i), Y: float32(i)})
		ecs.Insert(w, id, Velocity{DX: 1, DY: 1})
	}

	p := ecs.NewPipeline[*testApp, *testScene](w)
	p.Register(ecs.StageUpdate, &benchMovementSystem{})

	app := &testApp{DeltaTime: 0.016}
	scene := &testScene{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.RunFrame(app, scene)
	}
}

func BenchmarkPipelineMultipleSystems(b *testing.B) {
	w := newTestWorld(b)
	for i := 0; i < 1000; i++ {
		id, _ := w.Create()
		ecs.Insert(w, id, Position{X: float32(i), Y: float32(i)})
		ecs.Insert(w, id, Velocity{DX: 1, DY: 1})
		ecs.Insert(w, id, Health{Current: 50, Max: 100})
	}

	p := ecs.NewPipeline[*testApp, *testScene](w)
	p.Register(ecs.StageUpdate, &benchMovementSystem{})
	p.Register(ecs.StagePostUpdate, &benchHealthSystem{})

	app := &testApp{DeltaTime: 0.016}
	scene := &testScene{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.RunFrame(app, scene)
	}
}
