package ecs_test

import (
	"context"
	"fmt"
	"time"

	"github.com/plus3/ecsframe/ecs"
)

type Transform struct {
	X, Y float32
}

type Speed struct {
	DX, DY float32
}

type Hitpoints struct {
	Current, Max int
}

type PhysicsSystem struct{}

func (s *PhysicsSystem) Update(app *testApp, scene *testScene, w *ecs.World) error {
	for id, transform := range ecs.Each[Transform](w) {
		speed, err := ecs.Get[Speed](w, id)
		if err != nil {
			continue
		}
		transform.X += speed.DX * app.DeltaTime
		transform.Y += speed.DY * app.DeltaTime
	}
	return nil
}

type HealingSystem struct {
	RegenRate float32
}

func (s *HealingSystem) Update(app *testApp, scene *testScene, w *ecs.World) error {
	for _, hp := range ecs.Each[Hitpoints](w) {
		if hp.Current < hp.Max {
			hp.Current += int(s.RegenRate * app.DeltaTime)
			if hp.Current > hp.Max {
				hp.Current = hp.Max
			}
		}
	}
	return nil
}

// ExamplePipeline demonstrates building a game loop with multiple systems.
// Stages run in a fixed order and systems within a stage run in
// registration order. Queued commands are applied after each stage.
func ExamplePipeline() {
	w := ecs.NewWorld()
	ecs.Register[Transform](w)
	ecs.Register[Speed](w)
	ecs.Register[Hitpoints](w)

	a, _ := w.Create()
	ecs.Insert(w, a, Transform{X: 0, Y: 0})
	ecs.Insert(w, a, Speed{DX: 10, DY: 5})
	ecs.Insert(w, a, Hitpoints{Current: 80, Max: 100})

	b, _ := w.Create()
	ecs.Insert(w, b, Transform{X: 100, Y: 100})
	ecs.Insert(w, b, Speed{DX: -5, DY: -5})
	ecs.Insert(w, b, Hitpoints{Current: 50, Max: 100})

	pipeline := ecs.NewPipeline[*testApp, *testScene](w)
	pipeline.Register(ecs.StageUpdate, &PhysicsSystem{})
	pipeline.Register(ecs.StagePostUpdate, &HealingSystem{RegenRate: 10})

	pipeline.RunFrame(&testApp{DeltaTime: 1}, &testScene{})

	fmt.Println("After one frame:")
	for id, transform := range ecs.Each[Transform](w) {
		hp, _ := ecs.Get[Hitpoints](w, id)
		fmt.Printf("Position: (%.0f, %.0f), Health: %d/%d\n",
			transform.X, transform.Y, hp.Current, hp.Max)
	}

	// Output:
	// After one frame:
	// Position: (10, 5), Health: 90/100
	// Position: (95, 95), Health: 60/100
}

// ExamplePipeline_Run demonstrates running a continuous loop. Run blocks and
// executes frames at a fixed interval until the context is cancelled.
func ExamplePipeline_Run() {
	w := ecs.NewWorld()
	ecs.Register[Transform](w)
	ecs.Register[Speed](w)

	e, _ := w.Create()
	ecs.Insert(w, e, Transform{X: 0, Y: 0})
	ecs.Insert(w, e, Speed{DX: 1, DY: 1})

	pipeline := ecs.NewPipeline[*testApp, *testScene](w)
	pipeline.Register(ecs.StageUpdate, &PhysicsSystem{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	pipeline.Run(ctx, 10*time.Millisecond, &testApp{DeltaTime: 1}, &testScene{})

	transform, _ := ecs.Get[Transform](w, e)
	fmt.Println("Entity moved:", transform.X > 0)

	// Output:
	// Entity moved: true
}

// Announcer greets every other system once, then goes quiet.
type Announcer struct {
	done bool
}

func (s *Announcer) Update(app *testApp, scene *testScene, w *ecs.World) error {
	if !s.done {
		w.Broadcast(Tick{})
		s.done = true
	}
	return nil
}

type Listener struct {
	Name string
}

func (s *Listener) Update(app *testApp, scene *testScene, w *ecs.World) error {
	for {
		msg, ok := w.Poll()
		if !ok {
			return nil
		}
		fmt.Printf("%s received %s in frame %d\n", s.Name, msg.MessageName(), w.Frame().Index)
	}
}

// ExampleWorld_Broadcast shows that a broadcast reaches the systems that
// run after the sender in the same frame. Messages nobody polled are
// dropped when the frame ends.
func ExampleWorld_Broadcast() {
	w := ecs.NewWorld()

	pipeline := ecs.NewPipeline[*testApp, *testScene](w)
	pipeline.Register(ecs.StageInput, &Listener{Name: "input"})
	pipeline.Register(ecs.StageUpdate, &Announcer{})
	pipeline.Register(ecs.StageRender, &ListenerLate{Listener{Name: "render"}})

	for range 2 {
		pipeline.RunFrame(&testApp{}, &testScene{})
		input, _ := ecs.SystemIdOf[*Listener](w)
		fmt.Println("input pending after frame:", w.Messages().Pending(input))
	}

	// Output:
	// render received Tick in frame 0
	// input pending after frame: 0
	// input pending after frame: 0
}

type ListenerLate struct {
	Listener
}
