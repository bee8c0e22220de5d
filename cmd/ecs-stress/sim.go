package main

import (
	"math/rand/v2"

	"github.com/plus3/ecsframe/ecs"
	"github.com/plus3/ecsframe/internal/config"
)

const arenaSize = 1000

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

type Health struct {
	Current, Max int
}

// Lifetime counts down once per frame; the entity is killed at zero.
type Lifetime struct {
	Remaining int
}

// Expired is sent to the tally when an entity dies.
type Expired struct {
	Entity ecs.EntityId
	Cause  string
}

func (Expired) MessageName() string { return "Expired" }

// Census reports the live population to the spawner once the frame's kills
// have been applied.
type Census struct {
	Live int
}

func (Census) MessageName() string { return "Census" }

// stressApp is the application handle passed to every system.
type stressApp struct {
	rng       *rand.Rand
	cfg       config.StressConfig
	deltaTime float32
}

// tally is the scene state: counters the report reads after the run.
type tally struct {
	Spawned      int64
	Expired      int64
	Killed       int64
	CensusPeak   int
	MessagesSeen int64
}

func registerComponents(w *ecs.World) error {
	if _, err := ecs.Register[Position](w); err != nil {
		return err
	}
	if _, err := ecs.Register[Velocity](w); err != nil {
		return err
	}
	if _, err := ecs.Register[Health](w); err != nil {
		return err
	}
	if _, err := ecs.Register[Lifetime](w); err != nil {
		return err
	}
	return nil
}

func registerSystems(p *ecs.Pipeline[*stressApp, *tally]) error {
	systems := []struct {
		stage  ecs.Stage
		system ecs.System[*stressApp, *tally]
	}{
		{ecs.StageUpdate, &movementSystem{}},
		{ecs.StageUpdate, &decaySystem{}},
		{ecs.StagePostUpdate, &tallySystem{}},
		{ecs.StagePostUpdate, &censusSystem{}},
		{ecs.StageFrameEnd, &spawnerSystem{}},
	}
	for _, s := range systems {
		if _, err := p.Register(s.stage, s.system); err != nil {
			return err
		}
	}
	return nil
}

// populate creates the initial entities outside any frame. Every entity has
// a Position; the other components are added at random.
func populate(w *ecs.World, app *stressApp, count int) error {
	for i := 0; i < count; i++ {
		id, err := w.Create()
		if err != nil {
			return err
		}
		if err := ecs.Insert(w, id, randomPosition(app.rng)); err != nil {
			return err
		}
		if app.rng.IntN(4) > 0 {
			if err := ecs.Insert(w, id, randomVelocity(app.rng)); err != nil {
				return err
			}
		}
		if app.rng.IntN(2) == 0 {
			if err := ecs.Insert(w, id, Health{Current: 100, Max: 100}); err != nil {
				return err
			}
		}
		if app.rng.IntN(2) == 0 {
			if err := ecs.Insert(w, id, Lifetime{Remaining: 1 + app.rng.IntN(app.cfg.MaxLifetime)}); err != nil {
				return err
			}
		}
	}
	return nil
}

func randomPosition(rng *rand.Rand) Position {
	return Position{X: rng.Float32() * arenaSize, Y: rng.Float32() * arenaSize}
}

func randomVelocity(rng *rand.Rand) Velocity {
	return Velocity{DX: rng.Float32()*200 - 100, DY: rng.Float32()*200 - 100}
}

// spawnerSystem keeps the population near the configured size by creating
// up to SpawnPerFrame entities whenever this frame's census was below target.
type spawnerSystem struct {
	lastCensus int
}

func (s *spawnerSystem) Update(app *stressApp, scene *tally, w *ecs.World) error {
	for {
		msg, ok := w.Poll()
		if !ok {
			break
		}
		if census, ok := msg.(Census); ok {
			s.lastCensus = census.Live
		}
	}

	deficit := min(app.cfg.Entities-s.lastCensus, app.cfg.SpawnPerFrame)
	for i := 0; i < deficit; i++ {
		w.Commands().Create(nil,
			ecs.With(randomPosition(app.rng)),
			ecs.With(randomVelocity(app.rng)),
			ecs.With(Health{Current: 100, Max: 100}),
			ecs.With(Lifetime{Remaining: 1 + app.rng.IntN(app.cfg.MaxLifetime)}),
		)
		scene.Spawned++
	}
	s.lastCensus += max(deficit, 0)
	return nil
}

type movementSystem struct{}

func (movementSystem) step(pos *Position, vel *Velocity, dt float32) {
	pos.X += vel.DX * dt
	pos.Y += vel.DY * dt
	if pos.X < 0 || pos.X > arenaSize {
		vel.DX = -vel.DX
		pos.X = min(max(pos.X, 0), arenaSize)
	}
	if pos.Y < 0 || pos.Y > arenaSize {
		vel.DY = -vel.DY
		pos.Y = min(max(pos.Y, 0), arenaSize)
	}
}

func (s *movementSystem) Update(app *stressApp, scene *tally, w *ecs.World) error {
	velocities, err := ecs.StoreOf[Velocity](w.Storage())
	if err != nil {
		return err
	}
	for id, pos := range ecs.Each[Position](w) {
		vel, err := velocities.GetMut(id)
		if err != nil {
			continue
		}
		s.step(pos, vel, app.deltaTime)
	}
	return nil
}

// decaySystem ages lifetimes, applies random damage and kills whatever ran
// out. Deaths are reported to the tally.
type decaySystem struct{}

func (s *decaySystem) Update(app *stressApp, scene *tally, w *ecs.World) error {
	for id, life := range ecs.Each[Lifetime](w) {
		life.Remaining--
		if life.Remaining > 0 {
			continue
		}
		w.Commands().Kill(id)
		if err := ecs.SendTo[*tallySystem](w, Expired{Entity: id, Cause: "lifetime"}); err != nil {
			return err
		}
	}

	for id, health := range ecs.Each[Health](w) {
		if ecs.Has[Lifetime](w, id) {
			if life, _ := ecs.Get[Lifetime](w, id); life.Remaining <= 0 {
				continue
			}
		}
		if app.rng.IntN(100) != 0 {
			continue
		}
		health.Current -= 10 + app.rng.IntN(40)
		if health.Current > 0 {
			continue
		}
		w.Commands().Kill(id)
		if err := ecs.SendTo[*tallySystem](w, Expired{Entity: id, Cause: "damage"}); err != nil {
			return err
		}
	}
	return nil
}

type tallySystem struct{}

func (s *tallySystem) Update(app *stressApp, scene *tally, w *ecs.World) error {
	for {
		msg, ok := w.Poll()
		if !ok {
			return nil
		}
		scene.MessagesSeen++
		if expired, ok := msg.(Expired); ok {
			if expired.Cause == "lifetime" {
				scene.Expired++
			} else {
				scene.Killed++
			}
		}
	}
}

type censusSystem struct{}

func (s *censusSystem) Update(app *stressApp, scene *tally, w *ecs.World) error {
	live := w.Entities().Count()
	scene.CensusPeak = max(scene.CensusPeak, live)
	return ecs.SendTo[*spawnerSystem](w, Census{Live: live})
}
