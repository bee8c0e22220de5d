package main

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/ecsframe/ecs"
	"github.com/plus3/ecsframe/ecs/debugui"
)

const (
	playerSpeed   = 240
	burstSize     = 24
	particleLife  = 90
	particleSpeed = 180
)

type Position struct {
	X, Y float32
}

type Velocity struct {
	DX, DY float32
}

// Lifetime counts down once per frame; the entity is killed at zero.
type Lifetime struct {
	Remaining int
}

type Tint struct {
	Color color.RGBA
	Size  float32
}

// Player marks the entity steered with the arrow keys.
type Player struct{}

// Burst asks for a ring of particles at a point.
type Burst struct {
	X, Y float32
}

func (Burst) MessageName() string { return "Burst" }

// demoScene is the scene state shared by the demo systems.
type demoScene struct {
	player    ecs.EntityId
	bursts    int
	particles int
}

func registerComponents(w *ecs.World) error {
	for _, register := range []func(*ecs.World) (ecs.ComponentId, error){
		ecs.Register[Position],
		ecs.Register[Velocity],
		ecs.Register[Lifetime],
		ecs.Register[Tint],
		ecs.Register[Player],
	} {
		if _, err := register(w); err != nil {
			return err
		}
	}
	return debugui.RegisterDebugUIComponents(w)
}

// inputSystem steers the player and turns clicks and space into bursts.
// Input ImGui is capturing is ignored.
type inputSystem struct{}

func (s *inputSystem) Update(g *Game, scene *demoScene, w *ecs.World) error {
	capture := g.overlay.Input

	if !capture.WantCaptureKeyboard {
		vel, err := ecs.GetMut[Velocity](w, scene.player)
		if err != nil {
			return err
		}
		vel.DX, vel.DY = 0, 0
		if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			vel.DX -= playerSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			vel.DX += playerSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			vel.DY -= playerSpeed
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			vel.DY += playerSpeed
		}

		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			pos, err := ecs.Get[Position](w, scene.player)
			if err != nil {
				return err
			}
			w.Broadcast(Burst{X: pos.X, Y: pos.Y})
		}
	}

	if !capture.WantCaptureMouse && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		w.Broadcast(Burst{X: float32(mx), Y: float32(my)})
	}
	return nil
}

// burstSystem creates particles for every Burst in its mailbox.
type burstSystem struct {
	rng *rand.Rand
}

func (s *burstSystem) Update(g *Game, scene *demoScene, w *ecs.World) error {
	for {
		msg, ok := w.Poll()
		if !ok {
			return nil
		}
		burst, ok := msg.(Burst)
		if !ok {
			continue
		}

		scene.bursts++
		for i := 0; i < burstSize; i++ {
			angle := 2 * math.Pi * float64(i) / burstSize
			speed := particleSpeed * (0.5 + s.rng.Float64())
			w.Commands().Create(nil,
				ecs.With(Position{X: burst.X, Y: burst.Y}),
				ecs.With(Velocity{DX: float32(math.Cos(angle) * speed), DY: float32(math.Sin(angle) * speed)}),
				ecs.With(Lifetime{Remaining: particleLife/2 + s.rng.IntN(particleLife)}),
				ecs.With(Tint{Color: color.RGBA{R: 255, G: uint8(120 + s.rng.IntN(120)), B: 64, A: 255}, Size: 3}),
			)
		}
	}
}

type movementSystem struct{}

func (s *movementSystem) Update(g *Game, scene *demoScene, w *ecs.World) error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	width, height := float32(g.width), float32(g.height)

	for id, pos := range ecs.Each[Position](w) {
		vel, err := ecs.GetMut[Velocity](w, id)
		if err != nil {
			continue
		}
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt

		if ecs.Has[Player](w, id) {
			pos.X = min(max(pos.X, 0), width)
			pos.Y = min(max(pos.Y, 0), height)
		}
	}
	return nil
}

// lifetimeSystem kills expired particles and anything that left the screen.
type lifetimeSystem struct{}

func (s *lifetimeSystem) Update(g *Game, scene *demoScene, w *ecs.World) error {
	live := 0
	for id, life := range ecs.Each[Lifetime](w) {
		life.Remaining--
		pos, err := ecs.Get[Position](w, id)
		offscreen := err == nil && (pos.X < 0 || pos.Y < 0 || pos.X > float32(g.width) || pos.Y > float32(g.height))
		if life.Remaining <= 0 || offscreen {
			w.Commands().Kill(id)
			continue
		}
		live++
	}
	scene.particles = live
	return nil
}

type renderSystem struct{}

func (s *renderSystem) Update(g *Game, scene *demoScene, w *ecs.World) error {
	screen := g.screen
	if screen == nil {
		return nil
	}
	screen.Fill(color.RGBA{R: 24, G: 26, B: 32, A: 255})

	for id, tint := range ecs.Each[Tint](w) {
		pos, err := ecs.Get[Position](w, id)
		if err != nil {
			continue
		}
		half := tint.Size / 2
		vector.DrawFilledRect(screen, pos.X-half, pos.Y-half, tint.Size, tint.Size, tint.Color, false)
	}
	return nil
}

func registerSystems(p *ecs.Pipeline[*Game, *demoScene], overlay *debugui.ImguiSystem[*Game, *demoScene], seed uint64) error {
	systems := []struct {
		stage  ecs.Stage
		system ecs.System[*Game, *demoScene]
	}{
		{ecs.StageInput, &inputSystem{}},
		{ecs.StagePreUpdate, &burstSystem{rng: rand.New(rand.NewPCG(seed, seed+1))}},
		{ecs.StageUpdate, &movementSystem{}},
		{ecs.StagePostUpdate, &lifetimeSystem{}},
		{ecs.StageRender, &renderSystem{}},
		{ecs.StageRenderOverlay, overlay},
	}
	for _, s := range systems {
		if _, err := p.Register(s.stage, s.system); err != nil {
			return err
		}
	}
	return nil
}

func spawnPlayer(w *ecs.World, x, y float32) (ecs.EntityId, error) {
	id, err := w.Create()
	if err != nil {
		return 0, err
	}
	for _, insert := range []error{
		ecs.Insert(w, id, Position{X: x, Y: y}),
		ecs.Insert(w, id, Velocity{}),
		ecs.Insert(w, id, Tint{Color: color.RGBA{R: 90, G: 200, B: 255, A: 255}, Size: 12}),
		ecs.Insert(w, id, Player{}),
	} {
		if insert != nil {
			return 0, insert
		}
	}
	return id, nil
}
