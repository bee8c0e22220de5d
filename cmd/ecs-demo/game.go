package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/plus3/ecsframe/ecs"
	"github.com/plus3/ecsframe/ecs/debugui"
	debugui_ebiten "github.com/plus3/ecsframe/ecs/debugui/ebiten"
)

// Game implements ebiten.Game. Update runs the simulation stages and Draw
// runs the render stages, so each pipeline frame spans one Update and the
// Draw that follows it.
type Game struct {
	world    *ecs.World
	pipeline *ecs.Pipeline[*Game, *demoScene]
	scene    *demoScene
	imgui    *debugui_ebiten.ImguiBackend
	overlay  *debugui.ImguiSystem[*Game, *demoScene]
	log      *zap.Logger

	screen        *ebiten.Image
	width, height int

	// updated is set once the simulation half of a frame has run and
	// cleared when Draw completes it.
	updated bool
	err     error
}

func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.updated {
		return nil
	}

	if err := g.pipeline.RunStages(g, g.scene, ecs.StageInitialization, ecs.StagePostUpdate); err != nil {
		return err
	}
	g.updated = true
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if !g.updated {
		return
	}
	g.screen = screen
	defer func() { g.screen = nil }()

	err := g.imgui.Frame(func() error {
		return g.pipeline.RunStages(g, g.scene, ecs.StageRender, ecs.StageFrameEnd)
	})
	g.updated = false
	if err != nil {
		g.log.Error("render failed", zap.Error(err))
		g.err = err
		return
	}

	g.imgui.Overlay(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.imgui.Layout(outsideWidth, outsideHeight)
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
