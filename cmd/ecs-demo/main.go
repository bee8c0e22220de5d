package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/plus3/ecsframe/ecs"
	"github.com/plus3/ecsframe/ecs/debugui"
	debugui_ebiten "github.com/plus3/ecsframe/ecs/debugui/ebiten"
	"github.com/plus3/ecsframe/internal/config"
	"github.com/plus3/ecsframe/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a .toml or .yaml config file.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	policy, err := cfg.Pipeline.Policy()
	if err != nil {
		return err
	}

	baseLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer baseLog.Sync()
	log := baseLog.With(zap.String("session", uuid.NewString()))

	imguiBackend := debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	world := ecs.NewWorld(ecs.WithLogger(log))
	if err := registerComponents(world); err != nil {
		return err
	}

	pipeline := ecs.NewPipeline[*Game, *demoScene](world, ecs.WithFlushPolicy(policy))
	overlay := &debugui.ImguiSystem[*Game, *demoScene]{}
	if err := registerSystems(pipeline, overlay, cfg.Stress.Seed); err != nil {
		return err
	}

	player, err := spawnPlayer(world, float32(cfg.Window.Width)/2, float32(cfg.Window.Height)/2)
	if err != nil {
		return err
	}
	if _, err := debugui.SpawnDebugUI(world, pipeline.Stats); err != nil {
		return err
	}

	game := &Game{
		world:    world,
		pipeline: pipeline,
		scene:    &demoScene{player: player},
		imgui:    imguiBackend,
		overlay:  overlay,
		log:      log,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
	}

	log.Info("demo started", zap.Int("width", cfg.Window.Width), zap.Int("height", cfg.Window.Height))
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	log.Info("demo stopped", zap.Uint64("frames", pipeline.Stats().Frames))
	return nil
}
