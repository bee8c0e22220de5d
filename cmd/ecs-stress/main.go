package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/plus3/ecsframe/ecs"
	"github.com/plus3/ecsframe/internal/config"
	"github.com/plus3/ecsframe/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ecs-stress: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to a .toml or .yaml config file.")
	duration := flag.Duration("duration", 0, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 0, "The target number of live entities.")
	flushPolicy := flag.String("flush", "", "Command flush policy: stage or frame.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			cfg.Stress.Duration = *duration
		case "entities":
			cfg.Stress.Entities = *entityCount
		case "flush":
			cfg.Pipeline.FlushPolicy = *flushPolicy
		case "gc-pause-metrics":
			cfg.Stress.GCPauseMetrics = *gcPauseMetrics
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := cfg.Pipeline.Policy()
	if err != nil {
		return err
	}

	runID := uuid.New()
	baseLog, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer baseLog.Sync()
	log := baseLog.With(zap.String("run", runID.String()))

	log.Info("starting ECS stress test",
		zap.Duration("duration", cfg.Stress.Duration),
		zap.Int("entities", cfg.Stress.Entities),
		zap.Stringer("flush", policy),
	)

	world := ecs.NewWorld(ecs.WithLogger(log))
	if err := registerComponents(world); err != nil {
		return err
	}
	pipeline := ecs.NewPipeline[*stressApp, *tally](world,
		ecs.WithFlushPolicy(policy),
		ecs.WithPipelineLogger(log.Named("pipeline")),
	)
	if err := registerSystems(pipeline); err != nil {
		return err
	}

	app := &stressApp{
		rng: rand.New(rand.NewPCG(cfg.Stress.Seed, cfg.Stress.Seed^0x9e3779b97f4a7c15)),
		cfg: cfg.Stress,
	}
	scene := &tally{}

	log.Info("populating world", zap.Int("entities", cfg.Stress.Entities))
	if err := populate(world, app, cfg.Stress.Entities); err != nil {
		return err
	}

	report := &Report{
		RunID:          runID,
		Duration:       cfg.Stress.Duration,
		Entities:       cfg.Stress.Entities,
		FlushPolicy:    policy,
		GCPauseMetrics: cfg.Stress.GCPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0, 1024),
		},
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Stress.Duration)
	defer cancel()

	var ticker *time.Ticker
	if cfg.Pipeline.TickRate > 0 {
		ticker = time.NewTicker(cfg.Pipeline.TickRate)
		defer ticker.Stop()
	}

	startTime := time.Now()
	lastFrameTime := startTime
	var frameErr error

Loop:
	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break Loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break Loop
		}

		app.deltaTime = float32(time.Since(lastFrameTime).Seconds())
		lastFrameTime = time.Now()

		updateStart := time.Now()
		frameErr = pipeline.RunFrame(app, scene)
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		if frameErr != nil {
			log.Error("frame failed", zap.Error(frameErr))
			break
		}
	}

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Pipeline = pipeline.Stats()
	report.World = world.CollectStats()
	report.Tally = *scene

	log.Info("simulation finished",
		zap.Uint64("frames", report.Pipeline.Frames),
		zap.Int("live", report.World.LiveEntities),
	)

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	fmt.Println("--- End of Report ---")

	return frameErr
}
