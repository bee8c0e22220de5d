package ecs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// FlushPolicy selects when the command queue is drained.
type FlushPolicy int

const (
	// FlushPerStage drains the queue after every stage.
	FlushPerStage FlushPolicy = iota
	// FlushPerFrame drains the queue once, after the last stage of a run.
	FlushPerFrame
)

func (p FlushPolicy) String() string {
	switch p {
	case FlushPerStage:
		return "stage"
	case FlushPerFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// PipelineStats provides statistics about pipeline execution.
type PipelineStats struct {
	SystemCount     int
	Frames          uint64
	TotalExecutions int64
	FailedCommands  int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Id             SystemId
	Name           string
	Stage          Stage
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

type systemEntry[A, S any] struct {
	id     SystemId
	name   string
	stage  Stage
	system System[A, S]
	stats  systemStatsInternal
}

type pipelineConfig struct {
	flush FlushPolicy
	log   *zap.Logger
}

// PipelineOption configures a Pipeline at construction.
type PipelineOption func(*pipelineConfig)

// WithFlushPolicy selects when queued commands are applied.
func WithFlushPolicy(policy FlushPolicy) PipelineOption {
	return func(c *pipelineConfig) {
		c.flush = policy
	}
}

// WithPipelineLogger sets the logger for frame and system diagnostics. By
// default the World's logger is used.
func WithPipelineLogger(log *zap.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Pipeline runs systems stage by stage against a World. Stages run in their
// fixed order and systems within a stage in registration order, each exactly
// once per frame.
type Pipeline[A, S any] struct {
	world          *World
	stages         [stageCount][]*systemEntry[A, S]
	order          []*systemEntry[A, S]
	flush          FlushPolicy
	log            *zap.Logger
	frames         uint64
	failedCommands int64
}

// NewPipeline creates a pipeline with no registered systems.
func NewPipeline[A, S any](world *World, opts ...PipelineOption) *Pipeline[A, S] {
	cfg := pipelineConfig{
		flush: FlushPerStage,
		log:   world.log,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Pipeline[A, S]{
		world: world,
		flush: cfg.flush,
		log:   cfg.log,
	}
}

// World returns the World this pipeline drives.
func (p *Pipeline[A, S]) World() *World {
	return p.world
}

// Register appends system to stage and opens its mailbox. A system type can
// be registered only once.
func (p *Pipeline[A, S]) Register(stage Stage, system System[A, S]) (SystemId, error) {
	if !stage.Valid() {
		return NoSystem, fmt.Errorf("ecs: register into unknown stage %s", stage)
	}
	if system == nil {
		return NoSystem, fmt.Errorf("ecs: register nil system into stage %s", stage)
	}

	systemType := reflect.TypeOf(system)
	id, err := p.world.registerSystem(systemType)
	if err != nil {
		return NoSystem, err
	}

	entry := &systemEntry[A, S]{
		id:     id,
		name:   systemName(systemType),
		stage:  stage,
		system: system,
		stats: systemStatsInternal{
			minDuration: time.Duration(1<<63 - 1),
		},
	}
	p.stages[stage] = append(p.stages[stage], entry)
	p.order = append(p.order, entry)

	p.log.Debug("system registered",
		zap.String("system", entry.name),
		zap.Stringer("stage", stage),
		zap.Uint32("id", uint32(id)),
	)
	return id, nil
}

// RunFrame executes every stage once.
func (p *Pipeline[A, S]) RunFrame(app A, scene S) error {
	return p.RunStages(app, scene, StageInitialization, StageFrameEnd)
}

// RunStages executes the stages from first to last inclusive. Hosts that
// split their loop between update and draw callbacks run a prefix of the
// stages in one and the rest in the other; the frame counter advances when
// a run reaches StageFrameEnd, which also clears every mailbox.
//
// The first system error aborts the remaining systems. Commands already
// queued are still applied before the error is returned.
func (p *Pipeline[A, S]) RunStages(app A, scene S, first, last Stage) error {
	w := p.world
	w.frame.Index = p.frames

	var runErr error
	for stage := first; stage <= last && stage.Valid(); stage++ {
		runErr = p.runStage(stage, app, scene)
		if runErr != nil || p.flush == FlushPerStage {
			p.flushCommands()
		}
		if runErr != nil {
			break
		}
	}

	if runErr == nil && p.flush == FlushPerFrame {
		p.flushCommands()
	}
	if runErr == nil && last >= StageFrameEnd {
		p.endFrame()
	}
	return runErr
}

// endFrame drops messages nobody polled and advances the frame counter.
func (p *Pipeline[A, S]) endFrame() {
	if dropped := p.world.bus.Clear(); dropped > 0 {
		p.log.Debug("unpolled messages dropped",
			zap.Uint64("frame", p.frames),
			zap.Int("messages", dropped),
		)
	}
	p.frames++
}

func (p *Pipeline[A, S]) runStage(stage Stage, app A, scene S) error {
	w := p.world
	w.frame.Stage = stage
	w.frame.running = true
	defer func() {
		w.frame.running = false
		w.frame.System = NoSystem
	}()

	for _, entry := range p.stages[stage] {
		w.frame.System = entry.id

		start := time.Now()
		err := entry.system.Update(app, scene, w)
		entry.stats.record(time.Since(start))

		if err != nil {
			p.log.Error("system failed",
				zap.Uint64("frame", w.frame.Index),
				zap.Stringer("stage", stage),
				zap.String("system", entry.name),
				zap.Error(err),
			)
			return &SystemError{Stage: stage, System: entry.name, Err: err}
		}
	}
	return nil
}

func (p *Pipeline[A, S]) flushCommands() {
	if err := p.world.Flush(); err != nil {
		p.failedCommands += int64(len(multierr.Errors(err)))
	}
}

// Run executes frames at the given interval until the context is cancelled
// or a frame fails.
func (p *Pipeline[A, S]) Run(ctx context.Context, interval time.Duration, app A, scene S) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.RunFrame(app, scene); err != nil {
				return err
			}
		}
	}
}

func (s *systemStatsInternal) record(duration time.Duration) {
	s.executionCount++
	s.lastDuration = duration
	s.totalDuration += duration

	if duration < s.minDuration {
		s.minDuration = duration
	}
	if duration > s.maxDuration {
		s.maxDuration = duration
	}
}

// Stats returns statistics about system execution, in registration order.
func (p *Pipeline[A, S]) Stats() *PipelineStats {
	stats := &PipelineStats{
		SystemCount:    len(p.order),
		Frames:         p.frames,
		FailedCommands: p.failedCommands,
		Systems:        make([]SystemStats, len(p.order)),
	}

	var totalExecs int64
	for i, entry := range p.order {
		internal := entry.stats
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Id:             entry.id,
			Name:           entry.name,
			Stage:          entry.stage,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
