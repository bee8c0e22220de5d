package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/plus3/ecsframe/ecs"
)

// Report collects the configuration and results of one stress run.
type Report struct {
	// Configuration
	RunID          uuid.UUID
	Duration       time.Duration
	Entities       int
	FlushPolicy    ecs.FlushPolicy
	GCPauseMetrics bool

	// Results
	TotalTime     time.Duration
	UpdateTime    Stats
	Pipeline      *ecs.PipelineStats
	World         *ecs.WorldStats
	Tally         tally
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

// Stats summarizes a series of frame durations.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

// Finalize computes Min, Max and Avg from Samples.
func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# ECS Stress Test Report

## Test Configuration
- **Run ID:** {{.RunID}}
- **Run Duration:** {{.Duration}}
- **Target Entities:** {{.Entities}}
- **Flush Policy:** {{.FlushPolicy}}

## Performance Results
- **Frames:** {{.Pipeline.Frames}}
- **System Executions:** {{.Pipeline.TotalExecutions}}
- **Failed Commands:** {{.Pipeline.FailedCommands}}
- **Total Test Time:** {{.TotalTime}}
- **Update Time (Frame):**
  - **Avg:** {{.UpdateTime.Avg}}
  - **Min:** {{.UpdateTime.Min}}
  - **Max:** {{.UpdateTime.Max}}

## Systems
| System | Stage | Runs | Avg | Min | Max |
|--------|-------|------|-----|-----|-----|
{{- range .Pipeline.Systems}}
| {{.Name}} | {{.Stage}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MinDuration}} | {{.MaxDuration}} |
{{- end}}

## World
- **Live Entities:** {{.World.LiveEntities}} of {{.World.EntitySlots}} slots
- **Component Rows:** {{.World.TotalComponents}}
{{- range .World.Stores}}
  - {{.Name}}: {{.Len}}
{{- end}}
- **Pending Messages:** {{.World.PendingMessages}}
- **Spawned:** {{.Tally.Spawned}}
- **Expired:** {{.Tally.Expired}}
- **Killed:** {{.Tally.Killed}}
- **Peak Population:** {{.Tally.CensusPeak}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}} bytes
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Sys Memory:     {{.MemStatsStart.Sys}} (start) -> {{.MemStatsEnd.Sys}} (end) -> delta: {{bsub .MemStatsEnd.Sys .MemStatsStart.Sys}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{ns .MemStatsEnd.PauseTotalNs}}
- **Num GC Cycles:** {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v any) string {
		switch val := v.(type) {
		case uint64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		case int64:
			return fmt.Sprintf("%.2f", float64(val)/1024/1024)
		default:
			return "N/A"
		}
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

// Generate writes the report as markdown.
func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
