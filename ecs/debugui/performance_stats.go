package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ecsframe/ecs"
)

// NewPerformanceStats creates the stats window. pipeline may be nil when
// the host does not expose its pipeline.
func NewPerformanceStats(historyFrames int, pipeline func() *ecs.PipelineStats) *PerformanceStats {
	if historyFrames <= 0 {
		historyFrames = 120
	}
	return &PerformanceStats{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
		frameIndex:    0,
		pipeline:      pipeline,
	}
}

// Record adds one frame time sample in seconds.
func (ps *PerformanceStats) Record(deltaTime float32) {
	ps.frameHistory[ps.frameIndex] = deltaTime * 1000.0
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// AverageFrameTime returns the mean of the recorded samples in milliseconds.
func (ps *PerformanceStats) AverageFrameTime() float32 {
	var avgFrameTime float32
	for _, ft := range ps.frameHistory {
		avgFrameTime += ft
	}
	return avgFrameTime / float32(ps.historyFrames)
}

// Render draws the performance window for w. deltaTime is recorded only
// while the window is open.
func (ps *PerformanceStats) Render(w *ecs.World, deltaTime float32) {
	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ps.Record(deltaTime)
	stats := w.CollectStats()

	imgui.Text(fmt.Sprintf("Frame: %d (%s)", stats.Frame, w.Frame().Stage))
	imgui.Text(fmt.Sprintf("Live Entities: %d / %d slots", stats.LiveEntities, stats.EntitySlots))
	imgui.Text(fmt.Sprintf("Component Rows: %d in %d stores", stats.TotalComponents, stats.StoreCount))
	imgui.Text(fmt.Sprintf("Pending Messages: %d", stats.PendingMessages))
	imgui.Text(fmt.Sprintf("Queued Commands: %d", stats.QueuedCommands))

	avgFrameTime := ps.AverageFrameTime()
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if imgui.TreeNodeStr("Component Stores") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StoreStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Id")
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Rows")
			imgui.TableHeadersRow()

			for _, store := range stats.Stores {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", store.Id))
				imgui.TableNextColumn()
				imgui.Text(store.Name)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", store.Len))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Mailboxes") {
		for _, box := range stats.Mailboxes {
			imgui.BulletText(fmt.Sprintf("%s: %d pending", box.Name, box.Pending))
		}
		imgui.TreePop()
	}

	if ps.pipeline != nil && imgui.TreeNodeStr("Systems") {
		ps.renderSystems(ps.pipeline())
		imgui.TreePop()
	}

	imgui.End()
}

func (ps *PerformanceStats) renderSystems(stats *ecs.PipelineStats) {
	imgui.Text(fmt.Sprintf("Frames: %d  Executions: %d  Failed Commands: %d",
		stats.Frames, stats.TotalExecutions, stats.FailedCommands))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Stage")
	imgui.TableSetupColumn("Runs")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(sys.Stage.String())
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}

	imgui.EndTable()
}

// FrameTimer measures the wall time between successive calls.
type FrameTimer struct {
	lastFrameTime time.Time
}

// NewFrameTimer starts a timer at the current time.
func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

// GetDeltaTime returns the seconds since the previous call and resets the timer.
func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
