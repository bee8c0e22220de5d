package debugui

import (
	"errors"

	"github.com/plus3/ecsframe/ecs"
)

// RegisterDebugUIComponents registers the ImguiItem store. Registering it
// twice is not an error.
func RegisterDebugUIComponents(w *ecs.World) error {
	if _, err := ecs.Register[ImguiItem](w); err != nil && !errors.Is(err, ecs.ErrDuplicateRegistration) {
		return err
	}
	return nil
}

// DebugUI bundles the standard inspector windows.
type DebugUI struct {
	Browser     *EntityBrowser
	Inspector   *ComponentInspector
	Performance *PerformanceStats
	Timer       *FrameTimer
}

// SpawnDebugUI creates one entity per inspector window. pipeline feeds the
// system table and may be nil. It must be called outside a running stage.
func SpawnDebugUI(w *ecs.World, pipeline func() *ecs.PipelineStats) (*DebugUI, error) {
	if err := RegisterDebugUIComponents(w); err != nil {
		return nil, err
	}

	ui := &DebugUI{
		Browser:     NewEntityBrowser(100),
		Inspector:   NewComponentInspector(),
		Performance: NewPerformanceStats(120, pipeline),
		Timer:       NewFrameTimer(),
	}

	items := []ImguiItem{
		{Render: ui.Browser.Render},
		{Render: func(w *ecs.World) {
			id, ok := ui.Browser.GetSelectedEntity()
			ui.Inspector.Render(w, id, ok)
		}},
		{Render: func(w *ecs.World) {
			ui.Performance.Render(w, ui.Timer.GetDeltaTime())
		}},
	}
	for _, item := range items {
		id, err := w.Create()
		if err != nil {
			return nil, err
		}
		if err := ecs.Insert(w, id, item); err != nil {
			return nil, err
		}
	}
	return ui, nil
}
