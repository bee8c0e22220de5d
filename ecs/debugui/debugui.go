// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Windows are attached to entities as ImguiItem components and drawn by ImguiSystem once per frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/ecsframe/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	Render func(w *ecs.World)
}

// ImguiInputState tracks Dear ImGui's input capture state.
// Use this to determine if ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem defers the render function of every ImguiItem. Register it in
// StageRenderOverlay; the functions run when that stage's commands are
// applied, after every other system has finished with the World.
type ImguiSystem[A, S any] struct {
	Input ImguiInputState
}

// Update records the input capture state and queues all render functions.
func (i *ImguiSystem[A, S]) Update(app A, scene S, w *ecs.World) error {
	io := imgui.CurrentIO()
	i.Input.WantCaptureMouse = io.WantCaptureMouse()
	i.Input.WantCaptureKeyboard = io.WantCaptureKeyboard()

	queueRenders(w)
	return nil
}

func queueRenders(w *ecs.World) int {
	queued := 0
	for _, item := range ecs.Each[ImguiItem](w) {
		render := item.Render
		if render == nil {
			continue
		}
		w.Commands().Defer(func(w *ecs.World) error {
			render(w)
			return nil
		})
		queued++
	}
	return queued
}
