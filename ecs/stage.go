package ecs

import "fmt"

// Stage is a named group of systems. Stages run once per frame in the fixed
// order of their values.
type Stage int

const (
	StageInitialization Stage = iota // frame setup, lifecycle messages
	StageInput                       // host input polling
	StagePreUpdate
	StageUpdate // domain logic
	StagePostUpdate
	StageRender
	StageRenderOverlay // UI and debug overlays drawn over the scene
	StageFrameEnd      // bookkeeping before the next frame

	stageCount
)

var stageNames = [stageCount]string{
	StageInitialization: "Initialization",
	StageInput:          "Input",
	StagePreUpdate:      "PreUpdate",
	StageUpdate:         "Update",
	StagePostUpdate:     "PostUpdate",
	StageRender:         "Render",
	StageRenderOverlay:  "RenderOverlay",
	StageFrameEnd:       "FrameEnd",
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	stages := make([]Stage, 0, stageCount)
	for s := StageInitialization; s < stageCount; s++ {
		stages = append(stages, s)
	}
	return stages
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	return s >= StageInitialization && s < stageCount
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage converts a stage name as produced by String back to a Stage.
func ParseStage(name string) (Stage, error) {
	for s, n := range stageNames {
		if n == name {
			return Stage(s), nil
		}
	}
	return 0, fmt.Errorf("ecs: unknown stage %q", name)
}
