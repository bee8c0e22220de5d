package debugui

import (
	"github.com/plus3/ecsframe/ecs"
)

// EntityBrowser is the state of the entity list window.
type EntityBrowser struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	hasSelection       bool
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

// ComponentInspector is the state of the window that edits the selected
// entity's components.
type ComponentInspector struct {
	selectedEntityId ecs.EntityId
}

// PerformanceStats is the state of the frame time and pipeline window.
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	pipeline      func() *ecs.PipelineStats
}
