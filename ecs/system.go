package ecs

// System is a unit of per-stage logic. A is the host's application handle
// (input, rendering and audio calls) and S the scene state; both are opaque
// to the runtime and passed through unchanged. Systems may keep their own
// state in their struct fields, which persists between frames.
//
// A system's identity is its concrete type: each type may be registered once
// per World, and message recipients are named by type.
type System[A, S any] interface {
	Update(app A, scene S, w *World) error
}
