package ecs

// Frame is the execution cursor of the World: which frame is running, the
// stage being executed and the system currently holding the World.
type Frame struct {
	Index   uint64
	Stage   Stage
	System  SystemId
	running bool
}

// Running reports whether a stage is currently executing.
func (f Frame) Running() bool {
	return f.running
}
