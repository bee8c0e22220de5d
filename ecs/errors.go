package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an entity or component row is absent.
	ErrNotFound = errors.New("ecs: not found")
	// ErrStoreNotFound indicates an operation referenced an unregistered component type.
	ErrStoreNotFound = errors.New("ecs: component store not registered")
	// ErrDuplicateRegistration indicates a system or component type was registered twice.
	ErrDuplicateRegistration = errors.New("ecs: duplicate registration")
	// ErrRecipientUnknown indicates a message was targeted at a system without a mailbox.
	ErrRecipientUnknown = errors.New("ecs: message recipient unknown")
	// ErrFrameInProgress indicates a direct structural mutation was attempted while a
	// stage is executing. Use the command queue instead.
	ErrFrameInProgress = errors.New("ecs: structural mutation during stage execution")
)

// SystemError reports the system whose update aborted a frame.
type SystemError struct {
	Stage  Stage
	System string
	Err    error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("ecs: system %s in stage %s: %v", e.System, e.Stage, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// CommandError reports a command that failed to apply while draining the queue.
// Seq is the command's position in the drain, starting at 0.
type CommandError struct {
	Seq     int
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("ecs: command #%d %s: %v", e.Seq, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
