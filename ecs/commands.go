package ecs

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// Command is a deferred world mutation. Commands capture everything they
// need up front and touch the World only when the queue is drained.
type Command interface {
	Apply(w *World) error
	String() string
}

// CommandQueue is the FIFO of commands waiting to be applied. Systems enqueue
// structural changes here instead of mutating storage while other systems
// may be iterating it.
type CommandQueue struct {
	pending []Command
	head    int
}

func newCommandQueue() *CommandQueue {
	return &CommandQueue{
		pending: make([]Command, 0, 64),
	}
}

// Enqueue appends cmd to the queue. Nil commands are ignored.
func (q *CommandQueue) Enqueue(cmd Command) {
	if cmd == nil {
		return
	}
	q.pending = append(q.pending, cmd)
}

// Len returns the number of commands waiting to be applied.
func (q *CommandQueue) Len() int {
	return len(q.pending) - q.head
}

// Drain pops and applies commands in enqueue order until the queue is empty,
// including commands enqueued by commands applied during this drain. A
// failing command does not stop the drain; every failure is returned as a
// *CommandError combined with multierr.
func (q *CommandQueue) Drain(w *World) error {
	var errs error
	seq := 0

	for q.head < len(q.pending) {
		cmd := q.pending[q.head]
		q.pending[q.head] = nil
		q.head++

		if err := cmd.Apply(w); err != nil {
			errs = multierr.Append(errs, &CommandError{
				Seq:     seq,
				Command: cmd.String(),
				Err:     err,
			})
		}
		seq++
	}

	q.pending = q.pending[:0]
	q.head = 0
	return errs
}

// Reset drops every pending command without applying it.
func (q *CommandQueue) Reset() {
	clear(q.pending)
	q.pending = q.pending[:0]
	q.head = 0
}

// Kill queues the destruction of id and of every component row it owns.
func (q *CommandQueue) Kill(id EntityId) {
	q.Enqueue(killCommand{entity: id})
}

// Create queues the allocation of a new entity carrying the given
// components. If target is non-nil it receives the id once applied.
func (q *CommandQueue) Create(target *EntityId, components ...Inserter) {
	q.Enqueue(createCommand{target: target, components: components})
}

// Defer queues an arbitrary function to run at drain time.
func (q *CommandQueue) Defer(fn func(w *World) error) {
	if fn == nil {
		return
	}
	q.Enqueue(deferCommand{fn: fn})
}

// Spawn queues writing value into T's store at id.
func Spawn[T any](q *CommandQueue, id EntityId, value T) {
	q.Enqueue(spawnCommand[T]{entity: id, value: value})
}

// Remove queues clearing id's row in T's store.
func Remove[T any](q *CommandQueue, id EntityId) {
	q.Enqueue(removeCommand[T]{entity: id})
}

// Inserter writes one component value for an entity. Use With to build one.
type Inserter interface {
	resolve(s *Storage) (func(EntityId), error)
	typeName() string
}

type inserter[T any] struct {
	value T
}

// With wraps value for use in a Create command.
func With[T any](value T) Inserter {
	return inserter[T]{value: value}
}

func (in inserter[T]) resolve(s *Storage) (func(EntityId), error) {
	store, err := StoreOf[T](s)
	if err != nil {
		return nil, err
	}
	return func(id EntityId) { store.Put(id, in.value) }, nil
}

func (in inserter[T]) typeName() string {
	return reflect.TypeFor[T]().String()
}

type spawnCommand[T any] struct {
	entity EntityId
	value  T
}

func (c spawnCommand[T]) Apply(w *World) error {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return err
	}
	if !w.entities.IsLive(c.entity) {
		return fmt.Errorf("%w: %s is not live", ErrNotFound, c.entity)
	}
	store.Put(c.entity, c.value)
	return nil
}

func (c spawnCommand[T]) String() string {
	return fmt.Sprintf("Spawn[%s](%s)", reflect.TypeFor[T](), c.entity)
}

type killCommand struct {
	entity EntityId
}

func (c killCommand) Apply(w *World) error {
	return w.kill(c.entity)
}

func (c killCommand) String() string {
	return fmt.Sprintf("Kill(%s)", c.entity)
}

type createCommand struct {
	target     *EntityId
	components []Inserter
}

func (c createCommand) Apply(w *World) error {
	puts := make([]func(EntityId), 0, len(c.components))
	for _, component := range c.components {
		put, err := component.resolve(w.storage)
		if err != nil {
			return err
		}
		puts = append(puts, put)
	}

	id := w.entities.Create()
	for _, put := range puts {
		put(id)
	}
	if c.target != nil {
		*c.target = id
	}
	return nil
}

func (c createCommand) String() string {
	names := make([]string, 0, len(c.components))
	for _, component := range c.components {
		names = append(names, component.typeName())
	}
	return fmt.Sprintf("Create%v", names)
}

type removeCommand[T any] struct {
	entity EntityId
}

func (c removeCommand[T]) Apply(w *World) error {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return err
	}
	return store.Remove(c.entity)
}

func (c removeCommand[T]) String() string {
	return fmt.Sprintf("Remove[%s](%s)", reflect.TypeFor[T](), c.entity)
}

type deferCommand struct {
	fn func(w *World) error
}

func (c deferCommand) Apply(w *World) error {
	return c.fn(w)
}

func (c deferCommand) String() string {
	return "Defer"
}

var (
	_ Command = spawnCommand[struct{}]{}
	_ Command = killCommand{}
	_ Command = createCommand{}
	_ Command = removeCommand[struct{}]{}
	_ Command = deferCommand{}
)
