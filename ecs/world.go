package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// World aggregates entities, component stores, mailboxes and the command
// queue. It is the only handle systems receive for state access.
type World struct {
	entities *EntityRegistry
	storage  *Storage
	bus      *Bus
	commands *CommandQueue
	frame    Frame
	log      *zap.Logger

	systemIds map[reflect.Type]SystemId
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithLogger sets the logger used for command and lifecycle diagnostics.
func WithLogger(log *zap.Logger) WorldOption {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorld creates an empty World.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		entities:  NewEntityRegistry(),
		storage:   NewStorage(),
		bus:       NewBus(),
		commands:  newCommandQueue(),
		frame:     Frame{System: NoSystem},
		log:       zap.NewNop(),
		systemIds: make(map[reflect.Type]SystemId),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Entities returns a read-only view of the entity registry.
func (w *World) Entities() EntityView { return EntityView{registry: w.entities} }

// Storage returns the component store collection. It is meant for store
// lookups; rows written through it must belong to live entities.
func (w *World) Storage() *Storage { return w.storage }

// Messages returns the mailbox bus.
func (w *World) Messages() *Bus { return w.bus }

// Commands returns the queue drained at the flush point.
func (w *World) Commands() *CommandQueue { return w.commands }

// Frame returns the current execution cursor.
func (w *World) Frame() Frame { return w.frame }

// Logger returns the World's logger.
func (w *World) Logger() *zap.Logger { return w.log }

func (w *World) checkStructural(op string) error {
	if w.frame.running {
		return fmt.Errorf("%w: %s during stage %s", ErrFrameInProgress, op, w.frame.Stage)
	}
	return nil
}

// Create allocates a new entity. It is meant for setup code; systems
// enqueue a Create command instead.
func (w *World) Create() (EntityId, error) {
	if err := w.checkStructural("create"); err != nil {
		return 0, err
	}
	return w.entities.Create(), nil
}

// Destroy removes id from the registry and from every component store.
// Systems enqueue a Kill command instead.
func (w *World) Destroy(id EntityId) error {
	if err := w.checkStructural("destroy"); err != nil {
		return err
	}
	return w.kill(id)
}

func (w *World) kill(id EntityId) error {
	if err := w.entities.Destroy(id); err != nil {
		return err
	}
	rows := w.storage.removeEntity(id)
	w.log.Debug("entity killed", zap.Uint32("entity", uint32(id)), zap.Int("rows", rows))
	return nil
}

// IsLive reports whether id names a live entity.
func (w *World) IsLive(id EntityId) bool {
	return w.entities.IsLive(id)
}

// Register allocates the component store for T.
func Register[T any](w *World) (ComponentId, error) {
	return RegisterComponent[T](w.storage)
}

// Get returns a copy of id's component of type T.
func Get[T any](w *World, id EntityId) (T, error) {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		var zero T
		return zero, err
	}
	return store.Get(id)
}

// GetMut returns a pointer to id's component of type T for in-place edits.
func GetMut[T any](w *World, id EntityId) (*T, error) {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return nil, err
	}
	return store.GetMut(id)
}

// Has reports whether id has a component of type T.
func Has[T any](w *World, id EntityId) bool {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return false
	}
	return store.Contains(id)
}

// Insert writes value as id's component of type T. The entity must be live.
// Overwriting an existing row is allowed at any time; adding a new row while
// a stage runs is a structural change and must go through Spawn.
func Insert[T any](w *World, id EntityId, value T) error {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return err
	}
	if !w.entities.IsLive(id) {
		return fmt.Errorf("%w: %s is not live", ErrNotFound, id)
	}
	if !store.Contains(id) {
		if err := w.checkStructural("insert"); err != nil {
			return err
		}
	}
	store.Put(id, value)
	return nil
}

// RemoveComponent clears id's component of type T. Systems use Remove on
// the command queue instead.
func RemoveComponent[T any](w *World, id EntityId) error {
	if err := w.checkStructural("remove"); err != nil {
		return err
	}
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return err
	}
	return store.Remove(id)
}

// Each yields every component of type T with its entity, in ascending row
// order. Unregistered types yield nothing.
func Each[T any](w *World) iter.Seq2[EntityId, *T] {
	store, err := StoreOf[T](w.storage)
	if err != nil {
		return func(func(EntityId, *T) bool) {}
	}
	return store.Iter()
}

// Broadcast delivers msg to every mailbox except the current system's own.
func (w *World) Broadcast(msg Message) {
	w.bus.Broadcast(w.frame.System, msg)
}

// Send delivers msg to the given system ids.
func (w *World) Send(msg Message, recipients ...SystemId) error {
	return w.bus.SendTo(msg, recipients...)
}

// Poll pops the oldest message from the mailbox of the system currently
// executing. Outside a system update it reports no message.
func (w *World) Poll() (Message, bool) {
	if w.frame.System == NoSystem {
		return nil, false
	}
	return w.bus.Poll(w.frame.System)
}

// SystemIdOf returns the mailbox id of system type S. S is the concrete
// type that was registered, e.g. *MovementSystem for pointer receivers.
func SystemIdOf[S any](w *World) (SystemId, error) {
	t := reflect.TypeFor[S]()
	id, ok := w.systemIds[t]
	if !ok {
		return NoSystem, fmt.Errorf("%w: %s", ErrRecipientUnknown, t)
	}
	return id, nil
}

// SendTo delivers msg to the mailbox of system type R.
func SendTo[R any](w *World, msg Message) error {
	r, err := SystemIdOf[R](w)
	if err != nil {
		return err
	}
	return w.bus.SendTo(msg, r)
}

// SendTo2 delivers msg to the mailboxes of system types R1 and R2.
func SendTo2[R1, R2 any](w *World, msg Message) error {
	r1, err := SystemIdOf[R1](w)
	if err != nil {
		return err
	}
	r2, err := SystemIdOf[R2](w)
	if err != nil {
		return err
	}
	return w.bus.SendTo(msg, r1, r2)
}

// SendTo3 delivers msg to the mailboxes of system types R1, R2 and R3.
func SendTo3[R1, R2, R3 any](w *World, msg Message) error {
	r1, err := SystemIdOf[R1](w)
	if err != nil {
		return err
	}
	r2, err := SystemIdOf[R2](w)
	if err != nil {
		return err
	}
	r3, err := SystemIdOf[R3](w)
	if err != nil {
		return err
	}
	return w.bus.SendTo(msg, r1, r2, r3)
}

// Poll pops the oldest message from the mailbox of system type S.
func Poll[S any](w *World) (Message, bool) {
	id, err := SystemIdOf[S](w)
	if err != nil {
		return nil, false
	}
	return w.bus.Poll(id)
}

// registerSystem interns the system type t and opens its mailbox.
func (w *World) registerSystem(t reflect.Type) (SystemId, error) {
	if _, exists := w.systemIds[t]; exists {
		return NoSystem, fmt.Errorf("%w: system %s", ErrDuplicateRegistration, t)
	}
	id := w.bus.open(systemName(t))
	w.systemIds[t] = id
	return id, nil
}

func systemName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Flush drains the command queue, logging every failed command.
func (w *World) Flush() error {
	pending := w.commands.Len()
	if pending == 0 {
		return nil
	}

	err := w.commands.Drain(w)
	w.log.Debug("commands drained",
		zap.Uint64("frame", w.frame.Index),
		zap.Stringer("stage", w.frame.Stage),
		zap.Int("queued", pending),
	)
	if err != nil {
		for _, failed := range multierr.Errors(err) {
			w.log.Warn("command failed", zap.Error(failed))
		}
	}
	return err
}
