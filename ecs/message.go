package ecs

import (
	"fmt"

	"github.com/kamstrup/intmap"
)

// Message is an application-defined event passed between systems. Each
// application defines its own closed set of message types; values are
// copied into every mailbox they are delivered to.
type Message interface {
	MessageName() string
}

// SystemId addresses a system's mailbox. Ids are assigned when the system
// is registered with a pipeline.
type SystemId uint32

// NoSystem is the sender id used for messages that originate outside any
// system update, such as host setup code.
const NoSystem SystemId = ^SystemId(0)

type mailbox struct {
	name    string
	pending []Message
	head    int
}

func (m *mailbox) push(msg Message) {
	m.pending = append(m.pending, msg)
}

func (m *mailbox) pop() (Message, bool) {
	if m.head >= len(m.pending) {
		return nil, false
	}

	msg := m.pending[m.head]
	m.pending[m.head] = nil
	m.head++
	if m.head == len(m.pending) {
		m.pending = m.pending[:0]
		m.head = 0
	}
	return msg, true
}

func (m *mailbox) len() int {
	return len(m.pending) - m.head
}

// MailboxInfo summarizes one mailbox.
type MailboxInfo struct {
	Id      SystemId
	Name    string
	Pending int
}

// Bus holds one FIFO mailbox per registered system. Messages live for one
// frame: the pipeline clears every mailbox when a frame completes, so a
// message no system polled in that frame is dropped.
type Bus struct {
	boxes *intmap.Map[SystemId, *mailbox]
	order []SystemId
}

// NewBus creates a bus without mailboxes.
func NewBus() *Bus {
	return &Bus{
		boxes: intmap.New[SystemId, *mailbox](32),
	}
}

// open creates the mailbox for a newly registered system.
func (b *Bus) open(name string) SystemId {
	id := SystemId(len(b.order))
	b.boxes.Put(id, &mailbox{name: name})
	b.order = append(b.order, id)
	return id
}

// Broadcast appends msg to every mailbox except the sender's own.
func (b *Bus) Broadcast(from SystemId, msg Message) {
	for _, id := range b.order {
		if id == from {
			continue
		}
		box, _ := b.boxes.Get(id)
		box.push(msg)
	}
}

// SendTo appends msg to each named mailbox. If any recipient is unknown the
// message is delivered to none of them.
func (b *Bus) SendTo(msg Message, recipients ...SystemId) error {
	boxes := make([]*mailbox, 0, len(recipients))
	for _, id := range recipients {
		box, ok := b.boxes.Get(id)
		if !ok {
			return fmt.Errorf("%w: system id %d", ErrRecipientUnknown, id)
		}
		boxes = append(boxes, box)
	}

	for _, box := range boxes {
		box.push(msg)
	}
	return nil
}

// Poll pops the oldest pending message from id's mailbox.
func (b *Bus) Poll(id SystemId) (Message, bool) {
	box, ok := b.boxes.Get(id)
	if !ok {
		return nil, false
	}
	return box.pop()
}

// Pending returns the number of undelivered messages in id's mailbox.
func (b *Bus) Pending(id SystemId) int {
	box, ok := b.boxes.Get(id)
	if !ok {
		return 0
	}
	return box.len()
}

// Clear empties every mailbox and returns the number of messages dropped.
// Mailboxes themselves stay registered.
func (b *Bus) Clear() int {
	dropped := 0
	for _, id := range b.order {
		box, _ := b.boxes.Get(id)
		dropped += box.len()
		clear(box.pending)
		box.pending = box.pending[:0]
		box.head = 0
	}
	return dropped
}

// Mailboxes lists every mailbox in registration order.
func (b *Bus) Mailboxes() []MailboxInfo {
	infos := make([]MailboxInfo, 0, len(b.order))
	for _, id := range b.order {
		box, _ := b.boxes.Get(id)
		infos = append(infos, MailboxInfo{Id: id, Name: box.name, Pending: box.len()})
	}
	return infos
}
