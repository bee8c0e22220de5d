package ecs

// WorldStats is a point-in-time summary of a World.
type WorldStats struct {
	Frame           uint64
	LiveEntities    int
	EntitySlots     int
	StoreCount      int
	TotalComponents int
	PendingMessages int
	QueuedCommands  int
	Stores          []StoreInfo
	Mailboxes       []MailboxInfo
}

// CollectStats summarizes entities, stores, mailboxes and queued commands.
func (w *World) CollectStats() *WorldStats {
	stats := &WorldStats{
		Frame:          w.frame.Index,
		LiveEntities:   w.entities.Count(),
		EntitySlots:    w.entities.Cap(),
		StoreCount:     w.storage.Len(),
		QueuedCommands: w.commands.Len(),
		Stores:         w.storage.Stores(),
		Mailboxes:      w.bus.Mailboxes(),
	}

	for _, store := range stats.Stores {
		stats.TotalComponents += store.Len
	}
	for _, box := range stats.Mailboxes {
		stats.PendingMessages += box.Pending
	}
	return stats
}
