package reminder

// EventKind names a change to the reminder store.
type EventKind string

const (
	EventAdded   EventKind = "reminder.added"
	EventRemoved EventKind = "reminder.removed"
	EventFired   EventKind = "reminder.fired"
)

// Event describes one change to the store.
type Event struct {
	Kind     EventKind `json:"kind"`
	Reminder Reminder  `json:"reminder"`
}

func notify(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
