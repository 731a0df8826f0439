package mapview

import "github.com/google/uuid"

// EventKind identifies a camera change notification.
type EventKind int

const (
	// EventCenter fires when the geographic center changes.
	EventCenter EventKind = iota

	// EventZoomlevel fires when the effective zoom level changes.
	EventZoomlevel

	// EventRotation fires when the rotation changes.
	EventRotation

	// EventPitch fires when the pitch changes.
	EventPitch

	// EventResize fires when the screen size changes.
	EventResize
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventCenter:
		return "center"
	case EventZoomlevel:
		return "zoomlevel"
	case EventRotation:
		return "rotation"
	case EventPitch:
		return "pitch"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Event describes one camera change.
//
// Which fields are set depends on Kind:
//   - EventCenter: OldCenter, NewCenter
//   - EventZoomlevel: OldValue, NewValue (effective zoom)
//   - EventRotation, EventPitch: OldValue, NewValue (degrees)
//   - EventResize: OldSize, NewSize
type Event struct {
	Kind      EventKind
	OldCenter GeoPoint
	NewCenter GeoPoint
	OldValue  float64
	NewValue  float64
	OldSize   PixelPoint
	NewSize   PixelPoint
}

// Listener receives events synchronously on the caller's stack.
type Listener func(Event)

// Subscription identifies a registered listener. Pass it to Off to remove it.
type Subscription struct {
	ID   uuid.UUID
	Kind EventKind
}

type listenerEntry struct {
	id uuid.UUID
	fn Listener
}

// listenerRegistry dispatches events in registration order.
type listenerRegistry struct {
	listeners map[EventKind][]listenerEntry
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{
		listeners: make(map[EventKind][]listenerEntry),
	}
}

func (r *listenerRegistry) add(kind EventKind, fn Listener) Subscription {
	id := uuid.New()
	r.listeners[kind] = append(r.listeners[kind], listenerEntry{id: id, fn: fn})
	return Subscription{ID: id, Kind: kind}
}

func (r *listenerRegistry) remove(sub Subscription) bool {
	entries := r.listeners[sub.Kind]
	for i, e := range entries {
		if e.id == sub.ID {
			// Copy so that an in-flight dispatch keeps its own snapshot.
			next := make([]listenerEntry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			r.listeners[sub.Kind] = next
			return true
		}
	}
	return false
}

func (r *listenerRegistry) emit(ev Event) {
	for _, e := range r.listeners[ev.Kind] {
		e.fn(ev)
	}
}

func (r *listenerRegistry) clear() {
	r.listeners = make(map[EventKind][]listenerEntry)
}
