package memrt

import "github.com/wippyai/objbridge/capi"

// EventType identifies an object lifecycle notification.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventDeallocated
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventDeallocated:
		return "deallocated"
	default:
		return "unknown"
	}
}

// Event describes one allocation or deallocation.
type Event struct {
	TypeName string
	Addr     capi.Ptr
	Type     EventType
}

// Observer receives object lifecycle events. Callbacks run synchronously on
// the allocating goroutine and must not call back into the runtime.
type Observer interface {
	OnObjectEvent(Event)
}

// Subscribe adds an observer for lifecycle events.
func (r *Runtime) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Runtime) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Runtime) notify(e Event) {
	r.obsMu.RLock()
	observers := r.observers
	r.obsMu.RUnlock()

	for _, o := range observers {
		o.OnObjectEvent(e)
	}
}
