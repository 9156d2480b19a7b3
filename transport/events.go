package transport

import (
	"fmt"
	"sync"
)

type Event int

const (
	Connect Event = iota
	Data
	Readable
	End
	// Message carries one decoded payload; only protocol adapters emit it.
	Message
)

func (e Event) String() string {
	switch e {
	case Connect:
		return "connect"
	case Data:
		return "data"
	case Readable:
		return "readable"
	case End:
		return "end"
	case Message:
		return "message"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Listener receives the chunk attached to an event; chunk is nil for
// events that carry no bytes.
type Listener func(chunk []byte)

// Emitter is an ordered listener registry. The zero value is ready to use.
type Emitter struct {
	lock      sync.RWMutex
	listeners map[Event][]Listener
}

func (e *Emitter) On(ev Event, l Listener) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.listeners == nil {
		e.listeners = map[Event][]Listener{}
	}
	e.listeners[ev] = append(e.listeners[ev], l)
}

// Emit calls the listeners of ev in registration order. Listeners may
// register further listeners; those are not called for this emission.
func (e *Emitter) Emit(ev Event, chunk []byte) {
	e.lock.RLock()
	ls := e.listeners[ev]
	e.lock.RUnlock()

	for _, l := range ls {
		l(chunk)
	}
}

func (e *Emitter) ListenerCount(ev Event) int {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return len(e.listeners[ev])
}
