package events

import (
	"sync"

	"safepump/core/types"
)

// Event represents a structured state change emitted by the gate.
type Event interface {
	EventType() string
}

// Flattener is implemented by events that can render themselves as
// attribute maps for the journal and RPC.
type Flattener interface {
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, journal).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Flatten renders e as a types.Event.
func Flatten(e Event) *types.Event {
	if e == nil {
		return nil
	}
	if f, ok := e.(Flattener); ok {
		if out := f.Event(); out != nil {
			return out
		}
	}
	return &types.Event{Type: e.EventType(), Attributes: map[string]string{}}
}

// Fanout forwards every event to each emitter in order.
type Fanout []Emitter

func (f Fanout) Emit(e Event) {
	for _, emitter := range f {
		if emitter != nil {
			emitter.Emit(e)
		}
	}
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in emission order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
