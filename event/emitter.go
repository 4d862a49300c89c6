// Package event provides a synchronous, single-threaded observer registry.
//
// Handlers are grouped by Kind and invoked in registration order on the
// goroutine that calls Emit. Emitter is not safe for concurrent use.
package event

// Kind names a class of notifications.
type Kind string

// Handle identifies one registration and is used to remove it.
type Handle struct {
	kind Kind
	id   uint64
}

// Kind returns the kind the handle was registered for.
func (h Handle) Kind() Kind {
	return h.kind
}

type entry[E any] struct {
	id uint64
	fn func(E)
}

// Emitter dispatches values of type E to handlers registered per Kind.
// The zero value is ready to use.
type Emitter[E any] struct {
	handlers map[Kind][]entry[E]
	nextID   uint64
}

// Subscribe registers fn for notifications of the given kind.
func (e *Emitter[E]) Subscribe(kind Kind, fn func(E)) Handle {
	if e.handlers == nil {
		e.handlers = make(map[Kind][]entry[E])
	}
	e.nextID++
	e.handlers[kind] = append(e.handlers[kind], entry[E]{id: e.nextID, fn: fn})
	return Handle{kind: kind, id: e.nextID}
}

// Unsubscribe removes a registration. It reports whether the handle was registered.
func (e *Emitter[E]) Unsubscribe(h Handle) bool {
	entries := e.handlers[h.kind]
	for i, ent := range entries {
		if ent.id == h.id {
			// Copy so that an Emit in progress keeps iterating its own snapshot.
			e.handlers[h.kind] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every handler registered for kind with v.
// Handlers added or removed during Emit take effect on the next call.
func (e *Emitter[E]) Emit(kind Kind, v E) {
	for _, ent := range e.handlers[kind] {
		ent.fn(v)
	}
}

// Len returns the number of handlers registered for kind.
func (e *Emitter[E]) Len(kind Kind) int {
	return len(e.handlers[kind])
}
