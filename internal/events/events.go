package events

import "sync"

// Handler receives the payload attached to an emitted event.
type Handler func(data interface{})

var (
	mu       sync.RWMutex
	handlers = make(map[string][]Handler)
)

// On registers a handler for the named event.
func On(event string, h Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], h)
}

// Emit invokes all handlers registered for the named event. Handlers run
// asynchronously so model hooks never block on listeners.
func Emit(event string, data interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	mu.RUnlock()

	for _, h := range hs {
		go h(data)
	}
}

// Reset removes all registered handlers. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	handlers = make(map[string][]Handler)
}
