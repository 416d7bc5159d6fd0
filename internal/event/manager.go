// internal/event/manager.go
package event

import (
	"sync"

	"github.com/bethropolis/logprefix/internal/logger"
)

// Handler defines the function signature for event subscribers.
// It returns true if the event was consumed, which stops delivery to later handlers.
type Handler func(e Event) bool

// Manager handles event subscriptions and dispatching. It is safe for
// concurrent use; handlers may be called from several goroutines at once.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewManager creates a new event manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe adds a handler function for a specific event type.
func (m *Manager) Subscribe(eventType Type, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
	logger.DebugTagf("event", "Handler subscribed to %v", eventType)
}

// SubscribeAll adds handler for every run event type.
func (m *Manager) SubscribeAll(handler Handler) {
	for t := TypeFileTransformed; t <= TypeRunFinished; t++ {
		m.Subscribe(t, handler)
	}
}

// Dispatch sends an event to all registered handlers for its type, in
// subscription order. A nil Manager drops the event.
func (m *Manager) Dispatch(eventType Type, data interface{}) {
	if m == nil {
		return
	}
	event := Event{
		Type: eventType,
		Data: data,
	}

	m.mu.RLock()
	handlers := m.handlers[eventType]
	// Copy so a handler subscribing during dispatch does not race the slice.
	handlersCopy := make([]Handler, len(handlers))
	copy(handlersCopy, handlers)
	m.mu.RUnlock()

	if len(handlersCopy) == 0 {
		return
	}

	for _, handler := range handlersCopy {
		if handler(event) {
			break
		}
	}
}
