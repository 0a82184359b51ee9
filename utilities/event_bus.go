package utilities

import "sync"

// Event names published by the engine.
const (
	EventSessionCompleted = "session.completed"
	EventSessionAbandoned = "session.abandoned"
	EventContentMissing   = "content.missing"
	EventStepRemoved      = "step.removed"
)

// SessionCompletedEvent is the payload for EventSessionCompleted.
type SessionCompletedEvent struct {
	SessionID   string
	UserID      uint
	TrailStepID uint
	Score       int
}

// ContentMissingEvent is the payload for EventContentMissing: content ids an
// exercise referenced that the content store could not resolve.
type ContentMissingEvent struct {
	ExerciseID uint
	Kind       string
	MissingIDs []uint
}

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if handlers, found := eb.handlers[event]; found {
		for _, handler := range handlers {
			go handler(data) // Run handlers asynchronously
		}
	}
}

// Global instance
var GlobalEventBus = NewEventBus()
