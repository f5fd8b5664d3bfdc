package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(event *Event)

type subscription struct {
	id        uint64
	eventType EventType
	handler   Handler
}

// Bus is a synchronous in-process publish/subscribe hub
type Bus struct {
	subscribers map[EventType][]subscription
	nextID      uint64
	mu          sync.RWMutex
	log         zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[EventType][]subscription),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for eventType and returns an ID for Unsubscribe
func (b *Bus) Subscribe(eventType EventType, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{
		id:        b.nextID,
		eventType: eventType,
		handler:   handler,
	})
	return b.nextID
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, s := range subs {
			if s.id != id {
				continue
			}
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			if len(b.subscribers[eventType]) == 0 {
				delete(b.subscribers, eventType)
			}
			return
		}
	}
}

// Emit publishes an event to every subscriber of eventType
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subscribers[eventType]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(s, event)
	}
}

func (b *Bus) dispatch(s subscription, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Uint64("subscription", s.id).
				Msg("Event handler panicked")
		}
	}()
	s.handler(event)
}

// SubscriberCount returns the number of handlers registered for eventType
func (b *Bus) SubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[eventType])
}
