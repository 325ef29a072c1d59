package events

import (
	"context"
	"sync"
	"time"

	"lottery/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeParticipantJoined    EventType = "participant_joined"
	EventTypeDrawCompleted        EventType = "draw_completed"
	EventTypeActivityStateChanged EventType = "activity_state_changed"
	EventTypeWinSpecChanged       EventType = "win_spec_changed"
	EventTypeStoreReset           EventType = "store_reset"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ParticipantJoinedEvent represents a participant being allocated or re-associated
type ParticipantJoinedEvent struct {
	PID           int
	CorrelationID string
	IsNew         bool
}

func (e ParticipantJoinedEvent) Type() EventType {
	return EventTypeParticipantJoined
}

// DrawCompletedEvent represents a finished draw with its recorded outcome
type DrawCompletedEvent struct {
	PID         int
	Win         bool
	Choice      int
	Arrangement models.Arrangement
	DrawAt      time.Time
}

func (e DrawCompletedEvent) Type() EventType {
	return EventTypeDrawCompleted
}

// ActivityStateChangedEvent represents an activity lifecycle transition
type ActivityStateChangedEvent struct {
	OldState models.ActivityState
	NewState models.ActivityState
}

func (e ActivityStateChangedEvent) Type() EventType {
	return EventTypeActivityStateChanged
}

// WinSpecChangedEvent represents an admin change of the win distribution
type WinSpecChangedEvent struct {
	OldSpec models.WinSpec
	NewSpec models.WinSpec
}

func (e WinSpecChangedEvent) Type() EventType {
	return EventTypeWinSpecChanged
}

// StoreResetEvent represents an administrative reset of participant state.
// PID is nil for a full reset.
type StoreResetEvent struct {
	PID *int
}

func (e StoreResetEvent) Type() EventType {
	return EventTypeStoreReset
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so emission never blocks the draw critical path
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
