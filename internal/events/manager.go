// Package events provides the in-process event bus for Varuna. Services
// emit domain events after successful persistence; subscribers (the SSE
// stream) receive them with non-blocking delivery.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	BalanceComputed EventType = "BALANCE_COMPUTED"
	SurplusBanked   EventType = "SURPLUS_BANKED"
	BankedApplied   EventType = "BANKED_APPLIED"
	PoolCreated     EventType = "POOL_CREATED"
	BaselineChanged EventType = "BASELINE_CHANGED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Module    string      `json:"module"`
	Data      interface{} `json:"data"`
}

// Manager handles event emission, logging, and subscriber fan-out
type Manager struct {
	log         zerolog.Logger
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:         log.With().Str("service", "events").Logger(),
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe registers a subscriber and returns its channel plus an
// unsubscribe function. The channel is buffered; slow subscribers drop
// events rather than block emitters.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, 64)

	m.mu.Lock()
	m.subscribers[id] = ch
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
		m.mu.Unlock()
	}

	return ch, unsubscribe
}

// Emit emits an event to the log and all subscribers
func (m *Manager) Emit(eventType EventType, module string, data interface{}) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Module:    module,
		Data:      data,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block
		}
	}
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error) {
	m.Emit(ErrorOccurred, module, map[string]interface{}{"error": err.Error()})
}
