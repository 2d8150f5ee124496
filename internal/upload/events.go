package upload

import (
	"time"

	"github.com/phisnet/backend/internal/models"
)

// EventType identifies a change to the record collection.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
	EventCleared EventType = "cleared"
)

// Event is one change notification.
type Event struct {
	Type      EventType            `json:"type"`
	ID        string               `json:"id,omitempty"`
	Record    *models.UploadRecord `json:"record,omitempty"`
	Count     int                  `json:"count,omitempty"` // records dropped by a clear
	Timestamp int64                `json:"timestamp"`
}

func newRecordEvent(t EventType, rec models.UploadRecord) Event {
	return Event{Type: t, ID: rec.ID, Record: &rec, Timestamp: time.Now().UnixMilli()}
}

// Subscribe registers a listener for record changes. The returned cancel func is idempotent.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	m.subsMu.Lock()
	if m.subsClosed {
		m.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subsMu.Unlock()

	return ch, func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// Watch returns the current records and stats together with a subscription
// that starts exactly after them. Every event on the channel is newer than
// the snapshot.
func (m *Manager) Watch(buffer int) ([]models.UploadRecord, models.UploadStats, <-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events, cancel := m.Subscribe(buffer)
	return m.listLocked(), m.statsLocked(), events, cancel
}

// publish never blocks; slow subscribers lose events. Callers hold m.mu so
// events leave in the order the changes were applied.
func (m *Manager) publish(ev Event) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()

	for id, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.log.Debug().Int("subscriber", id).Str("event", string(ev.Type)).Msg("subscriber full, dropping event")
		}
	}
}

func (m *Manager) closeSubscribers() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.subsClosed = true
}
