// Package realtime fans service events out to connected websocket clients.
package realtime

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	EventNewEmergencyRequest    = "new_emergency_request"
	EventEmergencyStatusChanged = "emergency_status_changed"

	subscriberBuffer = 100
)

type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

type Broadcaster struct {
	subscribers map[uint64]chan *Event
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *Event),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *Event) {
	id := b.nextID.Add(1)
	ch := make(chan *Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(e *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			// Skip slow subscribers
		}
	}
}

// Publish stamps and broadcasts an event.
func (b *Broadcaster) Publish(eventType string, data any) {
	b.Broadcast(&Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing connections to shut down
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
