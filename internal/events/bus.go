// Package events provides the typed publish/subscribe bus the store uses to
// announce mutations. The store is the sole publisher; UI-facing layers
// register listeners per event type.
package events

import (
	"sync"
	"time"

	"github.com/hungduong/loveanniversary/internal/models"
)

// Type names a change event.
type Type string

const (
	MemoryAdded       Type = "memoryAdded"
	MemoryUpdated     Type = "memoryUpdated"
	MemoryDeleted     Type = "memoryDeleted"
	PhotoAdded        Type = "photoAdded"
	PhotoUpdated      Type = "photoUpdated"
	PhotoDeleted      Type = "photoDeleted"
	CoupleInfoUpdated Type = "coupleInfoUpdated"
	DataImported      Type = "dataImported"
	DataReset         Type = "dataReset"
	DataSaved         Type = "dataSaved"

	// SyncReady fires once the sync adapter settled on a backend, carrying
	// the reconciled document and the online flag.
	SyncReady Type = "syncReady"

	// RemoteUpdated fires when a remote push replaced local state. Distinct
	// from the CRUD events, which only fire for local mutations.
	RemoteUpdated Type = "dataUpdated"
)

// Event is one published change notification.
type Event struct {
	Type      Type
	Payload   interface{}
	Timestamp time.Time
}

// SyncReadyPayload accompanies the SyncReady event.
type SyncReadyPayload struct {
	Document *models.Document
	Online   bool
	CoupleID string
}

// RemoteUpdatePayload accompanies the RemoteUpdated event.
type RemoteUpdatePayload struct {
	Document *models.Document
}

// Handler receives published events. Dispatch is synchronous: handlers run
// on the publisher's goroutine, in subscription order per type.
type Handler func(Event)

// Bus is the in-process publish/subscribe bus.
type Bus struct {
	mu     sync.Mutex
	nextID int
	byType map[Type]map[int]Handler
	order  map[Type][]int
	all    map[int]Handler
	allIDs []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		byType: make(map[Type]map[int]Handler),
		order:  make(map[Type][]int),
		all:    make(map[int]Handler),
	}
}

// Subscribe registers a handler for one event type and returns an
// unsubscribe func. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(t Type, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.byType[t] == nil {
		b.byType[t] = make(map[int]Handler)
	}
	b.byType[t][id] = h
	b.order[t] = append(b.order[t], id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.byType[t], id)
	}
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all[id] = h
	b.allIDs = append(b.allIDs, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers an event to all matching handlers. The handler snapshot
// is taken under the lock so handlers may themselves subscribe or
// unsubscribe without deadlocking.
func (b *Bus) Publish(t Type, payload interface{}) {
	e := Event{Type: t, Payload: payload, Timestamp: time.Now()}

	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.order[t])+len(b.allIDs))
	for _, id := range b.order[t] {
		if h, ok := b.byType[t][id]; ok {
			handlers = append(handlers, h)
		}
	}
	for _, id := range b.allIDs {
		if h, ok := b.all[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
