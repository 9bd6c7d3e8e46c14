package devtools

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quiver-dev/quiver"
)

// EventType identifies the kind of engine event carried by an Event.
type EventType string

const (
	EventWrite      EventType = "write"
	EventMemo       EventType = "memo"
	EventEffect     EventType = "effect"
	EventNotify     EventType = "notify"
	EventFlushStart EventType = "flush_start"
	EventFlushEnd   EventType = "flush_end"
)

// Event is one engine event as sent to WebSocket clients.
type Event struct {
	Type    EventType `json:"type"`
	ID      uint64    `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Micros  int64     `json:"micros,omitempty"`
	Depth   int       `json:"depth,omitempty"`
	Rounds  int       `json:"rounds,omitempty"`
	Entries int       `json:"entries,omitempty"`
}

// Feed streams engine events to WebSocket clients. It implements
// quiver.Instrument: callbacks enqueue onto a bounded queue and a
// broadcast goroutine forwards to clients, so the engine never blocks
// on a slow consumer. When the queue is full the oldest event is
// evicted; when a rate cap is set, events past the cap are discarded.
// Both kinds of loss are counted in Dropped.
type Feed struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	rate      *quiver.FlushRateTracker
	dropped   atomic.Uint64
}

var _ quiver.Instrument = (*Feed)(nil)

// NewFeed creates a feed and starts its broadcast loop. A bufSize of
// zero or less defaults to 256 queued events. A maxPerSecond of zero
// leaves the feed unthrottled.
func NewFeed(bufSize, maxPerSecond int) *Feed {
	if bufSize <= 0 {
		bufSize = 256
	}

	f := &Feed{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local debugging tool
			},
		},
		events: make(chan Event, bufSize),
		done:   make(chan struct{}),
	}
	if maxPerSecond > 0 {
		f.rate = quiver.NewFlushRateTracker(time.Second, maxPerSecond)
	}

	go f.run()
	return f
}

// SignalWrite implements quiver.Instrument.
func (f *Feed) SignalWrite(id uint64, name string) {
	f.push(Event{Type: EventWrite, ID: id, Name: name})
}

// MemoRecompute implements quiver.Instrument.
func (f *Feed) MemoRecompute(id uint64, name string, d time.Duration) {
	f.push(Event{Type: EventMemo, ID: id, Name: name, Micros: d.Microseconds()})
}

// EffectRun implements quiver.Instrument.
func (f *Feed) EffectRun(id uint64, name string, d time.Duration) {
	f.push(Event{Type: EventEffect, ID: id, Name: name, Micros: d.Microseconds()})
}

// SubscriberNotify implements quiver.Instrument.
func (f *Feed) SubscriberNotify(id uint64, name string) {
	f.push(Event{Type: EventNotify, ID: id, Name: name})
}

// FlushStart implements quiver.Instrument.
func (f *Feed) FlushStart(depth int) {
	f.push(Event{Type: EventFlushStart, Depth: depth})
}

// FlushEnd implements quiver.Instrument.
func (f *Feed) FlushEnd(rounds, entries int, d time.Duration) {
	f.push(Event{Type: EventFlushEnd, Rounds: rounds, Entries: entries, Micros: d.Microseconds()})
}

// push enqueues an event without blocking the caller. Instrument
// callbacks run inside the engine's write and flush paths, so a slow
// WebSocket client must never stall them.
func (f *Feed) push(ev Event) {
	if f.rate != nil && !f.rate.Allow() {
		f.dropped.Add(1)
		return
	}

	select {
	case f.events <- ev:
		return
	default:
	}

	// Full queue: evict the oldest entry and retry once. If another
	// producer wins both races, drop this event instead.
	select {
	case <-f.events:
		f.dropped.Add(1)
	default:
	}
	select {
	case f.events <- ev:
	default:
		f.dropped.Add(1)
	}
}

func (f *Feed) run() {
	for {
		select {
		case ev := <-f.events:
			f.broadcast(ev)
		case <-f.done:
			return
		}
	}
}

// broadcast sends one event to all connected clients.
func (f *Feed) broadcast(ev Event) {
	f.mu.RLock()
	idle := len(f.clients) == 0
	f.mu.RUnlock()
	if idle {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	f.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.mu.RUnlock()

	for _, client := range clients {
		err := client.WriteMessage(websocket.TextMessage, data)
		if err != nil {
			f.mu.Lock()
			delete(f.clients, client)
			f.mu.Unlock()
			client.Close()
		}
	}
}

// HandleWebSocket upgrades the connection and streams events until the
// client disconnects. Clients only receive; anything they send is
// discarded.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.clients[conn] = true
	f.mu.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}

	f.mu.Lock()
	delete(f.clients, conn)
	f.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Dropped returns the number of events discarded because the queue
// was full or the rate cap was hit.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

// Close stops the broadcast loop and closes all client connections.
// Events pushed after Close accumulate in the queue and are never
// delivered; detach the feed from the engine first.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })

	f.mu.Lock()
	defer f.mu.Unlock()

	for client := range f.clients {
		client.Close()
		delete(f.clients, client)
	}
}
