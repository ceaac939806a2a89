// Package sse implements a Server-Sent Events broker that pushes cheatsheet
// and configuration changes to connected viewers.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeFileChanged   = "file_changed"
	TypeConfigChanged = "cognitio_config_changed"
	TypeTreeChanged   = "tree_changed"
)

// DefaultKeepAlive is the interval between comment frames on idle streams.
const DefaultKeepAlive = 25 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// FileChanged is the payload of a file_changed event.
type FileChanged struct {
	Path  string `json:"path"`
	Event string `json:"event"`
}

// ConfigChanged is the payload of a cognitio_config_changed event.
type ConfigChanged struct {
	Config any `json:"config"`
}

// TreeChanged is the payload of a tree_changed hint. Changes counts the file
// events folded into it.
type TreeChanged struct {
	Changes int `json:"changes"`
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal loop owns the client set, the event sequence and the
// pending tree hint. Public methods talk to the loop through channels.
type Broker struct {
	treeWindow time.Duration
	keepAlive  time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	fileEventCh   chan FileChanged
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the idle keep-alive interval of ServeHTTP streams.
// Zero disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// NewBroker creates a broker. File events open a window of treeWindow; when
// it ends, a single tree_changed hint covers every file event seen in it.
func NewBroker(treeWindow time.Duration, opts ...Option) *Broker {
	if treeWindow <= 0 {
		treeWindow = 2 * time.Second
	}

	b := &Broker{
		treeWindow:    treeWindow,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		fileEventCh:   make(chan FileChanged, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	// Pending tree hint. treeDue is nil while no window is open.
	var treeDue <-chan time.Time
	pending := 0

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case fc := <-b.fileEventCh:
			broadcast(Event{Type: TypeFileChanged, Data: fc})
			pending++
			if treeDue == nil {
				treeDue = time.After(b.treeWindow)
			}

		case <-treeDue:
			broadcast(Event{Type: TypeTreeChanged, Data: TreeChanged{Changes: pending}})
			pending = 0
			treeDue = nil

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishFileChanged publishes a file_changed event and schedules a
// tree_changed hint. kind is one of created, modified, removed.
func (b *Broker) PublishFileChanged(path, kind string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.fileEventCh <- FileChanged{Path: path, Event: kind}:
	case <-b.stopped:
	}
}

// PublishConfigChanged publishes the reloaded configuration.
func (b *Broker) PublishConfigChanged(cfg any) {
	b.Publish(Event{Type: TypeConfigChanged, Data: ConfigChanged{Config: cfg}})
}

// ServeHTTP is the SSE endpoint handler (GET /events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
