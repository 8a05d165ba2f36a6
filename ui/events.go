package ui

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"orderboard/domain/order"
	"orderboard/internal"
)

const pingInterval = 30 * time.Second

// BoardEvent tells open boards that a new dataset is available
type BoardEvent struct {
	EventType   string    `json:"event_type"`
	LoadID      string    `json:"load_id"`
	Rows        int       `json:"rows"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// EventHub fans dataset load notifications out to Server-Sent Events clients
type EventHub struct {
	clients    map[chan BoardEvent]bool
	clientsMu  sync.RWMutex
	register   chan chan BoardEvent
	unregister chan chan BoardEvent
	broadcast  chan BoardEvent
	done       chan struct{}
	closeOnce  sync.Once
	logger     *internal.Logger
}

// NewEventHub creates a hub and starts its loop
func NewEventHub(logger *internal.Logger) *EventHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &EventHub{
		clients:    make(map[chan BoardEvent]bool),
		register:   make(chan chan BoardEvent, 10),
		unregister: make(chan chan BoardEvent, 10),
		broadcast:  make(chan BoardEvent, 100),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("SSE"),
	}

	go hub.run()
	return hub
}

// run processes hub operations until Close
func (h *EventHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.logger.Debug("client registered (total clients: %d)", len(h.clients))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client)
				h.logger.Debug("client unregistered (remaining clients: %d)", len(h.clients))
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					h.logger.Warn("client channel full, skipping %s", event.EventType)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			h.clientsMu.Lock()
			for client := range h.clients {
				close(client)
			}
			h.clients = make(map[chan BoardEvent]bool)
			h.clientsMu.Unlock()
			return
		}
	}
}

// DatasetLoaded broadcasts a load to every connected board
func (h *EventHub) DatasetLoaded(ds *order.Dataset) {
	h.Broadcast(BoardEvent{
		EventType:   "dataset_loaded",
		LoadID:      ds.LoadID.String(),
		Rows:        ds.Len(),
		Fingerprint: ds.Fingerprint.Short(),
		LoadedAt:    ds.LoadedAt,
	})
}

// Broadcast queues an event for all clients
func (h *EventHub) Broadcast(event BoardEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event: %s", event.EventType)
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close stops the hub and disconnects every client
func (h *EventHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *EventHub) subscribe() (chan BoardEvent, bool) {
	select {
	case <-h.done:
		return nil, false
	default:
	}

	client := make(chan BoardEvent, 10)
	select {
	case h.register <- client:
		return client, true
	case <-h.done:
		return nil, false
	}
}

func (h *EventHub) unsubscribe(client chan BoardEvent) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// HandleSSE streams board events to the browser
func (h *EventHub) HandleSSE(c *gin.Context) {
	client, ok := h.subscribe()
	if !ok {
		c.JSON(503, gin.H{"error": "event stream closed"})
		return
	}
	defer h.unsubscribe(client)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-client:
			if !open {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(payload))
			return true

		case t := <-ticker.C:
			c.SSEvent("ping", `{"status":"alive","timestamp":"`+t.Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
