package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gora/internal"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	StreamID string
	Channel  chan StreamEvent
}

// StreamEvent is a run progress event for SSE streaming
type StreamEvent struct {
	StreamID  string                 `json:"stream_id"`
	EventType string                 `json:"event_type"`
	RunID     string                 `json:"run_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Stream event types
const (
	EventLevel    = "level"
	EventFinished = "finished"
	EventFailed   = "failed"
)

// SSEHub fans run events out to the clients watching a stream
type SSEHub struct {
	clients    map[string]map[chan StreamEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan StreamEvent
	done       chan struct{}
	closeOnce  sync.Once
	keepAlive  time.Duration
	logger     *internal.Logger
}

// NewSSEHub creates a new SSE hub and starts its loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:    make(map[string]map[chan StreamEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan StreamEvent, 100),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
		logger:     logger.Named("sse"),
	}

	go hub.run()
	return hub
}

// Close stops the hub loop.
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.StreamID] == nil {
				h.clients[client.StreamID] = make(map[chan StreamEvent]bool)
			}
			h.clients[client.StreamID][client.Channel] = true
			h.logger.Debug("client registered for stream %s (total clients: %d)",
				client.StreamID, len(h.clients[client.StreamID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.StreamID]; exists {
				if clients[client.Channel] {
					delete(clients, client.Channel)
					close(client.Channel)
				}
				if len(clients) == 0 {
					delete(h.clients, client.StreamID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.StreamID] {
				select {
				case clientChan <- event:
				default:
					h.logger.Warn("client channel full for stream %s, skipping event", event.StreamID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Subscribe registers a client channel for a stream. The returned function
// unregisters it.
func (h *SSEHub) Subscribe(streamID string) (<-chan StreamEvent, func()) {
	ch := make(chan StreamEvent, 10)
	client := SSEClient{StreamID: streamID, Channel: ch}
	h.register <- client
	return ch, func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}
}

// Broadcast sends an event to all clients listening to a stream
func (h *SSEHub) Broadcast(event StreamEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping %s event", event.EventType)
	}
}

// ClientCount returns the number of active clients for a stream
func (h *SSEHub) ClientCount(streamID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[streamID])
}

// HandleSSE streams the events of the stream named by the stream query parameter
func (h *SSEHub) HandleSSE(c *gin.Context) {
	streamID := c.Query("stream")
	if streamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stream parameter required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events, unsubscribe := h.Subscribe(streamID)
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return event.EventType != EventFinished && event.EventType != EventFailed

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status": "alive"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}
