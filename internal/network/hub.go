package network

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/redhaven/colony/internal/engine"
	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/internal/platform/metrics"
	"github.com/redhaven/colony/internal/screen"
)

// Frame is one rendered update sent to every render client.
type Frame struct {
	Seq    int64                `json:"seq"`
	Screen screen.ID            `json:"screen"`
	Scene  engine.Scene         `json:"scene"`
	Popups []screen.ActivePopup `json:"popups"`
}

// Hub maintains the set of active clients, broadcasts frames to them and
// keeps the latest input they sent.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
	metrics    *metrics.Collector
	sendBuffer int

	inputMu sync.Mutex
	input   screen.Input
	seq     int64
}

// NewHub initializes a new WebSocket Hub. sendBuffer bounds how many frames
// may queue for one slow client before it is dropped.
func NewHub(log *logger.Logger, m *metrics.Collector, sendBuffer int) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 1),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		metrics:    m,
		sendBuffer: sendBuffer,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.metrics.RecordWSConnection(1)
			h.logger.Info("New render client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.metrics.RecordWSConnection(-1)
				h.logger.Info("Render client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					h.metrics.RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					h.metrics.RecordWSConnection(-1)
					h.metrics.RecordWSError()
					h.logger.Warn("Dropped render client that fell behind")
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastFrame serializes a frame and queues it for every client. The
// frame loop never waits on the network: when the previous frame has not
// been picked up yet, it is replaced.
func (h *Hub) BroadcastFrame(frame Frame) {
	frame.Seq = atomic.AddInt64(&h.seq, 1)
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to serialize frame for WebSocket broadcast: " + err.Error())
		return
	}
	for {
		select {
		case h.broadcast <- payload:
			return
		default:
		}
		select {
		case <-h.broadcast:
		default:
		}
	}
}

// SetInput records the keys a client reports as held.
func (h *Hub) SetInput(in screen.Input) {
	h.inputMu.Lock()
	h.input = in
	h.inputMu.Unlock()
}

// Input returns the latest held keys. The screen stack derives fresh
// presses from consecutive values.
func (h *Hub) Input() screen.Input {
	h.inputMu.Lock()
	defer h.inputMu.Unlock()
	return h.input
}
