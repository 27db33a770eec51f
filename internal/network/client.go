package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/redhaven/colony/internal/screen"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // render clients are served from other origins during development
	},
}

// InputMessage is what a render client sends: the keys held right now.
type InputMessage struct {
	Pressed []string `json:"pressed"`
}

// Input converts the message into the stack's key set. Unknown key names
// are returned separately.
func (m InputMessage) Input() (screen.Input, []string) {
	var keys []screen.Key
	var unknown []string
	for _, name := range m.Pressed {
		k, ok := screen.ParseKey(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		keys = append(keys, k)
	}
	return screen.Pressed(keys...), unknown
}

// Client is one render client connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.sendBuffer),
	}
}

// ServeWs upgrades the request and starts the client's pumps.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.metrics.RecordWSError()
		hub.logger.Error("Failed to upgrade websocket connection: " + err.Error())
		return
	}

	client := NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps input messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.SetInput(screen.Input{}) // release keys held by a vanished client
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.metrics.RecordWSError()
				c.hub.logger.Warn("Render client read failed: " + err.Error())
			}
			break
		}
		c.hub.metrics.RecordWSMessage(true)

		var msg InputMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Error("Failed to parse InputMessage from WebSocket. err: " + err.Error())
			continue
		}
		in, unknown := msg.Input()
		for _, name := range unknown {
			c.hub.logger.Debug("Ignoring unknown key " + name)
		}
		c.hub.SetInput(in)
	}
}

// WritePump pumps frames from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
