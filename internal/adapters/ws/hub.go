// Package ws streams replay frames to browser viewers over WebSocket and
// accepts playback commands from them.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bft-labs/jointreplay/internal/domain"
	"github.com/bft-labs/jointreplay/internal/ports"
)

const writeTimeout = 2 * time.Second

// Command types accepted from clients.
const (
	CommandPlay         = "play"
	CommandPause        = "pause"
	CommandStop         = "stop"
	CommandSeek         = "seek"
	CommandSeekSequence = "seek_sequence"
	CommandSpeed        = "speed"
)

// Command is a playback request sent by a client.
type Command struct {
	Type       string  `json:"type"`
	Index      int     `json:"index,omitempty"`
	SequenceID int64   `json:"sequenceId,omitempty"`
	Speed      float64 `json:"speed,omitempty"`

	// ClientID is set by the hub.
	ClientID string `json:"-"`
}

// CommandHandler executes a client command. A returned error is sent back to
// that client as an error message.
type CommandHandler func(cmd Command) error

type helloMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

type frameMessage struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq"`
	domain.Frame
}

type stateMessage struct {
	Type   string `json:"type"`
	Seq    uint64 `json:"seq"`
	State  string `json:"state"`
	Reason string `json:"reason"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla connections allow one concurrent writer
}

func (c *client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub tracks connected viewers and fans frames out to them.
type Hub struct {
	logger   ports.Logger
	upgrader websocket.Upgrader
	seq      atomic.Uint64

	mu      sync.RWMutex
	clients map[string]*client
	handler CommandHandler
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger ports.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: map[string]*client{},
	}
}

// SetCommandHandler registers the handler for client commands.
func (h *Hub) SetCommandHandler(fn CommandHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts a frame. Clients whose write fails are dropped.
func (h *Hub) Publish(frame domain.Frame) {
	h.broadcast(frameMessage{Type: "frame", Seq: h.seq.Add(1), Frame: frame})
}

// PublishState broadcasts a playback state change.
func (h *Hub) PublishState(state, reason string) {
	h.broadcast(stateMessage{Type: "state", Seq: h.seq.Add(1), State: state, Reason: reason})
}

func (h *Hub) broadcast(msg interface{}) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.writeJSON(msg); err != nil {
			h.logger.Warn("dropping client after write error",
				ports.String("client_id", c.id),
				ports.Err(err),
			)
			h.remove(c)
		}
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", ports.Err(err))
		return
	}

	c := &client{id: uuid.New().String(), conn: conn}
	if !h.add(c) {
		conn.Close()
		return
	}
	defer h.remove(c)

	if err := c.writeJSON(helloMessage{Type: "hello", ClientID: c.id}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", ports.String("client_id", c.id), ports.Err(err))
			}
			return
		}
		h.handle(c, data)
	}
}

func (h *Hub) handle(c *client, data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		_ = c.writeJSON(errorMessage{Type: "error", Message: "invalid command: " + err.Error()})
		return
	}
	cmd.ClientID = c.id

	h.mu.RLock()
	fn := h.handler
	h.mu.RUnlock()
	if fn == nil {
		return
	}

	h.logger.Debug("command received", ports.String("client_id", c.id), ports.String("type", cmd.Type))
	if err := fn(cmd); err != nil {
		_ = c.writeJSON(errorMessage{Type: "error", Message: err.Error()})
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	h.logger.Info("client connected", ports.String("client_id", c.id), ports.Int("clients", len(h.clients)))
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.logger.Info("client disconnected", ports.String("client_id", c.id), ports.Int("clients", n))
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = map[string]*client{}
	h.mu.Unlock()

	for _, c := range clients {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeTimeout))
		c.writeMu.Unlock()
		c.conn.Close()
	}
}
