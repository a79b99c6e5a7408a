package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 64
)

// Hub fans realtime notifications out to every open socket of a user.
type Hub struct {
	connections map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message

	mu sync.RWMutex
}

type Connection struct {
	ws       *websocket.Conn
	userUUID string
	send     chan *Message
	hub      *Hub
}

type Message struct {
	UserUUID string `json:"userUUID,omitempty"`
	Type     string `json:"type"`
	Channel  string `json:"channel,omitempty"`
	Data     any    `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *Message, 256),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.RLock()
			var conns []*Connection
			for _, m := range h.connections {
				for c := range m {
					conns = append(conns, c)
				}
			}
			h.mu.RUnlock()

			// closed outside the lock so the pumps can unregister
			for _, c := range conns {
				_ = c.ws.Close()
			}
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.userUUID] == nil {
				h.connections[conn.userUUID] = make(map[*Connection]struct{})
			}
			h.connections[conn.userUUID][conn] = struct{}{}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.drop(conn)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.connections[message.UserUUID] {
				select {
				case conn.send <- message:
				default:
					slog.Warn("websocket client too slow, dropping", "user_uuid", conn.userUUID)
					h.drop(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(conn *Connection) {
	conns, ok := h.connections[conn.userUUID]
	if !ok {
		return
	}
	if _, exists := conns[conn]; !exists {
		return
	}
	delete(conns, conn)
	close(conn.send)
	if len(conns) == 0 {
		delete(h.connections, conn.userUUID)
	}
}

// Broadcast queues message for userUUID; it never blocks.
func (h *Hub) Broadcast(userUUID string, message *Message) bool {
	message.UserUUID = userUUID
	select {
	case h.broadcast <- message:
		return true
	default:
		slog.Warn("hub broadcast channel is full, dropping message", "user_uuid", userUUID)
		return false
	}
}

// Online returns how many sockets userUUID currently holds.
func (h *Hub) Online(userUUID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userUUID])
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, userUUID string) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := &Connection{
		ws:       ws,
		userUUID: userUUID,
		send:     make(chan *Message, sendBuffer),
		hub:      h,
	}

	h.register <- conn

	go conn.writePump()
	go conn.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "user_uuid", c.userUUID, "error", err)
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(message); err != nil {
				slog.Debug("websocket write error", "user_uuid", c.userUUID, "error", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
