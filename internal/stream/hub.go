// Package stream pushes cube state changes to websocket clients
// watching a session.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	rubik "github.com/SeamusWaldron/rubik_server"
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

	// Pending broadcasts held while the hub loop is busy.
	broadcastBuffer = 256
)

// Message is what clients receive for every change to their session.
type Message struct {
	SessionID string             `json:"session_id"`
	Event     string             `json:"event"`
	Facelets  string             `json:"cube_string,omitempty"`
	Moves     []string           `json:"moves,omitempty"`
	Solution  *rubik.SolveResult `json:"solution,omitempty"`
}

// MessageFromEvent converts a cube event to a client message.
func MessageFromEvent(sessionID string, ev rubik.Event) *Message {
	msg := &Message{
		SessionID: sessionID,
		Event:     string(ev.Kind),
		Facelets:  ev.Facelets,
		Solution:  ev.Solution,
	}
	for _, m := range ev.Moves {
		msg.Moves = append(msg.Moves, m.String())
	}
	return msg
}

// Client is one websocket connection watching a session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages.
// All client bookkeeping happens on the goroutine running Run.
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	closeAll   chan string
	counts     chan countRequest
	done       chan struct{}

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeAll:   make(chan string, broadcastBuffer),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// SetOriginCheck replaces the upgrader's origin check.
func (h *Hub) SetOriginCheck(check func(*http.Request) bool) {
	h.upgrader.CheckOrigin = check
}

// Run starts the hub's event loop. It returns when ctx is done, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id := range h.sessions {
				h.closeSession(id)
			}
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case id := <-h.closeAll:
			h.closeSession(id)

		case req := <-h.counts:
			req.reply <- len(h.sessions[req.sessionID])
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to sessionID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Publish queues msg for every client watching its session. It never
// blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("dropped websocket broadcast", "session", msg.SessionID, "event", msg.Event)
	}
}

// Observer returns a rubik.Cube observer publishing the session's events.
func (h *Hub) Observer(sessionID string) func(rubik.Event) {
	return func(ev rubik.Event) {
		h.Publish(MessageFromEvent(sessionID, ev))
	}
}

// CloseSession disconnects every client watching sessionID.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeAll <- sessionID:
	default:
		h.logger.Warn("dropped websocket close", "session", sessionID)
	}
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// Clients returns how many connections watch sessionID. It returns 0
// once the hub has stopped.
func (h *Hub) Clients(sessionID string) int {
	req := countRequest{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Debug("websocket client registered",
		"session", client.sessionID, "clients", len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	h.logger.Debug("websocket client unregistered",
		"session", client.sessionID, "clients", len(clients))
}

func (h *Hub) closeSession(id string) {
	for client := range h.sessions[id] {
		h.unregisterClient(client)
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "error", err)
		return
	}

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			// Slow reader.
			h.unregisterClient(client)
		}
	}
}

// readPump discards client input and notices the connection closing.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read failed", "session", c.sessionID, "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection.
// Each message is sent in its own frame.
func (c *Client) writePump() {
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
				// The hub closed the channel
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
