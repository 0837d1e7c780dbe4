package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

// ClientMessage is what a live price display may send back
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client is one websocket subscriber of a configuration session
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte

	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}
}

// Hub fans session events out to every connected display of that session
type Hub struct {
	// SessionID -> connected clients (one session may be open in several tabs)
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	direct     chan *directMessage
	quit       chan struct{}

	mu sync.RWMutex
}

type BroadcastMessage struct {
	SessionID string
	Message   []byte
	// Close disconnects the session's clients once earlier messages are queued to them
	Close bool
}

// directMessage is a reply to one client, delivered only while it is still registered
type directMessage struct {
	client  *Client
	message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		direct:     make(chan *directMessage, 256),
		quit:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.SessionID]; !ok {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			total := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"listeners":  total,
			})

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			if message.Close {
				h.closeSession(message.SessionID)
				continue
			}

			h.mu.RLock()
			var stalled []*Client
			for client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"session_id": client.SessionID,
				})
				h.removeClient(client)
			}

		case reply := <-h.direct:
			h.mu.RLock()
			registered := h.clients[reply.client.SessionID][reply.client]
			stalled := false
			if registered {
				select {
				case reply.client.Send <- reply.message:
				default:
					stalled = true
				}
			}
			h.mu.RUnlock()

			if stalled {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"session_id": reply.client.SessionID,
				})
				h.removeClient(reply.client)
			}

		case <-h.quit:
			h.mu.Lock()
			for sessionID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, sessionID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.SessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, client.SessionID)
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id": client.SessionID,
		"listeners":  len(clients),
	})
}

func (h *Hub) Stop() {
	close(h.quit)
}

// SendToSession queues message for every client watching sessionID.
// A full broadcast queue drops the message; the next change carries fresh totals anyway.
func (h *Hub) SendToSession(sessionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

// CloseSession disconnects every client of a committed or discarded session.
// Messages sent to the session before the call are still delivered.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Close: true}:
	case <-h.quit:
	}
}

func (h *Hub) closeSession(sessionID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[sessionID]))
	for client := range h.clients[sessionID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.removeClient(client)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ListenerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// HandleClientMessage answers pings; anything else is ignored
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(map[string]string{"type": "pong"})
		// Send is owned by the hub goroutine, which may already have closed it
		select {
		case h.direct <- &directMessage{client: client, message: data}:
		default:
			logger.Warn("Reply channel full, pong dropped", map[string]interface{}{
				"session_id": client.SessionID,
			})
		}
	}
}
