package websocket

import (
	"context"
	"sync"
	"time"

	"roomcompare/internal/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// outbound is a payload for every connection of a session, or for one connection.
type outbound struct {
	sessionID string
	conn      *websocket.Conn
	payload   []byte
}

type registration struct {
	conn      *websocket.Conn
	sessionID string
}

// HubService owns the page connections. All writes happen on the Run
// goroutine, so a connection never has concurrent writers.
type HubService struct {
	clients    map[*websocket.Conn]string // connection -> session id
	send       chan outbound
	register   chan registration
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]string),
		send:       make(chan outbound, 64),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run dispatches registrations and messages until ctx is done, then closes every connection.
func (h *HubService) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return nil

		case reg := <-h.register:
			h.mutex.Lock()
			h.clients[reg.conn] = reg.sessionID
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client connected for session %s. Total: %d", reg.sessionID, count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client disconnected. Total: %d", count)

		case msg := <-h.send:
			h.deliver(msg)
		}
	}
}

func (h *HubService) deliver(msg outbound) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client, sessionID := range h.clients {
		if msg.conn != nil && client != msg.conn {
			continue
		}
		if msg.conn == nil && sessionID != msg.sessionID {
			continue
		}

		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
			h.logger.Error("Error sending message: %v", err)
			delete(h.clients, client)
			client.Close()
		}
	}
}

// Register attaches a connection to a session.
func (h *HubService) Register(client *websocket.Conn, sessionID string) {
	select {
	case h.register <- registration{conn: client, sessionID: sessionID}:
	case <-h.done:
		client.Close()
	}
}

// Unregister detaches and closes a connection.
func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send queues payload for every connection of a session.
func (h *HubService) Send(sessionID string, payload []byte) {
	select {
	case h.send <- outbound{sessionID: sessionID, payload: payload}:
	case <-h.done:
	}
}

// SendTo queues payload for a single connection.
func (h *HubService) SendTo(client *websocket.Conn, payload []byte) {
	select {
	case h.send <- outbound{conn: client, payload: payload}:
	case <-h.done:
	}
}

// ClientCount returns the number of open connections.
func (h *HubService) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
