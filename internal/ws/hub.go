package ws

import (
	"context"
	"encoding/json"
	"sync"

	"saas-commerce/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	Conn     Conn
	TenantID uuid.UUID
}

// Message is delivered only to clients of its tenant.
type Message struct {
	TenantID uuid.UUID
	Payload  []byte
}

// Hub fans domain events out to connected dashboards.
type Hub struct {
	Clients    map[Conn]uuid.UUID
	Register   chan Client
	Unregister chan Conn
	Broadcast  chan Message
	mutex      sync.Mutex
	log        *zap.Logger
	done       chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Conn]uuid.UUID),
		Register:   make(chan Client),
		Unregister: make(chan Conn),
		Broadcast:  make(chan Message, 256),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
// It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case client := <-h.Register:
			h.mutex.Lock()
			h.Clients[client.Conn] = client.TenantID
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("tenant_id", client.TenantID.String()))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn, tenantID := range h.Clients {
				if tenantID != message.TenantID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, message.Payload); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Join registers a client. It reports false, closing the connection, when the
// hub has already stopped.
func (h *Hub) Join(client Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		client.Conn.Close()
		return false
	}
}

// Leave unregisters conn. After shutdown the hub already closed it.
func (h *Hub) Leave(conn Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Publish queues events for their tenant's clients. When the queue is full the
// event is dropped; the transaction that raised it has already committed.
func (h *Hub) Publish(_ context.Context, events ...model.Event) {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			h.log.Warn("encode ws event", zap.String("type", string(e.Type)), zap.Error(err))
			continue
		}
		select {
		case h.Broadcast <- Message{TenantID: e.TenantID, Payload: payload}:
		default:
			h.log.Warn("ws queue full, event dropped", zap.String("type", string(e.Type)))
		}
	}
}

// Connections counts the clients of one tenant.
func (h *Hub) Connections(tenantID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, t := range h.Clients {
		if t == tenantID {
			n++
		}
	}
	return n
}
