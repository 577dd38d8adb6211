package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

// Hub manages client connections and room broadcast groups.
// Deliveries never block: each client has a bounded queue drained by its own
// writer goroutine and a full queue drops the frame for that client only.
type Hub struct {
	clients map[string]*Client         // connID -> Client
	rooms   map[string]map[string]bool // room -> set of connIDs
	mu      sync.RWMutex
	config  Config
	logger  types.Logger
	done    chan struct{}
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger, opts ...Option) *Hub {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
		config:  cfg,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled and then closes every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.logger.Info("Hub shutting down", "clients", h.ClientCount())
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
	h.mu.Unlock()

	for _, client := range clients {
		close(client.send)
		_ = client.conn.Close()
	}
}

// Register adds a connection and starts its writer.
func (h *Hub) Register(connID string, conn Conn) *Client {
	client := newClient(connID, conn, h.config, h.logger)

	h.mu.Lock()
	if old, exists := h.clients[connID]; exists {
		h.removeLocked(old)
	}
	h.clients[connID] = client
	count := len(h.clients)
	h.mu.Unlock()

	go client.writePump()
	h.logger.Debug("Client registered", "connID", connID, "clients", count)
	return client
}

// Unregister removes a connection from the hub and its room, then waits up to
// the write timeout for queued frames to be flushed.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	client, ok := h.clients[connID]
	if ok {
		h.removeLocked(client)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	select {
	case <-client.done:
	case <-time.After(h.config.WriteTimeout):
		h.logger.Warn("Timed out flushing client queue", "connID", connID)
	}
	h.logger.Debug("Client unregistered", "connID", connID)
}

// removeLocked must be called with h.mu held for writing.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client.ID)
	h.leaveRoomLocked(client)
	close(client.send)
}

func (h *Hub) leaveRoomLocked(client *Client) {
	if client.Room == "" {
		return
	}
	if members := h.rooms[client.Room]; members != nil {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, client.Room)
		}
	}
	client.Room = ""
}

// Subscribe adds a registered connection to the broadcast group of room.
func (h *Hub) Subscribe(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	h.leaveRoomLocked(client)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][connID] = true
	client.Room = room
	return true
}

// Unsubscribe removes a connection from its broadcast group.
func (h *Hub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[connID]; ok {
		h.leaveRoomLocked(client)
	}
}

// SendFrame queues a frame for one connection.
func (h *Hub) SendFrame(connID string, frame Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to marshal frame", "type", frame.Type, "error", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	return h.enqueueLocked(client, data)
}

// Send queues an event for one connection.
func (h *Hub) Send(connID, event string, payload any) bool {
	frame, err := NewFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode event", "event", event, "error", err)
		return false
	}
	return h.SendFrame(connID, frame)
}

// BroadcastToRoom queues an event for every member of room except
// exceptConnID (empty excludes nobody). It returns the number of members the
// frame was queued for.
func (h *Hub) BroadcastToRoom(room, event string, payload any, exceptConnID string) int {
	frame, err := NewFrame(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode event", "event", event, "error", err)
		return 0
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to marshal frame", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for connID := range h.rooms[room] {
		if connID == exceptConnID {
			continue
		}
		if client, ok := h.clients[connID]; ok && h.enqueueLocked(client, data) {
			delivered++
		}
	}
	return delivered
}

// enqueueLocked must be called with h.mu held; removeLocked closes the queue
// only under the write lock.
func (h *Hub) enqueueLocked(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		h.logger.Warn("Client queue full, dropping frame", "connID", client.ID)
		return false
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of clients subscribed to a room.
func (h *Hub) RoomClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
