package ws

import (
	"encoding/json"
	"sync"

	"kenolive/internal/logger"
	"kenolive/internal/model"
)

// Hub manages WebSocket connections and the named groups they subscribe to
type Hub struct {
	conns  map[string]*Connection         // connID -> conn
	groups map[string]map[string]struct{} // group -> connIDs

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	membership chan *membershipChange
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once
}

// Connection represents a WebSocket connection
type Connection struct {
	ID       string
	Identity *model.Identity // nil for anonymous observers
	Send     chan []byte
}

type membershipChange struct {
	group  string
	connID string
	join   bool
}

// BroadcastMessage is a message to fan out
type BroadcastMessage struct {
	Group  string // Empty means ConnID only
	ConnID string
	Data   []byte
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		groups:     make(map[string]map[string]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		membership: make(chan *membershipChange),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			logger.Debugf("connection %s registered", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				for name, members := range h.groups {
					delete(members, conn.ID)
					if len(members) == 0 {
						delete(h.groups, name)
					}
				}
				close(conn.Send)
				logger.Debugf("connection %s unregistered", conn.ID)
			}
			h.mu.Unlock()

		case change := <-h.membership:
			h.mu.Lock()
			members := h.groups[change.group]
			if change.join {
				if members == nil {
					members = make(map[string]struct{})
					h.groups[change.group] = members
				}
				members[change.connID] = struct{}{}
			} else if members != nil {
				delete(members, change.connID)
				if len(members) == 0 {
					delete(h.groups, change.group)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			if msg.Group == "" {
				if conn, ok := h.conns[msg.ConnID]; ok {
					h.deliver(conn, msg.Data)
				}
			} else {
				for connID := range h.groups[msg.Group] {
					if conn, ok := h.conns[connID]; ok {
						h.deliver(conn, msg.Data)
					}
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		// Drop message if buffer full
		logger.Warnf("connection %s send buffer full, message dropped", conn.ID)
	}
}

// Close stops the hub loop; later calls become no-ops
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes a connection from the hub and from every group
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// JoinGroup subscribes connID to group (implements service.Broadcaster)
func (h *Hub) JoinGroup(group, connID string) {
	h.changeMembership(&membershipChange{group: group, connID: connID, join: true})
}

// LeaveGroup unsubscribes connID from group (implements service.Broadcaster)
func (h *Hub) LeaveGroup(group, connID string) {
	h.changeMembership(&membershipChange{group: group, connID: connID})
}

func (h *Hub) changeMembership(change *membershipChange) {
	select {
	case h.membership <- change:
	case <-h.done:
	}
}

// BroadcastToGroup sends msg to every member of group (implements service.Broadcaster)
func (h *Hub) BroadcastToGroup(group string, msg interface{}) {
	h.enqueue(&BroadcastMessage{Group: group}, msg)
}

// SendToConnection sends msg to one connection (implements service.Broadcaster)
func (h *Hub) SendToConnection(connID string, msg interface{}) {
	h.enqueue(&BroadcastMessage{ConnID: connID}, msg)
}

func (h *Hub) enqueue(out *BroadcastMessage, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("failed to encode outbound message: %v", err)
		return
	}
	out.Data = data

	select {
	case h.broadcast <- out:
	case <-h.done:
	}
}

// GroupSize returns the number of connections subscribed to group
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
