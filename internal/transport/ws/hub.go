package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Maxim12412/Monopolista/internal/model"
)

// Hub manages WebSocket connections for rooms. It implements
// service.Broadcaster: the game core pushes snapshots and events through it
// and never touches sockets directly.
type Hub struct {
	// roomCode -> playerID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	evict      chan string

	// OnDisconnect is invoked after a connection detaches, outside the hub
	// lock. Set once at wiring time.
	OnDisconnect func(roomCode, playerID string)
}

// Connection represents a WebSocket connection bound to one player.
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast.
type BroadcastMessage struct {
	RoomCode string
	ToPlayer string // Empty means every player in the room
	Message  *model.Envelope
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		evict:      make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			// A reconnect supersedes any stale connection for the player.
			if existing, ok := h.conns[conn.RoomCode][conn.PlayerID]; ok {
				close(existing.Send)
			}
			h.conns[conn.RoomCode][conn.PlayerID] = conn
			h.mu.Unlock()
			log.Printf("Player %s connected to room %s", conn.PlayerID, conn.RoomCode)

		case conn := <-h.unregister:
			h.mu.Lock()
			detached := false
			if players, ok := h.conns[conn.RoomCode]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					detached = true
					if len(players) == 0 {
						delete(h.conns, conn.RoomCode)
					}
				}
			}
			h.mu.Unlock()
			if detached {
				log.Printf("Player %s disconnected from room %s", conn.PlayerID, conn.RoomCode)
				if h.OnDisconnect != nil {
					// Off the hub loop: the handler may broadcast or evict,
					// which round-trips through this loop.
					go h.OnDisconnect(conn.RoomCode, conn.PlayerID)
				}
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToPlayer != "" {
				if players, ok := h.conns[msg.RoomCode]; ok {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
							// Drop message if buffer full
						}
					}
				}
			} else {
				if players, ok := h.conns[msg.RoomCode]; ok {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()

		case roomCode := <-h.evict:
			h.mu.Lock()
			if players, ok := h.conns[roomCode]; ok {
				for _, conn := range players {
					close(conn.Send)
				}
				delete(h.conns, roomCode)
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends a message to every player in a room (implements
// service.Broadcaster).
func (h *Hub) BroadcastToRoom(roomCode string, msgType model.MessageType, payload any) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		Message: &model.Envelope{
			Type:    msgType,
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements
// service.Broadcaster).
func (h *Hub) BroadcastToPlayer(roomCode, playerID string, msgType model.MessageType, payload any) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		ToPlayer: playerID,
		Message: &model.Envelope{
			Type:    msgType,
			Payload: data,
		},
	}
}

// DisconnectRoom drops every connection of a room (implements
// service.Broadcaster). Used when a room is evicted.
func (h *Hub) DisconnectRoom(roomCode string) {
	h.evict <- roomCode
}
