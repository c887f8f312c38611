// internal/socket/hub.go
package socket

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Lead messages
	MessageLeadCreated       MessageType = "lead_created"
	MessageLeadUpdated       MessageType = "lead_updated"
	MessageLeadStatusChanged MessageType = "lead_status_changed"
	MessageLeadConverted     MessageType = "lead_converted"
	MessageLeadRejected      MessageType = "lead_rejected"

	// Project messages
	MessageProjectUpdated       MessageType = "project_updated"
	MessageProjectStatusChanged MessageType = "project_status_changed"
	MessageProjectLocked        MessageType = "project_locked"

	// Quotation messages
	MessageQuoteSubmitted MessageType = "quote_submitted"
	MessageQuoteDecided   MessageType = "quote_decided"

	// Chat messages
	MessageChatMessage MessageType = "chat_message"
	MessageChatRead    MessageType = "chat_read"
	MessageChatDeleted MessageType = "chat_deleted"

	// User presence
	MessageUserOnline  MessageType = "user_online"
	MessageUserOffline MessageType = "user_offline"
	MessageUserTyping  MessageType = "user_typing"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
	MessageErr  MessageType = "error"
)

// Room prefixes a client may subscribe to.
const (
	RoomUser    = "user:"
	RoomLead    = "lead:"
	RoomProject = "project:"
	RoomChat    = "chat:"
)

// ValidRoom reports whether room has a known prefix and a non-empty id.
func ValidRoom(room string) bool {
	for _, prefix := range []string{RoomUser, RoomLead, RoomProject, RoomChat} {
		if strings.HasPrefix(room, prefix) && len(room) > len(prefix) {
			return true
		}
	}
	return false
}

// RoomAuthorizer decides whether a user may subscribe to the entity behind
// a lead, project or chat room.
type RoomAuthorizer func(ctx context.Context, userID, role, entityID string) bool

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	UserID   string
	Role     string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool // lead:id, project:id, chat:id
	mu       sync.Mutex
	lastPing time.Time
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients map[*Client]bool

	// Clients indexed by user ID for direct messaging
	userClients map[string]map[*Client]bool

	// Clients indexed by room for broadcasting
	roomClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	broadcast     chan []byte
	roomBroadcast chan *RoomMessage
	directMessage chan *DirectMessage
	done          chan struct{}

	authorize RoomAuthorizer

	mu sync.RWMutex
}

// RoomMessage represents a message to be sent to a specific room
type RoomMessage struct {
	Room    string
	Message []byte
	Exclude string // User ID to exclude from broadcast
}

// DirectMessage represents a message to be sent to a specific user
type DirectMessage struct {
	UserID  string
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		userClients:   make(map[string]map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		broadcast:     make(chan []byte, 256),
		roomBroadcast: make(chan *RoomMessage, 256),
		directMessage: make(chan *DirectMessage, 256),
		done:          make(chan struct{}),
	}
}

// SetRoomAuthorizer installs the membership check used on join. Without one
// every well-formed room is joinable.
func (h *Hub) SetRoomAuthorizer(fn RoomAuthorizer) {
	h.mu.Lock()
	h.authorize = fn
	h.mu.Unlock()
}

func (h *Hub) authorizer() RoomAuthorizer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.authorize
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToAll(message)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case dm := <-h.directMessage:
			h.sendToUser(dm)

		case <-pingTicker.C:
			h.pingClients()

		case <-h.done:
			log.Println("[Hub] WebSocket hub stopped")
			return
		}
	}
}

func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]bool)
	}
	h.userClients[client.UserID][client] = true

	log.Printf("[Hub] ✅ Client registered: user=%s, id=%s, total_clients=%d",
		client.UserID, client.ID, len(h.clients))

	go h.BroadcastUserStatus(client.UserID, true)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	if clients, ok := h.userClients[client.UserID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userClients, client.UserID)
			go h.BroadcastUserStatus(client.UserID, false)
		}
	}

	client.mu.Lock()
	for room := range client.Rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	client.mu.Unlock()

	close(client.Send)
	log.Printf("[Hub] ❌ Client disconnected: user=%s, id=%s, total_clients=%d",
		client.UserID, client.ID, len(h.clients))
}

// deliver queues message on every client, dropping the ones whose buffer is full.
func (h *Hub) deliver(clients map[*Client]bool, message []byte, exclude string) int {
	sent := 0
	for client := range clients {
		if exclude != "" && client.UserID == exclude {
			continue
		}
		select {
		case client.Send <- message:
			sent++
		default:
			go func(c *Client) {
				h.unregister <- c
			}(client)
		}
	}
	return sent
}

func (h *Hub) broadcastToAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.clients, message, "")
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.roomClients[rm.Room]
	if !ok {
		return
	}
	sent := h.deliver(clients, rm.Message, rm.Exclude)
	log.Printf("[Hub] Broadcast to room %s: sent to %d clients", rm.Room, sent)
}

func (h *Hub) sendToUser(dm *DirectMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.userClients[dm.UserID]
	if !ok {
		return
	}
	h.deliver(clients, dm.Message, "")
}

func (h *Hub) pingClients() {
	data, _ := json.Marshal(Message{Type: MessagePing, Timestamp: time.Now()})

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.clients, data, "")
}

// ============================================
// Public Methods for Room Management
// ============================================

func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true

	log.Printf("[Hub] 👥 Client joined room: user=%s, room=%s", client.UserID, room)
}

func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}

	log.Printf("[Hub] 👋 Client left room: user=%s, room=%s", client.UserID, room)
}

// ============================================
// Public Methods for Sending Messages
// ============================================

func encode(msgType MessageType, payload map[string]interface{}) ([]byte, error) {
	return json.Marshal(Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// SendToUser sends a message to every connection of a user
func (h *Hub) SendToUser(userID string, msgType MessageType, payload map[string]interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}
	h.directMessage <- &DirectMessage{UserID: userID, Message: data}
}

// SendToRoom broadcasts a message to all clients in a room
func (h *Hub) SendToRoom(room string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}
	h.roomBroadcast <- &RoomMessage{Room: room, Message: data, Exclude: excludeUserID}
}

// BroadcastUserStatus broadcasts user online/offline status
func (h *Hub) BroadcastUserStatus(userID string, online bool) {
	msgType := MessageUserOffline
	if online {
		msgType = MessageUserOnline
	}
	data, _ := encode(msgType, map[string]interface{}{
		"userId": userID,
		"online": online,
	})
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// ============================================
// Query Methods
// ============================================

func (h *Hub) GetOnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]string, 0, len(h.userClients))
	for userID := range h.userClients {
		users = append(users, userID)
	}
	return users
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.userClients[userID]
	return ok
}

func (h *Hub) GetRoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.roomClients[room])
}

func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
