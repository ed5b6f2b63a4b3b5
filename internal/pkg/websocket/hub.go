package websocket

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the presence registry and chat rooms. Each user holds at most
// one active session; a later handshake for the same user replaces the
// earlier one. Rooms are named with PairRoom and carry the members of one
// conversation.
type Hub struct {
	// Active session per user ID
	clients map[int64]*Client

	// Room name to members
	rooms map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients and rooms
	mu sync.RWMutex

	// Called after a user's session becomes active or ends. Set before Run;
	// invoked on its own goroutine so the hub loop never blocks on them.
	OnConnect    func(userID int64)
	OnDisconnect func(userID int64)

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub, handling session registrations and replacements
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Register activates a client session
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister ends a client session
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// registerClient adds a session to the registry, replacing any previous
// session of the same user. The replaced socket is told to go away.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	if old, ok := h.clients[client.userID]; ok {
		h.removeFromRoomsLocked(old)
		old.closeGoingAway()
		old.closeSend()
		h.logger.Info().
			Int64("userID", client.userID).
			Msg("Replaced existing session")
	}
	h.clients[client.userID] = client

	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Msg("Client registered")

	if h.OnConnect != nil {
		go h.OnConnect(client.userID)
	}
}

// unregisterClient removes a session. A session that was already replaced by
// a newer one is ignored so the replacement stays registered.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	current, ok := h.clients[client.userID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}

	h.removeFromRoomsLocked(client)
	delete(h.clients, client.userID)
	client.closeSend()

	h.mu.Unlock()

	h.logger.Info().
		Int64("userID", client.userID).
		Msg("Client unregistered")

	if h.OnDisconnect != nil {
		go h.OnDisconnect(client.userID)
	}
}

// removeFromRoomsLocked detaches a client from every room it joined.
// Callers hold h.mu.
func (h *Hub) removeFromRoomsLocked(client *Client) {
	for room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.rooms = make(map[string]bool)
}

// JoinRoom adds a client to a chat room
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.rooms[room] = true

	h.logger.Debug().
		Int64("userID", client.userID).
		Str("room", room).
		Msg("Client joined room")
}

// LeaveRoom removes a client from a chat room
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// BroadcastToRoom delivers an event to every member of a room
func (h *Hub) BroadcastToRoom(room, event string, data interface{}) {
	h.broadcastToRoom(room, event, data, nil)
}

// BroadcastToRoomExcept delivers an event to every member of a room except one
func (h *Hub) BroadcastToRoomExcept(room, event string, data interface{}, except *Client) {
	h.broadcastToRoom(room, event, data, except)
}

func (h *Hub) broadcastToRoom(room, event string, data interface{}, except *Client) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode room event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	for client := range members {
		if client == except {
			continue
		}
		if !client.enqueue(payload) {
			// Slow or ended session; drop the event rather than block the hub.
			h.logger.Warn().
				Int64("userID", client.userID).
				Str("room", room).
				Msg("Dropped event for slow client")
		}
	}
}

// SendToUser delivers an event to a user's active session. Returns false when
// the user is offline or their buffer is full.
func (h *Hub) SendToUser(userID int64, event string, data interface{}) bool {
	payload, err := encodeEvent(event, data)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode user event")
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	if !client.enqueue(payload) {
		h.logger.Warn().
			Int64("userID", userID).
			Str("event", event).
			Msg("Dropped event for slow client")
		return false
	}
	return true
}

// IsOnline reports whether the user has an active session
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[userID]
	return ok
}

// OnlineAmong filters the given user IDs down to those currently online
func (h *Hub) OnlineAmong(userIDs []int64) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var online []int64
	for _, id := range userIDs {
		if _, ok := h.clients[id]; ok {
			online = append(online, id)
		}
	}
	return online
}

// IsInRoom reports whether the user's session currently sits in the room
func (h *Hub) IsInRoom(userID int64, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return false
	}

	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	return members[client]
}

// OnlineCount returns the number of active sessions
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
