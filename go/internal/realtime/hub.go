package realtime

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNotRegistered is returned when a subscriber joins a room before it was
// registered with the hub.
var ErrNotRegistered = errors.New("subscriber not registered")

// Subscriber is one live client connection.
type Subscriber interface {
	ID() string
	UserID() uuid.UUID
	// Deliver queues msg without blocking. It returns false when the
	// subscriber cannot keep up or is closed.
	Deliver(msg []byte) bool
	Close()
}

type member struct {
	sub   Subscriber
	rooms map[string]struct{}
}

// PresenceFunc is told when a user's first connection opens or last one
// closes.
type PresenceFunc func(userID uuid.UUID, online bool)

type presenceChange struct {
	userID uuid.UUID
	online bool
}

// Hub owns room membership and presence for the process. All state is
// guarded by mu; delivery happens outside the lock.
//
// Presence transitions are queued under mu in the order the counts changed
// and handed to the hook by one goroutine at a time, so the hook sees every
// user's changes in order.
type Hub struct {
	mu       sync.RWMutex
	members  map[string]*member
	rooms    map[string]map[string]Subscriber
	presence map[uuid.UUID]int

	onPresence      PresenceFunc
	pendingPresence []presenceChange
	flushing        bool
}

func NewHub() *Hub {
	return &Hub{
		members:  make(map[string]*member),
		rooms:    make(map[string]map[string]Subscriber),
		presence: make(map[uuid.UUID]int),
	}
}

// OnPresenceChange installs fn as the presence hook. Call it before any
// subscriber registers.
func (h *Hub) OnPresenceChange(fn PresenceFunc) {
	h.mu.Lock()
	h.onPresence = fn
	h.mu.Unlock()
}

// Register adds sub and counts it towards its user's presence. Registering
// the same subscriber again has no effect.
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	if _, ok := h.members[sub.ID()]; ok {
		h.mu.Unlock()
		return
	}
	h.members[sub.ID()] = &member{sub: sub, rooms: make(map[string]struct{})}
	h.presence[sub.UserID()]++
	if h.presence[sub.UserID()] == 1 {
		h.pendingPresence = append(h.pendingPresence, presenceChange{userID: sub.UserID(), online: true})
	}
	h.mu.Unlock()

	log.Debug().
		Str("connection_id", sub.ID()).
		Str("user_id", sub.UserID().String()).
		Msg("subscriber registered")

	h.flushPresence()
}

// Unregister removes sub from every room it joined. Unknown subscribers are
// ignored, so it is safe to call from several teardown paths.
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	m, ok := h.members[sub.ID()]
	if !ok {
		h.mu.Unlock()
		return
	}
	for room := range m.rooms {
		h.removeFromRoom(room, sub.ID())
	}
	delete(h.members, sub.ID())

	userID := sub.UserID()
	h.presence[userID]--
	if h.presence[userID] <= 0 {
		delete(h.presence, userID)
		h.pendingPresence = append(h.pendingPresence, presenceChange{userID: userID, online: false})
	}
	h.mu.Unlock()

	log.Debug().
		Str("connection_id", sub.ID()).
		Str("user_id", userID.String()).
		Msg("subscriber unregistered")

	h.flushPresence()
}

// flushPresence runs the hook for queued transitions outside mu. If another
// goroutine is already flushing, that goroutine delivers ours as well. The
// hook may re-enter the hub, e.g. a broadcast that drops a slow subscriber.
func (h *Hub) flushPresence() {
	h.mu.Lock()
	if h.flushing {
		h.mu.Unlock()
		return
	}
	h.flushing = true
	for len(h.pendingPresence) > 0 {
		change := h.pendingPresence[0]
		h.pendingPresence = h.pendingPresence[1:]
		hook := h.onPresence
		h.mu.Unlock()

		if hook != nil {
			hook(change.userID, change.online)
		}

		h.mu.Lock()
	}
	h.pendingPresence = nil
	h.flushing = false
	h.mu.Unlock()
}

// Join adds sub to room. Joining a room twice is the same as joining once.
func (h *Hub) Join(sub Subscriber, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.members[sub.ID()]
	if !ok {
		return ErrNotRegistered
	}
	m.rooms[room] = struct{}{}
	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[string]Subscriber)
		h.rooms[room] = subs
	}
	subs[sub.ID()] = sub
	return nil
}

// Leave removes sub from room. Leaving a room sub is not in is a no-op.
func (h *Hub) Leave(sub Subscriber, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.members[sub.ID()]; ok {
		delete(m.rooms, room)
	}
	h.removeFromRoom(room, sub.ID())
}

// removeFromRoom requires mu held.
func (h *Hub) removeFromRoom(room, id string) {
	subs, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast delivers msg to the subscribers in room at call time and returns
// how many accepted it. Nothing is buffered for later joiners. Subscribers
// whose queue is full are dropped and closed.
func (h *Hub) Broadcast(room string, msg []byte) int {
	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.rooms[room]))
	for _, sub := range h.rooms[room] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if sub.Deliver(msg) {
			delivered++
			continue
		}
		log.Warn().
			Str("connection_id", sub.ID()).
			Str("user_id", sub.UserID().String()).
			Str("room", room).
			Msg("subscriber send buffer full, closing connection")
		h.Unregister(sub)
		sub.Close()
	}
	return delivered
}

// IsOnline reports whether userID has at least one registered connection.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence[userID] > 0
}

// Connections returns how many connections userID currently holds.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.presence[userID]
}

// Rooms lists the rooms sub has joined, sorted.
func (h *Hub) Rooms(sub Subscriber) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	m, ok := h.members[sub.ID()]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(m.rooms))
	for room := range m.rooms {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

type Stats struct {
	TotalConnections int            `json:"total_connections"`
	OnlineUsers      int            `json:"online_users"`
	ActiveRooms      int            `json:"active_rooms"`
	RoomMembers      map[string]int `json:"room_members"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make(map[string]int, len(h.rooms))
	for room, subs := range h.rooms {
		members[room] = len(subs)
	}
	return Stats{
		TotalConnections: len(h.members),
		OnlineUsers:      len(h.presence),
		ActiveRooms:      len(h.rooms),
		RoomMembers:      members,
	}
}
