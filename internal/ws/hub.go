// Package ws is the realtime channel: clients join a room keyed by family id
// and receive fan-out events (new-memory, new-event, new-member,
// message-received).
package ws

import (
	"encoding/json"
	"sync"
)

const (
	EventNewMemory       = "new-memory"
	EventNewEvent        = "new-event"
	EventNewMember       = "new-member"
	EventMessageReceived = "message-received"
)

// Envelope is the wire shape of every fan-out message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// sender is what the hub needs from a connected client.
type sender interface {
	Send(data []byte)
	UserID() string
}

// Hub tracks connected clients per family room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[sender]struct{} // familyID -> clients
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[sender]struct{})}
}

func (h *Hub) Join(familyID string, c sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[familyID] == nil {
		h.rooms[familyID] = make(map[sender]struct{})
	}
	h.rooms[familyID][c] = struct{}{}
}

func (h *Hub) Leave(familyID string, c sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[familyID], c)
	if len(h.rooms[familyID]) == 0 {
		delete(h.rooms, familyID)
	}
}

// Broadcast fans an event out to every client in the family room. Slow
// clients drop messages rather than blocking the emitter.
func (h *Hub) Broadcast(familyID, eventType string, payload any) {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[familyID] {
		c.Send(data)
	}
}

// RoomSize reports the number of clients in a family room.
func (h *Hub) RoomSize(familyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[familyID])
}
