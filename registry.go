package main

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxRooms = 100

// RoomRegistry is the process-wide mapping from room identifier to Room
// and from connection identifier to its room. It is the only writer of
// the room collection: rooms are created on first reference and destroyed
// synchronously when their last player leaves.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	bindings map[string]string // connID -> roomID
	profiles *ProfileSink
}

// NewRoomRegistry creates an empty registry
func NewRoomRegistry(profiles *ProfileSink) *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]*Room),
		bindings: make(map[string]string),
		profiles: profiles,
	}
}

// JoinRoom places a connection into the named room, creating it on first
// reference. An empty roomID mints a fresh identifier. Returns the room
// and false when the room is at capacity or the registry is full; the
// capacity refusal is reported to the joining client only.
func (rr *RoomRegistry) JoinRoom(connID, roomID, name, color string, authID int64, client Broadcaster) (*Room, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if roomID == "" {
		roomID = uuid.NewString()
	}
	room, ok := rr.rooms[roomID]
	if !ok {
		if len(rr.rooms) >= maxRooms {
			client.SendJSON(Envelope{T: MsgRoomJoined, Data: RoomJoinedMsg{
				Success: false,
				Message: "too many active rooms",
			}})
			return nil, false
		}
		room = NewRoom(roomID, rr.profiles)
		rr.rooms[roomID] = room
		go room.Run()
		log.Info().Str("room", roomID).Msg("room created")
	}

	if !room.AddPlayer(connID, name, color, authID, client) {
		if !ok {
			// freshly created room that nobody could enter; drop it
			room.Stop()
			delete(rr.rooms, roomID)
		}
		return nil, false
	}
	rr.bindings[connID] = roomID
	return room, true
}

// Get returns a room by ID, or nil
func (rr *RoomRegistry) Get(roomID string) *Room {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.rooms[roomID]
}

// RoomOf returns the room a connection is bound to, or nil
func (rr *RoomRegistry) RoomOf(connID string) *Room {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	if roomID, ok := rr.bindings[connID]; ok {
		return rr.rooms[roomID]
	}
	return nil
}

// OnDisconnect removes the connection's player from its room and destroys
// the room in the same call if it emptied. Idempotent.
func (rr *RoomRegistry) OnDisconnect(connID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	roomID, ok := rr.bindings[connID]
	if !ok {
		return
	}
	delete(rr.bindings, connID)

	room, ok := rr.rooms[roomID]
	if !ok {
		return
	}
	room.RemovePlayer(connID)
	if room.PlayerCount() == 0 {
		room.Stop()
		delete(rr.rooms, roomID)
		log.Info().Str("room", roomID).Msg("room destroyed")
	}
}

// Counts returns the number of active rooms and bound players
func (rr *RoomRegistry) Counts() (rooms, players int) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.rooms), len(rr.bindings)
}
