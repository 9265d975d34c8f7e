// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
)

// Room represents a row in the rooms table. Code is the 4-digit string players type in;
// ID is the internal identifier.
type Room struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Status       RoomStatus `json:"status"`
	CurrentTopic *string    `json:"current_topic"` // "wordA / wordB" while playing, nil while waiting
	CreatedAt    time.Time  `json:"created_at"`
}

// RoomState is the read model served to polling clients: the room, the caller's own seat, and the roster.
// The room's topic label is left out since it would reveal both words.
type RoomState struct {
	Code    string        `json:"code"`
	Status  RoomStatus    `json:"status"`
	Me      PlayerView    `json:"me"`
	Players []RosterEntry `json:"players"`
}

// RosterEntry is the public part of a player, safe to show to everyone in the room.
type RosterEntry struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	IsHost   bool      `json:"is_host"`
}
