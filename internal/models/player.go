// internal/models/player.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the secret role a player receives when a round starts.
type Role string

const (
	RoleNormal Role = "normal"
	RoleFool   Role = "fool"
)

// Player represents a row in the players table.
type Player struct {
	ID            uuid.UUID `json:"id"`
	RoomID        uuid.UUID `json:"room_id"`
	Nickname      string    `json:"nickname"`
	SessionToken  string    `json:"-"`
	Role          *Role     `json:"role"`
	AssignedTopic *string   `json:"assigned_topic"`
	IsHost        bool      `json:"is_host"`
	JoinedAt      time.Time `json:"joined_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

// PlayerView is what a player is allowed to see about themselves.
type PlayerView struct {
	ID            uuid.UUID `json:"id"`
	Nickname      string    `json:"nickname"`
	IsHost        bool      `json:"is_host"`
	Role          *Role     `json:"role,omitempty"`
	AssignedTopic *string   `json:"assigned_topic,omitempty"`
}

// View strips the session token and room linkage.
func (p *Player) View() PlayerView {
	return PlayerView{
		ID:            p.ID,
		Nickname:      p.Nickname,
		IsHost:        p.IsHost,
		Role:          p.Role,
		AssignedTopic: p.AssignedTopic,
	}
}

// Entry returns the roster entry for this player.
func (p *Player) Entry() RosterEntry {
	return RosterEntry{ID: p.ID, Nickname: p.Nickname, IsHost: p.IsHost}
}
