// internal/room/store.go
package room

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
)

// Store is the persistence collaborator of the room service.
//
// Reads outside RunAtomically are snapshots and may be stale by the time they are acted on;
// every transition re-checks its preconditions inside RunAtomically.
type Store interface {
	// CreateRoom inserts the room together with its host player. Returns ErrDuplicateCode
	// if the code belongs to a live room.
	CreateRoom(ctx context.Context, room *models.Room, host *models.Player) error

	// RoomByCode returns ErrRoomNotFound if no live room has the code.
	RoomByCode(ctx context.Context, code string) (*models.Room, error)

	// Players lists a room's players ordered by joined_at, then id.
	Players(ctx context.Context, roomID uuid.UUID) ([]models.Player, error)

	// PlayerBySession returns ErrPlayerNotFound if the token has no seat in the room.
	PlayerBySession(ctx context.Context, roomID uuid.UUID, token string) (*models.Player, error)

	// TouchPlayer records that the player polled at the given time.
	TouchPlayer(ctx context.Context, playerID uuid.UUID, at time.Time) error

	// StalePlayers lists players whose last poll is older than before.
	StalePlayers(ctx context.Context, before time.Time) ([]StalePlayer, error)

	// RunAtomically locks the room with the given code and runs fn. Either every
	// mutation fn makes through tx is applied, or, when fn or the commit fails, none is.
	// Returns ErrRoomNotFound without calling fn if the room does not exist.
	RunAtomically(ctx context.Context, code string, fn func(tx Tx) error) error
}

// Tx is the view of one locked room inside RunAtomically.
type Tx interface {
	// Room is the room row as read under the lock.
	Room() *models.Room
	Players(ctx context.Context) ([]models.Player, error)

	// InsertPlayer returns ErrNicknameTaken or ErrAlreadyJoined on uniqueness violations.
	InsertPlayer(ctx context.Context, p *models.Player) error

	// ApplyAssignments sets every assigned player's role and topic, flips the room to
	// playing and records the topic label.
	ApplyAssignments(ctx context.Context, topicLabel string, assignments []models.Assignment) error

	// ResetRound clears every player's role and topic and returns the room to waiting.
	ResetRound(ctx context.Context) error

	SetHost(ctx context.Context, playerID uuid.UUID) error
	DeletePlayer(ctx context.Context, playerID uuid.UUID) error
	DeleteRoom(ctx context.Context) error
}

// StalePlayer identifies a seat that stopped polling.
type StalePlayer struct {
	RoomCode   string
	PlayerID   uuid.UUID
	LastSeenAt time.Time
}
