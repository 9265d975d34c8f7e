// internal/memstore/memstore.go
package memstore

import (
	"bytes"
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
)

// Store keeps rooms and players in memory. A single mutex serializes every operation, so
// RunAtomically is trivially serializable; mutations inside it go to a copy that is only
// swapped in when the callback succeeds.
type Store struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]models.Room
	players map[uuid.UUID]models.Player
}

// New initializes and returns an empty Store.
func New() *Store {
	return &Store{
		rooms:   make(map[uuid.UUID]models.Room),
		players: make(map[uuid.UUID]models.Player),
	}
}

var _ room.Store = (*Store)(nil)

func (s *Store) roomByCodeLocked(code string) (models.Room, bool) {
	for _, r := range s.rooms {
		if r.Code == code {
			return r, true
		}
	}
	return models.Room{}, false
}

func playersOf(players map[uuid.UUID]models.Player, roomID uuid.UUID) []models.Player {
	var out []models.Player
	for _, p := range players {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

func (s *Store) CreateRoom(_ context.Context, r *models.Room, host *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.roomByCodeLocked(r.Code); taken {
		return room.ErrDuplicateCode
	}
	s.rooms[r.ID] = *r
	s.players[host.ID] = *host
	log.Printf("memstore: added room %s (%s).", r.Code, r.ID)
	return nil
}

func (s *Store) RoomByCode(_ context.Context, code string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roomByCodeLocked(code)
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	return &r, nil
}

func (s *Store) Players(_ context.Context, roomID uuid.UUID) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return playersOf(s.players, roomID), nil
}

func (s *Store) PlayerBySession(_ context.Context, roomID uuid.UUID, token string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.RoomID == roomID && p.SessionToken == token {
			return &p, nil
		}
	}
	return nil, room.ErrPlayerNotFound
}

func (s *Store) TouchPlayer(_ context.Context, playerID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return room.ErrPlayerNotFound
	}
	p.LastSeenAt = at
	s.players[playerID] = p
	return nil
}

func (s *Store) StalePlayers(_ context.Context, before time.Time) ([]room.StalePlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []room.StalePlayer
	for _, p := range s.players {
		if !p.LastSeenAt.Before(before) {
			continue
		}
		r, ok := s.rooms[p.RoomID]
		if !ok {
			continue
		}
		out = append(out, room.StalePlayer{
			RoomCode:   r.Code,
			PlayerID:   p.ID,
			LastSeenAt: p.LastSeenAt,
		})
	}
	return out, nil
}

// RunAtomically runs fn against a copy of the state and commits it only if fn succeeds.
func (s *Store) RunAtomically(ctx context.Context, code string, fn func(tx room.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roomByCodeLocked(code)
	if !ok {
		return room.ErrRoomNotFound
	}

	tx := &memTx{
		room:    r,
		rooms:   make(map[uuid.UUID]models.Room, len(s.rooms)),
		players: make(map[uuid.UUID]models.Player, len(s.players)),
	}
	for k, v := range s.rooms {
		tx.rooms[k] = v
	}
	for k, v := range s.players {
		tx.players[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rooms = tx.rooms
	s.players = tx.players
	return nil
}

// Len reports the number of live rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

type memTx struct {
	room    models.Room
	rooms   map[uuid.UUID]models.Room
	players map[uuid.UUID]models.Player
}

func (tx *memTx) Room() *models.Room {
	r := tx.room
	return &r
}

func (tx *memTx) Players(_ context.Context) ([]models.Player, error) {
	return playersOf(tx.players, tx.room.ID), nil
}

func (tx *memTx) InsertPlayer(_ context.Context, p *models.Player) error {
	for _, other := range tx.players {
		if other.RoomID != tx.room.ID {
			continue
		}
		if other.Nickname == p.Nickname {
			return room.ErrNicknameTaken
		}
		if other.SessionToken == p.SessionToken {
			return room.ErrAlreadyJoined
		}
	}
	cp := *p
	cp.RoomID = tx.room.ID
	tx.players[cp.ID] = cp
	return nil
}

func (tx *memTx) ApplyAssignments(_ context.Context, topicLabel string, assignments []models.Assignment) error {
	for _, a := range assignments {
		p, ok := tx.players[a.PlayerID]
		if !ok || p.RoomID != tx.room.ID {
			return room.ErrRosterChanged
		}
		role, topic := a.Role, a.Topic
		p.Role = &role
		p.AssignedTopic = &topic
		tx.players[p.ID] = p
	}
	r := tx.rooms[tx.room.ID]
	r.Status = models.StatusPlaying
	label := topicLabel
	r.CurrentTopic = &label
	tx.rooms[r.ID] = r
	tx.room = r
	return nil
}

func (tx *memTx) ResetRound(_ context.Context) error {
	for id, p := range tx.players {
		if p.RoomID != tx.room.ID {
			continue
		}
		p.Role = nil
		p.AssignedTopic = nil
		tx.players[id] = p
	}
	r := tx.rooms[tx.room.ID]
	r.Status = models.StatusWaiting
	r.CurrentTopic = nil
	tx.rooms[r.ID] = r
	tx.room = r
	return nil
}

func (tx *memTx) SetHost(_ context.Context, playerID uuid.UUID) error {
	found := false
	for id, p := range tx.players {
		if p.RoomID != tx.room.ID {
			continue
		}
		p.IsHost = id == playerID
		found = found || p.IsHost
		tx.players[id] = p
	}
	if !found {
		return room.ErrPlayerNotFound
	}
	return nil
}

func (tx *memTx) DeletePlayer(_ context.Context, playerID uuid.UUID) error {
	p, ok := tx.players[playerID]
	if !ok || p.RoomID != tx.room.ID {
		return room.ErrPlayerNotFound
	}
	delete(tx.players, playerID)
	return nil
}

func (tx *memTx) DeleteRoom(_ context.Context) error {
	for id, p := range tx.players {
		if p.RoomID == tx.room.ID {
			delete(tx.players, id)
		}
	}
	delete(tx.rooms, tx.room.ID)
	return nil
}
