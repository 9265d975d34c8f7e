// internal/room/start.go
package room

import (
	"context"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

// StartGame deals roles and words to everyone in a waiting room and flips it to playing.
//
// The fool count is checked against the current roster before a word pair is looked up,
// so an invalid request never reaches the generator. Everything read before the
// transaction is re-validated under the room lock before the assignment is written.
func (s *Service) StartGame(ctx context.Context, code, token string, foolCount int, category string) error {
	if err := validateCode(code); err != nil {
		return err
	}
	if err := validateToken(token); err != nil {
		return err
	}
	if foolCount < 1 {
		return ErrInvalidFoolCount
	}
	logCtx := s.logger.WithFields(logrus.Fields{"room_code": code, "fool_count": foolCount})

	room, err := s.store.RoomByCode(ctx, code)
	if err != nil {
		return err
	}
	if room.Status != models.StatusWaiting {
		return ErrGameInProgress
	}
	players, err := s.store.Players(ctx, room.ID)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return ErrRoomNotFound
	}
	caller, ok := findBySession(players, token)
	if !ok {
		return ErrPlayerNotFound
	}
	if !caller.IsHost {
		return ErrNotHost
	}
	if foolCount >= len(players) {
		return ErrInvalidFoolCount
	}

	pair := s.resolver.Resolve(ctx, category)
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	assignments := s.engine.Assign(ids, pair.WordA, pair.WordB, foolCount)

	err = s.store.RunAtomically(ctx, code, func(tx Tx) error {
		if tx.Room().ID != room.ID {
			// the room was deleted and its code reused in between
			return ErrRoomNotFound
		}
		if tx.Room().Status != models.StatusWaiting {
			return ErrGameInProgress
		}
		current, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		me, ok := findBySession(current, token)
		if !ok {
			return ErrPlayerNotFound
		}
		if !me.IsHost {
			return ErrNotHost
		}
		if !sameMembers(current, ids) {
			return ErrRosterChanged
		}
		return tx.ApplyAssignments(ctx, pair.Label(), assignments)
	})
	if err != nil {
		logCtx.WithError(err).Warn("start rejected")
		return err
	}

	logCtx.WithFields(logrus.Fields{
		"category": pair.Category,
		"players":  len(ids),
	}).Info("round started")
	return nil
}

func sameMembers(players []models.Player, ids []uuid.UUID) bool {
	if len(players) != len(ids) {
		return false
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, p := range players {
		if !want[p.ID] {
			return false
		}
	}
	return true
}
