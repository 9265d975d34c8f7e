// internal/room/state.go
package room

import (
	"context"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

// RoomState is the polling read: room status, the caller's own seat and the roster.
// Each call also refreshes the caller's last-seen time.
func (s *Service) RoomState(ctx context.Context, code, token string) (*models.RoomState, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateToken(token); err != nil {
		return nil, err
	}

	room, err := s.store.RoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	players, err := s.store.Players(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	me, ok := findBySession(players, token)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	if err := s.store.TouchPlayer(ctx, me.ID, s.now()); err != nil {
		s.logger.WithFields(logrus.Fields{"room_code": code, "player_id": me.ID}).
			WithError(err).Warn("failed to record heartbeat")
	}

	state := &models.RoomState{
		Code:    room.Code,
		Status:  room.Status,
		Me:      me.View(),
		Players: roster(players),
	}
	return state, nil
}

// Roster lists the room's players in join order.
func (s *Service) Roster(ctx context.Context, code string) ([]models.RosterEntry, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	room, err := s.store.RoomByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	players, err := s.store.Players(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	return roster(players), nil
}

func roster(players []models.Player) []models.RosterEntry {
	out := make([]models.RosterEntry, len(players))
	for i := range players {
		out[i] = players[i].Entry()
	}
	return out
}
