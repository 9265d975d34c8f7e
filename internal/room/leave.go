// internal/room/leave.go
package room

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

// LeaveResult describes what happened to the room when a player left.
type LeaveResult struct {
	RoomDeleted bool
	// NewHost is set when the leaving player was host and someone inherited the role.
	NewHost *uuid.UUID
}

// LeaveRoom removes the caller from the room in either state. A leaving host hands the
// role to the earliest remaining joiner; the last player out deletes the room.
func (s *Service) LeaveRoom(ctx context.Context, code, token string) (LeaveResult, error) {
	if err := validateCode(code); err != nil {
		return LeaveResult{}, err
	}
	if err := validateToken(token); err != nil {
		return LeaveResult{}, err
	}

	var res LeaveResult
	var leaving uuid.UUID
	err := s.store.RunAtomically(ctx, code, func(tx Tx) error {
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		me, ok := findBySession(players, token)
		if !ok {
			return ErrPlayerNotFound
		}
		leaving = me.ID
		res, err = removePlayer(ctx, tx, players, me)
		return err
	})
	if err != nil {
		return LeaveResult{}, err
	}

	logCtx := s.logger.WithFields(logrus.Fields{"room_code": code, "player_id": leaving})
	if res.NewHost != nil {
		logCtx = logCtx.WithField("new_host", *res.NewHost)
	}
	if res.RoomDeleted {
		logCtx.Info("last player left, room deleted")
	} else {
		logCtx.Info("player left")
	}
	return res, nil
}

// KickPlayer lets the host remove another player by nickname while the room is waiting.
func (s *Service) KickPlayer(ctx context.Context, code, hostToken, nickname string) error {
	if err := validateCode(code); err != nil {
		return err
	}
	if err := validateToken(hostToken); err != nil {
		return err
	}
	nickname, err := normalizeNickname(nickname)
	if err != nil {
		return err
	}

	err = s.store.RunAtomically(ctx, code, func(tx Tx) error {
		if tx.Room().Status != models.StatusWaiting {
			return ErrGameInProgress
		}
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		me, ok := findBySession(players, hostToken)
		if !ok {
			return ErrPlayerNotFound
		}
		if !me.IsHost {
			return ErrNotHost
		}
		if me.Nickname == nickname {
			return ErrCannotKickSelf
		}
		for i := range players {
			if players[i].Nickname == nickname {
				_, err := removePlayer(ctx, tx, players, &players[i])
				return err
			}
		}
		return ErrPlayerNotFound
	})
	if err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"room_code": code, "nickname": nickname}).Info("player kicked")
	return nil
}

// removePlayer deletes p and restores the room invariants: a new host if p was host,
// or no room at all if p was the last player. players is the locked roster in
// joined_at order and includes p.
func removePlayer(ctx context.Context, tx Tx, players []models.Player, p *models.Player) (LeaveResult, error) {
	if err := tx.DeletePlayer(ctx, p.ID); err != nil {
		return LeaveResult{}, err
	}

	remaining := make([]models.Player, 0, len(players))
	for _, other := range players {
		if other.ID != p.ID {
			remaining = append(remaining, other)
		}
	}
	if len(remaining) == 0 {
		if err := tx.DeleteRoom(ctx); err != nil {
			return LeaveResult{}, err
		}
		return LeaveResult{RoomDeleted: true}, nil
	}
	if !p.IsHost {
		return LeaveResult{}, nil
	}

	next := nextHost(remaining)
	if err := tx.SetHost(ctx, next); err != nil {
		return LeaveResult{}, err
	}
	return LeaveResult{NewHost: &next}, nil
}

// nextHost picks the earliest joiner, breaking timestamp ties by the smaller id.
func nextHost(players []models.Player) uuid.UUID {
	best := players[0]
	for _, p := range players[1:] {
		if p.JoinedAt.Before(best.JoinedAt) ||
			(p.JoinedAt.Equal(best.JoinedAt) && bytes.Compare(p.ID[:], best.ID[:]) < 0) {
			best = p
		}
	}
	return best.ID
}

// EvictIdle removes a player who has not polled since idleBefore, with the same host
// transfer and room deletion rules as LeaveRoom. The idle check is repeated under the
// room lock, so a player who polled in the meantime is kept and evicted is false.
func (s *Service) EvictIdle(ctx context.Context, code string, playerID uuid.UUID, idleBefore time.Time) (res LeaveResult, evicted bool, err error) {
	err = s.store.RunAtomically(ctx, code, func(tx Tx) error {
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		var target *models.Player
		for i := range players {
			if players[i].ID == playerID {
				target = &players[i]
				break
			}
		}
		if target == nil {
			return ErrPlayerNotFound
		}
		if !target.LastSeenAt.Before(idleBefore) {
			return nil
		}
		evicted = true
		res, err = removePlayer(ctx, tx, players, target)
		return err
	})
	if err != nil {
		return LeaveResult{}, false, err
	}
	if evicted {
		s.logger.WithFields(logrus.Fields{
			"room_code":    code,
			"player_id":    playerID,
			"room_deleted": res.RoomDeleted,
		}).Info("evicted idle player")
	}
	return res, evicted, nil
}
