// internal/room/reset.go
package room

import (
	"context"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

// ResetGame returns a playing room to waiting and clears every role and word.
// Resetting a room that is already waiting succeeds without changes.
func (s *Service) ResetGame(ctx context.Context, code, token string) error {
	if err := validateCode(code); err != nil {
		return err
	}
	if err := validateToken(token); err != nil {
		return err
	}

	changed := false
	err := s.store.RunAtomically(ctx, code, func(tx Tx) error {
		players, err := tx.Players(ctx)
		if err != nil {
			return err
		}
		me, ok := findBySession(players, token)
		if !ok {
			return ErrPlayerNotFound
		}
		if !me.IsHost {
			return ErrNotHost
		}
		if tx.Room().Status == models.StatusWaiting {
			return nil
		}
		changed = true
		return tx.ResetRound(ctx)
	})
	if err != nil {
		s.logger.WithField("room_code", code).WithError(err).Warn("reset rejected")
		return err
	}
	if changed {
		s.logger.WithFields(logrus.Fields{"room_code": code}).Info("round reset")
	}
	return nil
}
