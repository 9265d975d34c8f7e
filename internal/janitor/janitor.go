// internal/janitor/janitor.go
package janitor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/sirupsen/logrus"
)

const (
	DefaultIdle     = 10 * time.Minute
	DefaultInterval = time.Minute
)

// StaleLister finds players who stopped polling.
type StaleLister interface {
	StalePlayers(ctx context.Context, before time.Time) ([]room.StalePlayer, error)
}

// Evictor removes an idle player, keeping host and empty-room invariants.
type Evictor interface {
	EvictIdle(ctx context.Context, code string, playerID uuid.UUID, idleBefore time.Time) (room.LeaveResult, bool, error)
}

// Janitor periodically removes players whose clients went away without leaving,
// e.g. a closed browser tab.
type Janitor struct {
	stale    StaleLister
	evictor  Evictor
	idle     time.Duration
	interval time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

// New builds a Janitor. Non-positive idle or interval values fall back to DefaultIdle
// and DefaultInterval.
func New(stale StaleLister, evictor Evictor, idle, interval time.Duration, logger *logrus.Logger) *Janitor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Janitor{
		stale:    stale,
		evictor:  evictor,
		idle:     idle,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Sweep runs one pass and returns how many players were removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.idle)
	stale, err := j.stale.StalePlayers(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, sp := range stale {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		_, evicted, err := j.evictor.EvictIdle(ctx, sp.RoomCode, sp.PlayerID, cutoff)
		switch {
		case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrPlayerNotFound):
			// already gone
		case err != nil:
			j.logger.WithFields(logrus.Fields{
				"room_code": sp.RoomCode,
				"player_id": sp.PlayerID,
			}).WithError(err).Warn("failed to evict idle player")
		case evicted:
			removed++
		}
	}
	return removed, nil
}

// Run sweeps once per interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.WithFields(logrus.Fields{
		"idle_timeout": j.idle,
		"interval":     j.interval,
	}).Info("janitor started")

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor stopped")
			return nil
		case <-ticker.C:
			n, err := j.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				j.logger.WithError(err).Error("janitor sweep failed")
				continue
			}
			if n > 0 {
				j.logger.Infof("janitor removed %d idle players", n)
			}
		}
	}
}
