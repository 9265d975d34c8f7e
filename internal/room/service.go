// internal/room/service.go
package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/assign"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/sirupsen/logrus"
)

// MaxCreateAttempts bounds how many random codes CreateRoom tries.
const MaxCreateAttempts = 5

// PairResolver supplies the word pair for a new round and never fails.
type PairResolver interface {
	Resolve(ctx context.Context, category string) models.WordPair
}

// Service implements the room lifecycle: create, join, start, reset, leave and kick.
// It holds no per-room state; all coordination happens inside Store.RunAtomically.
type Service struct {
	store    Store
	resolver PairResolver
	engine   *assign.Engine
	logger   *logrus.Logger
	now      func() time.Time
}

// NewService wires a room service. engine may be nil, in which case a crypto-seeded one is used.
func NewService(store Store, resolver PairResolver, engine *assign.Engine, logger *logrus.Logger) *Service {
	if store == nil || resolver == nil {
		panic("room: store and resolver are required")
	}
	if engine == nil {
		engine = assign.NewEngine()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:    store,
		resolver: resolver,
		engine:   engine,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) newCode() string {
	return fmt.Sprintf("%04d", 1000+s.engine.Intn(9000))
}

func (s *Service) newPlayer(roomID uuid.UUID, nickname, token string, host bool) (*models.Player, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate player id: %w", err)
	}
	now := s.now()
	return &models.Player{
		ID:           id,
		RoomID:       roomID,
		Nickname:     nickname,
		SessionToken: token,
		IsHost:       host,
		JoinedAt:     now,
		LastSeenAt:   now,
	}, nil
}

// CreateRoom opens a new waiting room with the caller seated as host. A colliding code is
// retried with a fresh one up to MaxCreateAttempts times.
func (s *Service) CreateRoom(ctx context.Context, nickname, token string) (*models.Room, *models.Player, error) {
	nickname, err := normalizeNickname(nickname)
	if err != nil {
		return nil, nil, err
	}
	if err := validateToken(token); err != nil {
		return nil, nil, err
	}

	for attempt := 1; attempt <= MaxCreateAttempts; attempt++ {
		roomID, err := uuid.NewV7()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate room id: %w", err)
		}
		room := &models.Room{
			ID:        roomID,
			Code:      s.newCode(),
			Status:    models.StatusWaiting,
			CreatedAt: s.now(),
		}
		host, err := s.newPlayer(room.ID, nickname, token, true)
		if err != nil {
			return nil, nil, err
		}

		err = s.store.CreateRoom(ctx, room, host)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"room_code": room.Code,
				"player_id": host.ID,
				"attempt":   attempt,
			}).Info("room created")
			return room, host, nil
		}
		if !errors.Is(err, ErrDuplicateCode) {
			s.logger.WithError(err).Error("failed to insert room")
			return nil, nil, fmt.Errorf("%w: %v", ErrRoomCreateFailed, err)
		}
		s.logger.WithField("room_code", room.Code).Debugf("room code taken, retrying (attempt %d)", attempt)
	}

	s.logger.Warnf("no free room code after %d attempts", MaxCreateAttempts)
	return nil, nil, ErrRoomCreateFailed
}

// JoinRoom seats a new player in a waiting room.
func (s *Service) JoinRoom(ctx context.Context, code, nickname, token string) (*models.Player, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	nickname, err := normalizeNickname(nickname)
	if err != nil {
		return nil, err
	}
	if err := validateToken(token); err != nil {
		return nil, err
	}

	var joined *models.Player
	err = s.store.RunAtomically(ctx, code, func(tx Tx) error {
		room := tx.Room()
		if room.Status != models.StatusWaiting {
			return ErrGameInProgress
		}
		p, err := s.newPlayer(room.ID, nickname, token, false)
		if err != nil {
			return err
		}
		if err := tx.InsertPlayer(ctx, p); err != nil {
			return err
		}
		joined = p
		return nil
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{"room_code": code, "nickname": nickname}).
			WithError(err).Info("join rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_code": code,
		"player_id": joined.ID,
	}).Info("player joined")
	return joined, nil
}

// findBySession looks up the caller among players.
func findBySession(players []models.Player, token string) (*models.Player, bool) {
	for i := range players {
		if players[i].SessionToken == token {
			return &players[i], true
		}
	}
	return nil, false
}
