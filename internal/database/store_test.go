// internal/database/store_test.go
package database

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to DATABASE_URL and applies the schema. Tests using it are skipped
// when no database is configured.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := ConnectDB(ctx, os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return NewStore(pool)
}

// freshRoom creates a room under a random code, retrying on collisions with leftover rows.
func freshRoom(t *testing.T, s *Store, hostNick string) (*models.Room, *models.Player) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 20; i++ {
		r := &models.Room{
			ID:        uuid.New(),
			Code:      fmt.Sprintf("%04d", 1000+rand.IntN(9000)),
			Status:    models.StatusWaiting,
			CreatedAt: now,
		}
		host := &models.Player{
			ID: uuid.New(), RoomID: r.ID, Nickname: hostNick, SessionToken: uuid.NewString(),
			IsHost: true, JoinedAt: now, LastSeenAt: now,
		}
		err := s.CreateRoom(ctx, r, host)
		if err == nil {
			t.Cleanup(func() {
				_ = s.RunAtomically(context.Background(), r.Code, func(tx room.Tx) error {
					return tx.DeleteRoom(context.Background())
				})
			})
			return r, host
		}
		require.ErrorIs(t, err, room.ErrDuplicateCode)
	}
	t.Fatal("could not find a free room code")
	return nil, nil
}

func TestStoreCreateAndRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r, host := freshRoom(t, s, "민수")

	got, err := s.RoomByCode(ctx, r.Code)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, models.StatusWaiting, got.Status)

	p, err := s.PlayerBySession(ctx, r.ID, host.SessionToken)
	require.NoError(t, err)
	assert.True(t, p.IsHost)
	assert.Equal(t, "민수", p.Nickname)

	_, err = s.PlayerBySession(ctx, r.ID, "nope")
	assert.ErrorIs(t, err, room.ErrPlayerNotFound)
}

func TestStoreDuplicateCode(t *testing.T) {
	s := newTestStore(t)
	r, _ := freshRoom(t, s, "민수")

	dup := &models.Room{ID: uuid.New(), Code: r.Code, Status: models.StatusWaiting, CreatedAt: time.Now()}
	host := &models.Player{ID: uuid.New(), RoomID: dup.ID, Nickname: "지영", SessionToken: uuid.NewString(), IsHost: true}
	err := s.CreateRoom(context.Background(), dup, host)
	assert.ErrorIs(t, err, room.ErrDuplicateCode)
}

func TestStoreNicknameTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r, host := freshRoom(t, s, "민수")

	err := s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		return tx.InsertPlayer(ctx, &models.Player{
			ID: uuid.New(), Nickname: "민수", SessionToken: uuid.NewString(),
			JoinedAt: time.Now(), LastSeenAt: time.Now(),
		})
	})
	assert.ErrorIs(t, err, room.ErrNicknameTaken)

	err = s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		return tx.InsertPlayer(ctx, &models.Player{
			ID: uuid.New(), Nickname: "지영", SessionToken: host.SessionToken,
			JoinedAt: time.Now(), LastSeenAt: time.Now(),
		})
	})
	assert.ErrorIs(t, err, room.ErrAlreadyJoined)

	players, err := s.Players(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}

func TestStoreAssignResetAndHostTransfer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r, host := freshRoom(t, s, "민수")
	guest := &models.Player{
		ID: uuid.New(), Nickname: "지영", SessionToken: uuid.NewString(),
		JoinedAt: time.Now().Add(time.Second), LastSeenAt: time.Now(),
	}
	require.NoError(t, s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		return tx.InsertPlayer(ctx, guest)
	}))

	assignments := []models.Assignment{
		{PlayerID: guest.ID, Role: models.RoleFool, Topic: "이순신"},
		{PlayerID: host.ID, Role: models.RoleNormal, Topic: "세종대왕"},
	}
	require.NoError(t, s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		return tx.ApplyAssignments(ctx, "세종대왕 / 이순신", assignments)
	}))

	got, err := s.RoomByCode(ctx, r.Code)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlaying, got.Status)
	require.NotNil(t, got.CurrentTopic)
	assert.Equal(t, "세종대왕 / 이순신", *got.CurrentTopic)

	p, err := s.PlayerBySession(ctx, r.ID, guest.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, p.Role)
	assert.Equal(t, models.RoleFool, *p.Role)
	assert.Equal(t, "이순신", *p.AssignedTopic)

	require.NoError(t, s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		return tx.ResetRound(ctx)
	}))
	players, err := s.Players(ctx, r.ID)
	require.NoError(t, err)
	for _, p := range players {
		assert.Nil(t, p.Role)
		assert.Nil(t, p.AssignedTopic)
	}

	require.NoError(t, s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		if err := tx.DeletePlayer(ctx, host.ID); err != nil {
			return err
		}
		return tx.SetHost(ctx, guest.ID)
	}))
	p, err = s.PlayerBySession(ctx, r.ID, guest.SessionToken)
	require.NoError(t, err)
	assert.True(t, p.IsHost)
}

func TestStoreRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r, _ := freshRoom(t, s, "민수")

	err := s.RunAtomically(ctx, r.Code, func(tx room.Tx) error {
		if err := tx.InsertPlayer(ctx, &models.Player{
			ID: uuid.New(), Nickname: "지영", SessionToken: uuid.NewString(),
			JoinedAt: time.Now(), LastSeenAt: time.Now(),
		}); err != nil {
			return err
		}
		return room.ErrRosterChanged
	})
	require.ErrorIs(t, err, room.ErrRosterChanged)

	players, err := s.Players(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, players, 1)
}
