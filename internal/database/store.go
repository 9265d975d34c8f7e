// internal/database/store.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
)

const uniqueViolation = "23505"

// Store is the Postgres implementation of room.Store. Every transition runs in a
// transaction that holds a row lock on the room, which serializes concurrent starts,
// joins, leaves and resets of the same room.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ room.Store = (*Store)(nil)

// mapUniqueViolation turns unique-constraint failures into room conflict errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "rooms_code_key":
		return room.ErrDuplicateCode
	case "players_room_nickname_key":
		return room.ErrNicknameTaken
	case "players_room_session_key":
		return room.ErrAlreadyJoined
	}
	return err
}

const selectRoom = `SELECT id, code, status, current_topic, created_at FROM rooms`

const selectPlayer = `
	SELECT id, room_id, nickname, session_token, role, assigned_topic,
	       is_host, joined_at, last_seen_at
	FROM players`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var r models.Room
	var status string
	err := row.Scan(&r.ID, &r.Code, &status, &r.CurrentTopic, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, room.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	r.Status = models.RoomStatus(status)
	return &r, nil
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var role *string
	err := row.Scan(
		&p.ID, &p.RoomID, &p.Nickname, &p.SessionToken, &role, &p.AssignedTopic,
		&p.IsHost, &p.JoinedAt, &p.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	if role != nil {
		r := models.Role(*role)
		p.Role = &r
	}
	return &p, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listPlayers(ctx context.Context, q querier, roomID uuid.UUID) ([]models.Player, error) {
	rows, err := q.Query(ctx, selectPlayer+` WHERE room_id = $1 ORDER BY joined_at, id`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func insertPlayer(ctx context.Context, tx pgx.Tx, p *models.Player) error {
	q := `
	INSERT INTO players (id, room_id, nickname, session_token, is_host, joined_at, last_seen_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, q, p.ID, p.RoomID, p.Nickname, p.SessionToken, p.IsHost, p.JoinedAt, p.LastSeenAt)
	return mapUniqueViolation(err)
}

// CreateRoom inserts the room and its host in one transaction.
func (s *Store) CreateRoom(ctx context.Context, r *models.Room, host *models.Player) error {
	q := `
	INSERT INTO rooms (id, code, status, created_at)
	VALUES ($1, $2, $3, $4)
	`
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, r.ID, r.Code, string(r.Status), r.CreatedAt); err != nil {
			return mapUniqueViolation(err)
		}
		return insertPlayer(ctx, tx, host)
	})
}

func (s *Store) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	return scanRoom(s.pool.QueryRow(ctx, selectRoom+` WHERE code = $1`, code))
}

func (s *Store) Players(ctx context.Context, roomID uuid.UUID) ([]models.Player, error) {
	return listPlayers(ctx, s.pool, roomID)
}

func (s *Store) PlayerBySession(ctx context.Context, roomID uuid.UUID, token string) (*models.Player, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx,
		selectPlayer+` WHERE room_id = $1 AND session_token = $2`, roomID, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, room.ErrPlayerNotFound
	}
	return p, err
}

func (s *Store) TouchPlayer(ctx context.Context, playerID uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE players SET last_seen_at = $1 WHERE id = $2`, at, playerID)
	return err
}

func (s *Store) StalePlayers(ctx context.Context, before time.Time) ([]room.StalePlayer, error) {
	q := `
	SELECT r.code, p.id, p.last_seen_at
	FROM players p
	JOIN rooms r ON r.id = p.room_id
	WHERE p.last_seen_at < $1
	ORDER BY p.last_seen_at
	`
	rows, err := s.pool.Query(ctx, q, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []room.StalePlayer
	for rows.Next() {
		var sp room.StalePlayer
		if err := rows.Scan(&sp.RoomCode, &sp.PlayerID, &sp.LastSeenAt); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// RunAtomically locks the room row with SELECT ... FOR UPDATE and runs fn in the same transaction.
func (s *Store) RunAtomically(ctx context.Context, code string, fn func(tx room.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		r, err := scanRoom(tx.QueryRow(ctx, selectRoom+` WHERE code = $1 FOR UPDATE`, code))
		if err != nil {
			return err
		}
		return fn(&pgTx{tx: tx, room: *r})
	})
}

type pgTx struct {
	tx   pgx.Tx
	room models.Room
}

func (t *pgTx) Room() *models.Room {
	r := t.room
	return &r
}

func (t *pgTx) Players(ctx context.Context) ([]models.Player, error) {
	return listPlayers(ctx, t.tx, t.room.ID)
}

func (t *pgTx) InsertPlayer(ctx context.Context, p *models.Player) error {
	cp := *p
	cp.RoomID = t.room.ID
	return insertPlayer(ctx, t.tx, &cp)
}

// ApplyAssignments is the assign_roles step of starting a round.
func (t *pgTx) ApplyAssignments(ctx context.Context, topicLabel string, assignments []models.Assignment) error {
	q := `UPDATE players SET role = $1, assigned_topic = $2 WHERE id = $3 AND room_id = $4`
	for _, a := range assignments {
		tag, err := t.tx.Exec(ctx, q, string(a.Role), a.Topic, a.PlayerID, t.room.ID)
		if err != nil {
			return fmt.Errorf("assign role to %s: %w", a.PlayerID, err)
		}
		if tag.RowsAffected() != 1 {
			return room.ErrRosterChanged
		}
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE rooms SET status = 'playing', current_topic = $1 WHERE id = $2`,
		topicLabel, t.room.ID)
	if err != nil {
		return err
	}
	t.room.Status = models.StatusPlaying
	t.room.CurrentTopic = &topicLabel
	return nil
}

// ResetRound is the reset_game step.
func (t *pgTx) ResetRound(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx,
		`UPDATE players SET role = NULL, assigned_topic = NULL WHERE room_id = $1`, t.room.ID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx,
		`UPDATE rooms SET status = 'waiting', current_topic = NULL WHERE id = $1`, t.room.ID); err != nil {
		return err
	}
	t.room.Status = models.StatusWaiting
	t.room.CurrentTopic = nil
	return nil
}

// SetHost clears the current host before promoting, so players_one_host_idx never sees two.
func (t *pgTx) SetHost(ctx context.Context, playerID uuid.UUID) error {
	if _, err := t.tx.Exec(ctx,
		`UPDATE players SET is_host = false WHERE room_id = $1 AND is_host AND id <> $2`,
		t.room.ID, playerID); err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx,
		`UPDATE players SET is_host = true WHERE id = $1 AND room_id = $2`, playerID, t.room.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return room.ErrPlayerNotFound
	}
	return nil
}

func (t *pgTx) DeletePlayer(ctx context.Context, playerID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM players WHERE id = $1 AND room_id = $2`, playerID, t.room.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return room.ErrPlayerNotFound
	}
	return nil
}

func (t *pgTx) DeleteRoom(ctx context.Context) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, t.room.ID)
	return err
}
