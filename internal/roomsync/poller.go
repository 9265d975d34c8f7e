// internal/roomsync/poller.go
package roomsync

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/session"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is how often a poller re-fetches room state. It is also the staleness
// bound: a committed transition is visible to every poller within one interval.
const DefaultInterval = time.Second

var (
	// ErrRoomGone means the room no longer exists.
	ErrRoomGone = errors.New("room was deleted")
	// ErrPlayerGone means the session no longer has a seat in the room.
	ErrPlayerGone = errors.New("player was removed from the room")
)

// Fetcher reads the state of one room as seen by one session. Implementations return
// ErrRoomGone or ErrPlayerGone for the two absence cases; any other error is treated
// as transient.
type Fetcher interface {
	RoomState(ctx context.Context, code, token string) (*models.RoomState, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, code, token string) (*models.RoomState, error)

func (f FetcherFunc) RoomState(ctx context.Context, code, token string) (*models.RoomState, error) {
	return f(ctx, code, token)
}

// Outcome is the result of one reconciliation tick.
type Outcome int

const (
	Continue Outcome = iota
	RoomDeleted
	Removed
)

func (o Outcome) String() string {
	switch o {
	case RoomDeleted:
		return "room_deleted"
	case Removed:
		return "removed"
	default:
		return "continue"
	}
}

// View is the locally observed state of the room.
type View struct {
	Status models.RoomStatus
	IsHost bool
	// Topic is the caller's own word. Only set while playing.
	Topic  *string
	Roster []models.RosterEntry
}

func (v View) equal(o View) bool {
	if v.Status != o.Status || v.IsHost != o.IsHost {
		return false
	}
	if (v.Topic == nil) != (o.Topic == nil) || (v.Topic != nil && *v.Topic != *o.Topic) {
		return false
	}
	return slices.Equal(v.Roster, o.Roster)
}

// Poller keeps a View of one room in sync with the server by polling.
type Poller struct {
	fetcher  Fetcher
	sessions session.Store
	creds    session.Credentials
	interval time.Duration
	logger   *logrus.Logger

	view View
}

// NewPoller builds a poller for the given credentials.
func NewPoller(fetcher Fetcher, sessions session.Store, creds session.Credentials, logger *logrus.Logger) *Poller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Poller{
		fetcher:  fetcher,
		sessions: sessions,
		creds:    creds,
		interval: DefaultInterval,
		logger:   logger,
	}
}

// Load builds a poller from the credentials stored for code. It returns
// session.ErrNotMember when either credential is missing.
func Load(fetcher Fetcher, sessions session.Store, code string, logger *logrus.Logger) (*Poller, error) {
	creds, err := session.Load(sessions, code)
	if err != nil {
		return nil, err
	}
	return NewPoller(fetcher, sessions, creds, logger), nil
}

// SetInterval overrides DefaultInterval. Non-positive values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Poller) Credentials() session.Credentials { return p.creds }

// View returns the last reconciled view.
func (p *Poller) View() View { return p.view }

// Poll runs one reconciliation tick.
func (p *Poller) Poll(ctx context.Context) (Outcome, View) {
	logCtx := p.logger.WithField("room_code", p.creds.Code)

	state, err := p.fetcher.RoomState(ctx, p.creds.Code, p.creds.Token)
	switch {
	case errors.Is(err, ErrRoomGone):
		p.forget(logCtx)
		logCtx.Info("room was deleted")
		return RoomDeleted, p.view
	case errors.Is(err, ErrPlayerGone):
		p.forget(logCtx)
		logCtx.Info("removed from room")
		return Removed, p.view
	case err != nil:
		logCtx.WithError(err).Warn("poll failed, keeping last view")
		return Continue, p.view
	}

	p.reconcile(state)
	return Continue, p.view
}

func (p *Poller) reconcile(state *models.RoomState) {
	next := View{
		Status: state.Status,
		IsHost: state.Me.IsHost,
		Topic:  p.view.Topic,
		Roster: state.Players,
	}
	switch state.Status {
	case models.StatusPlaying:
		if t := state.Me.AssignedTopic; t != nil && *t != "" {
			topic := *t
			next.Topic = &topic
		}
	case models.StatusWaiting:
		next.Topic = nil
	}
	p.view = next
}

func (p *Poller) forget(logCtx *logrus.Entry) {
	if err := session.Clear(p.sessions, p.creds.Code); err != nil {
		logCtx.WithError(err).Error("failed to clear session credentials")
	}
}

// Run polls immediately and then once per interval, calling onChange whenever the view
// changes. It returns the exit outcome when the room is deleted or the player removed,
// or ctx.Err() when ctx is cancelled.
func (p *Poller) Run(ctx context.Context, onChange func(View)) (Outcome, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	delivered := false
	for {
		prev := p.view
		outcome, view := p.Poll(ctx)
		if outcome != Continue {
			return outcome, nil
		}
		// an empty status means nothing has been fetched yet
		if onChange != nil && view.Status != "" && (!delivered || !view.equal(prev)) {
			onChange(view)
			delivered = true
		}

		select {
		case <-ctx.Done():
			return Continue, ctx.Err()
		case <-ticker.C:
		}
	}
}
