// internal/room/errors.go
package room

import "errors"

// Validation errors: rejected before any I/O.
var (
	ErrInvalidNickname  = errors.New("nickname must be 1 to 6 characters")
	ErrInvalidRoomCode  = errors.New("room code must be 4 digits")
	ErrInvalidFoolCount = errors.New("fool count must be at least 1 and less than the number of players")
	ErrInvalidSession   = errors.New("invalid session token")
	ErrCannotKickSelf   = errors.New("host cannot kick themselves")
)

// Not-found errors. Pollers treat these as a forced exit.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Conflict errors.
var (
	ErrDuplicateCode  = errors.New("room code already in use")
	ErrNicknameTaken  = errors.New("nickname already taken")
	ErrAlreadyJoined  = errors.New("session already joined this room")
	ErrGameInProgress = errors.New("game already in progress")
	ErrRosterChanged  = errors.New("players changed while starting, try again")
)

var (
	ErrNotHost = errors.New("only the host can do that")

	// ErrRoomCreateFailed is returned when no free code was found within the attempt budget.
	ErrRoomCreateFailed = errors.New("failed to create room")
)

// ErrorKind groups errors for transports.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Kind classifies err. Unknown errors, including wrapped store failures, are internal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidNickname),
		errors.Is(err, ErrInvalidRoomCode),
		errors.Is(err, ErrInvalidFoolCount),
		errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrCannotKickSelf):
		return KindValidation
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrPlayerNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrNicknameTaken),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrGameInProgress),
		errors.Is(err, ErrRosterChanged):
		return KindConflict
	case errors.Is(err, ErrNotHost):
		return KindForbidden
	}
	return KindInternal
}

// errorCodes are the stable identifiers transports use for the sentinel errors.
var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidNickname, "invalid_nickname"},
	{ErrInvalidRoomCode, "invalid_room_code"},
	{ErrInvalidFoolCount, "invalid_fool_count"},
	{ErrInvalidSession, "invalid_session"},
	{ErrCannotKickSelf, "cannot_kick_self"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrDuplicateCode, "duplicate_code"},
	{ErrNicknameTaken, "nickname_taken"},
	{ErrAlreadyJoined, "already_joined"},
	{ErrGameInProgress, "game_in_progress"},
	{ErrRosterChanged, "roster_changed"},
	{ErrNotHost, "not_host"},
	{ErrRoomCreateFailed, "room_create_failed"},
}

// Code returns the wire code for err, or "internal" for anything unrecognized.
func Code(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// FromCode is the inverse of Code. It returns nil for unknown codes.
func FromCode(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
