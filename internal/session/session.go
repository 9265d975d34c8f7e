// internal/session/session.go
package session

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotMember is returned by Load when either credential for a room is missing.
var ErrNotMember = errors.New("not a member of this room")

// Store is a small persisted key-value store holding the credentials a client uses to
// re-identify itself in a room across restarts.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Credentials identify one seat in one room.
type Credentials struct {
	Code     string
	Token    string
	Nickname string
}

func TokenKey(code string) string    { return "session_" + code }
func NicknameKey(code string) string { return "nickname_" + code }

// NewToken returns a fresh opaque session token.
func NewToken() string {
	return uuid.NewString()
}

// Save stores the token and nickname for a room.
func Save(s Store, c Credentials) error {
	if err := s.Set(TokenKey(c.Code), c.Token); err != nil {
		return err
	}
	return s.Set(NicknameKey(c.Code), c.Nickname)
}

// Load reads the credentials for a room. Absence of either key means the caller is
// not a member and yields ErrNotMember.
func Load(s Store, code string) (Credentials, error) {
	token, ok, err := s.Get(TokenKey(code))
	if err != nil {
		return Credentials{}, err
	}
	if !ok || token == "" {
		return Credentials{}, ErrNotMember
	}
	nickname, ok, err := s.Get(NicknameKey(code))
	if err != nil {
		return Credentials{}, err
	}
	if !ok || nickname == "" {
		return Credentials{}, ErrNotMember
	}
	return Credentials{Code: code, Token: token, Nickname: nickname}, nil
}

// Clear removes both credentials for a room.
func Clear(s Store, code string) error {
	return errors.Join(s.Delete(TokenKey(code)), s.Delete(NicknameKey(code)))
}
