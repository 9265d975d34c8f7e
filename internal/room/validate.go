// internal/room/validate.go
package room

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxNicknameLen = 6
	CodeLen        = 4
	maxTokenLen    = 128
)

// normalizeNickname trims surrounding whitespace and checks the length in characters.
// Invalid UTF-8 is rejected.
func normalizeNickname(nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	n := utf8.RuneCountInString(nickname)
	if !utf8.ValidString(nickname) || n < 1 || n > MaxNicknameLen {
		return "", ErrInvalidNickname
	}
	return nickname, nil
}

func validateCode(code string) error {
	if len(code) != CodeLen {
		return ErrInvalidRoomCode
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidRoomCode
		}
	}
	return nil
}

func validateToken(token string) error {
	if token == "" || len(token) > maxTokenLen || !utf8.ValidString(token) || strings.TrimSpace(token) != token {
		return ErrInvalidSession
	}
	return nil
}
