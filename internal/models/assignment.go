// internal/models/assignment.go
package models

import "github.com/google/uuid"

// Assignment is the role and word handed to a single player when a round starts.
type Assignment struct {
	PlayerID uuid.UUID `json:"player_id"`
	Role     Role      `json:"role"`
	Topic    string    `json:"topic"`
}

// WordPair is a category plus two commonly confused words of that category.
// WordA goes to the majority, WordB to the fools.
type WordPair struct {
	Category string `json:"category"`
	WordA    string `json:"wordA"`
	WordB    string `json:"wordB"`
}

// Label is the human-readable topic recorded on the room while a round is playing.
func (p WordPair) Label() string {
	return p.WordA + " / " + p.WordB
}
