// internal/assign/assign.go
package assign

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
)

// Shuffle permutes ids in place with Fisher-Yates, walking from the end and swapping each
// position with a uniformly chosen position at or before it.
func Shuffle(rng *rand.Rand, ids []uuid.UUID) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// Assign shuffles the players and hands the first foolCount of them wordB as fools,
// everyone else wordA as normals. The caller guarantees 0 < foolCount < len(playerIDs).
// The input slice is not modified.
func Assign(rng *rand.Rand, playerIDs []uuid.UUID, wordA, wordB string, foolCount int) []models.Assignment {
	shuffled := make([]uuid.UUID, len(playerIDs))
	copy(shuffled, playerIDs)
	Shuffle(rng, shuffled)

	out := make([]models.Assignment, len(shuffled))
	for i, id := range shuffled {
		if i < foolCount {
			out[i] = models.Assignment{PlayerID: id, Role: models.RoleFool, Topic: wordB}
		} else {
			out[i] = models.Assignment{PlayerID: id, Role: models.RoleNormal, Topic: wordA}
		}
	}
	return out
}

// Engine is a goroutine-safe wrapper around Assign with its own random source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine backed by a ChaCha8 stream seeded from crypto/rand.
func NewEngine() *Engine {
	var seed [32]byte
	crand.Read(seed[:])
	return NewEngineWithRand(rand.New(rand.NewChaCha8(seed)))
}

// NewEngineWithRand is used by tests that need a reproducible shuffle.
func NewEngineWithRand(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// Assign runs Assign under the engine's lock.
func (e *Engine) Assign(playerIDs []uuid.UUID, wordA, wordB string, foolCount int) []models.Assignment {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Assign(e.rng, playerIDs, wordA, wordB, foolCount)
}

// Intn returns a uniform int in [0, n) from the engine's source.
func (e *Engine) Intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}
