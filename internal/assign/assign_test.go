package assign

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// TestAssignPartition checks every (n, foolCount) combination for small rooms.
func TestAssignPartition(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for n := 2; n <= 10; n++ {
		for fools := 1; fools < n; fools++ {
			ids := newIDs(n)
			out := Assign(rng, ids, "사과", "배", fools)
			require.Len(t, out, n)

			seen := make(map[uuid.UUID]int)
			var foolCount, normalCount int
			for _, a := range out {
				seen[a.PlayerID]++
				switch a.Role {
				case models.RoleFool:
					foolCount++
					assert.Equal(t, "배", a.Topic)
				case models.RoleNormal:
					normalCount++
					assert.Equal(t, "사과", a.Topic)
				default:
					t.Fatalf("unexpected role %q", a.Role)
				}
			}
			assert.Equal(t, fools, foolCount, "n=%d", n)
			assert.Equal(t, n-fools, normalCount, "n=%d", n)
			require.Len(t, seen, n)
			for _, id := range ids {
				assert.Equal(t, 1, seen[id], "player %s should appear exactly once", id)
			}
		}
	}
}

func TestAssignDoesNotMutateInput(t *testing.T) {
	ids := newIDs(6)
	orig := append([]uuid.UUID(nil), ids...)
	Assign(rand.New(rand.NewPCG(7, 7)), ids, "a", "b", 2)
	assert.Equal(t, orig, ids)
}

// TestAssignUniformity runs many trials on a fixed room and checks each player lands in
// the fool subset about foolCount/n of the time.
func TestAssignUniformity(t *testing.T) {
	const (
		trials = 30000
		n      = 5
		fools  = 2
	)
	rng := rand.New(rand.NewPCG(42, 1337))
	ids := newIDs(n)
	hits := make(map[uuid.UUID]int, n)
	for i := 0; i < trials; i++ {
		for _, a := range Assign(rng, ids, "a", "b", fools) {
			if a.Role == models.RoleFool {
				hits[a.PlayerID]++
			}
		}
	}
	want := float64(fools) / float64(n)
	for _, id := range ids {
		got := float64(hits[id]) / trials
		assert.InDelta(t, want, got, 0.02, "fool frequency for %s", id)
	}
}

// TestShufflePermutationsUniform checks all 3! orderings show up with equal frequency.
func TestShufflePermutationsUniform(t *testing.T) {
	const trials = 60000
	rng := rand.New(rand.NewPCG(3, 9))
	ids := newIDs(3)
	counts := make(map[[3]uuid.UUID]int)
	for i := 0; i < trials; i++ {
		perm := append([]uuid.UUID(nil), ids...)
		Shuffle(rng, perm)
		counts[[3]uuid.UUID{perm[0], perm[1], perm[2]}]++
	}
	require.Len(t, counts, 6)
	for perm, c := range counts {
		assert.InDelta(t, 1.0/6, float64(c)/trials, 0.01, "permutation %v", perm)
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := NewEngine()
	ids := newIDs(4)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				out := e.Assign(ids, "a", "b", 1)
				if len(out) != 4 {
					t.Errorf("expected 4 assignments, got %d", len(out))
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
