package recommend

import (
	"math/rand"
	"time"
)

// Shuffler supplies the randomness for traversal order and draw counts.
// Injectable so tests can substitute a deterministic source and assert
// exact output ordering.
type Shuffler interface {
	// Shuffle permutes n elements via the swap function.
	Shuffle(n int, swap func(i, j int))
	// IntN returns a random int in [0, n).
	IntN(n int) int
}

type randShuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a Shuffler seeded from the current time.
func NewShuffler() Shuffler {
	return &randShuffler{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededShuffler returns a deterministic Shuffler for the given seed.
func NewSeededShuffler(seed int64) Shuffler {
	return &randShuffler{rng: rand.New(rand.NewSource(seed))}
}

func (r *randShuffler) Shuffle(n int, swap func(i, j int)) { r.rng.Shuffle(n, swap) }
func (r *randShuffler) IntN(n int) int                     { return r.rng.Intn(n) }

// shuffled returns a shuffled copy, leaving the input untouched.
func shuffled[T any](s Shuffler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	s.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// sample returns up to n elements drawn without replacement.
func sample[T any](s Shuffler, items []T, n int) []T {
	out := shuffled(s, items)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
