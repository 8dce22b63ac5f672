// internal/game/rng.go
//
// Injected randomness for the engine.
// Sequence shuffles and room codes draw from a Rand so tests can seed a
// deterministic source while production uses a crypto-seeded one.

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Rand is the randomness source the engine depends on.
type Rand interface {
	// Intn returns a uniform random int in [0, n). Panics if n <= 0.
	Intn(n int) int
}

// lockedRand wraps math/rand for concurrent use. *rand.Rand itself is not
// safe for use by multiple goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRand returns a concurrency-safe Rand seeded from crypto/rand.
func NewRand() Rand {
	var b [8]byte
	_, _ = crand.Read(b[:])
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	return NewSeededRand(seed)
}

// NewSeededRand returns a concurrency-safe Rand with a fixed seed.
// Tests use this to make sequences and room codes reproducible.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

// GenSeq returns a fair shuffle of the attribute multiset
// {0,0,0,1,1,1,2,2,2}: each of the three attribute indexes appears exactly
// three times, in random order.
func GenSeq(rng Rand) []int {
	seq := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	for i := len(seq) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		seq[i], seq[j] = seq[j], seq[i]
	}
	return seq
}
