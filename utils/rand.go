package utils

import (
	"math/rand"
	"sync"
	"time"
)

// LockedRand wraps math/rand.Rand with a mutex so concurrent selection
// calls can share one source. Tests inject a bare *rand.Rand with a fixed
// seed instead.
type LockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedRand returns a time-seeded locked random source.
func NewLockedRand() *LockedRand {
	return &LockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}
