// Package chance provides the random sources that drive part gating,
// rotation and output selection.
package chance

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is the randomness a bot consumes. Float64 returns a value in [0,1);
// IntN returns a value in [0,n).
type Source interface {
	Float64() float64
	IntN(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a goroutine-safe Source. A zero seed seeds from the clock.
func New(seed uint64) Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Script replays fixed draws. Float64 cycles through Floats and IntN through
// Ints (reduced modulo n); an empty list yields 0.
type Script struct {
	Floats []float64
	Ints   []int

	mu sync.Mutex
	fi int
	ii int
}

func (s *Script) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

func (s *Script) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)] % n
	s.ii++
	return v
}

// FloatDraws returns how many Float64 draws have been consumed.
func (s *Script) FloatDraws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fi
}
