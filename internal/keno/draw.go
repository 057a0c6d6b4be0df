package keno

import (
	"math/rand"
	"sync"
	"time"
)

const (
	MinNumber = 1
	MaxNumber = 80
	DrawSize  = 20
)

// Drawer draws winning numbers. rand.Rand is not safe for concurrent use, so
// every draw holds mu.
type Drawer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrawer creates a drawer over rng. A nil rng is seeded from the clock.
func NewDrawer(rng *rand.Rand) *Drawer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Drawer{rng: rng}
}

// Draw returns DrawSize distinct numbers in [MinNumber, MaxNumber], in draw order.
func (d *Drawer) Draw() []int {
	d.mu.Lock()
	perm := d.rng.Perm(MaxNumber - MinNumber + 1)
	d.mu.Unlock()

	numbers := make([]int, DrawSize)
	for i := range numbers {
		numbers[i] = perm[i] + MinNumber
	}
	return numbers
}
