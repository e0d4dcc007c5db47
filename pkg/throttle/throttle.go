// Package throttle paces successive upstream requests. The feed fetcher uses
// it to leave a short gap between pages; this is politeness toward the
// upstream service, not a correctness requirement.
package throttle

import (
	"sync"
	"time"
)

// Pacer enforces a minimum interval between successive operations
type Pacer struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex

	// Injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Pacer with the given minimum interval. A zero or negative
// interval disables pacing entirely.
func New(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Wait blocks until at least the configured interval has passed since the
// previous Wait returned. The first call never blocks.
func (p *Pacer) Wait() {
	if p.interval <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if remaining := p.interval - p.now().Sub(p.last); remaining > 0 {
			p.sleep(remaining)
		}
	}
	p.last = p.now()
}

// Reset forgets the previous operation, so the next Wait returns immediately
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = time.Time{}
}
