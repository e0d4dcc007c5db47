package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives a Pacer without real sleeping
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func (c *fakeClock) install(p *Pacer) {
	p.now = func() time.Time { return c.current }
	p.sleep = func(d time.Duration) {
		c.slept = append(c.slept, d)
		c.current = c.current.Add(d)
	}
}

func TestFirstWaitNeverBlocks(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(200 * time.Millisecond)
	clock.install(p)

	p.Wait()
	assert.Empty(t, clock.slept)
}

func TestWaitEnforcesInterval(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(200 * time.Millisecond)
	clock.install(p)

	p.Wait()
	p.Wait()

	// No time passed between calls, so the full interval is slept.
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, clock.slept)
}

func TestWaitSleepsOnlyRemainder(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(200 * time.Millisecond)
	clock.install(p)

	p.Wait()
	clock.current = clock.current.Add(150 * time.Millisecond)
	p.Wait()

	assert.Equal(t, []time.Duration{50 * time.Millisecond}, clock.slept)
}

func TestWaitSkipsWhenIntervalElapsed(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(200 * time.Millisecond)
	clock.install(p)

	p.Wait()
	clock.current = clock.current.Add(time.Second)
	p.Wait()

	assert.Empty(t, clock.slept)
}

func TestZeroIntervalDisablesPacing(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(0)
	clock.install(p)

	p.Wait()
	p.Wait()
	assert.Empty(t, clock.slept)
}

func TestReset(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1000, 0)}
	p := New(200 * time.Millisecond)
	clock.install(p)

	p.Wait()
	p.Reset()
	p.Wait()

	assert.Empty(t, clock.slept)
}
