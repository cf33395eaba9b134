package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances by step on every read
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestTrackAccumulates(t *testing.T) {
	clk := &fakeClock{step: 2 * time.Millisecond}
	p := NewWithClock(clk.now)

	p.Track("a")()
	p.Track("a")()
	p.Track("b")()

	snap := p.Snapshot()
	assert.Equal(t, 4*time.Millisecond, snap["a"])
	assert.Equal(t, 2*time.Millisecond, snap["b"])

	p.Reset()
	assert.Empty(t, p.Snapshot())
}

func TestTopOrdersByDuration(t *testing.T) {
	clk := &fakeClock{step: 1500 * time.Microsecond}
	p := NewWithClock(clk.now)

	p.Track("fast")()
	stop := p.Track("slow")
	clk.now()
	stop()

	assert.Equal(t, "slow:3ms, fast:1.5ms", p.Top(5))
	assert.Equal(t, "slow:3ms", p.Top(1))
	assert.Equal(t, "", p.Top(0))
	assert.Equal(t, "", p.Top(-1))
}

func TestFrameMeter(t *testing.T) {
	var m FrameMeter
	assert.Zero(t, m.FrameTime())

	refreshed := 0
	for i := 0; i < 100; i++ {
		if m.Tick(20 * time.Millisecond) {
			refreshed++
		}
	}
	// 100 frames of 20ms is two full seconds
	require.Equal(t, 2, refreshed)
	assert.InDelta(t, 50, m.FPS(), 1e-9)
	assert.Equal(t, 20*time.Millisecond, m.FrameTime())
}

func TestFrameMeterRollingAverage(t *testing.T) {
	var m FrameMeter
	m.Tick(10 * time.Millisecond)
	m.Tick(30 * time.Millisecond)
	assert.Equal(t, 20*time.Millisecond, m.FrameTime())

	for i := 0; i < AverageWindow; i++ {
		m.Tick(5 * time.Millisecond)
	}
	assert.Equal(t, 5*time.Millisecond, m.FrameTime(), "older samples should fall out of the window")
}
