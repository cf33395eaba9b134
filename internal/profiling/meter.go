package profiling

import "time"

// AverageWindow is the number of frames in the rolling frame time average
const AverageWindow = 30

// FrameMeter tracks frames per second and a rolling average frame time.
type FrameMeter struct {
	samples [AverageWindow]time.Duration
	next    int
	filled  int

	frames      int
	accumulated time.Duration
	fps         float64
}

// Tick records the duration of one frame. It reports true once per elapsed second,
// when the FPS value has just been refreshed.
func (m *FrameMeter) Tick(frame time.Duration) bool {
	if frame < 0 {
		frame = 0
	}
	m.samples[m.next] = frame
	m.next = (m.next + 1) % AverageWindow
	if m.filled < AverageWindow {
		m.filled++
	}

	m.frames++
	m.accumulated += frame
	if m.accumulated < time.Second {
		return false
	}
	m.fps = float64(m.frames) / m.accumulated.Seconds()
	m.frames = 0
	m.accumulated = 0
	return true
}

// FPS returns the frame rate measured over the last full second
func (m *FrameMeter) FPS() float64 {
	return m.fps
}

// FrameTime returns the average of the most recent frame durations
func (m *FrameMeter) FrameTime() time.Duration {
	if m.filled == 0 {
		return 0
	}
	var sum time.Duration
	for _, s := range m.samples[:m.filled] {
		sum += s
	}
	return sum / time.Duration(m.filled)
}
