package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Profiler accumulates per-frame CPU time by section name.
type Profiler struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	now    func() time.Time
}

// New returns a profiler reading the wall clock
func New() *Profiler {
	return NewWithClock(time.Now)
}

// NewWithClock returns a profiler reading the given clock
func NewWithClock(now func() time.Time) *Profiler {
	return &Profiler{totals: make(map[string]time.Duration), now: now}
}

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer p.Track("renderer.Render")()
func (p *Profiler) Track(name string) func() {
	start := p.now()
	return func() {
		d := p.now().Sub(start)
		p.mu.Lock()
		p.totals[name] += d
		p.mu.Unlock()
	}
}

// Reset clears the current totals. Call at the start of each frame.
func (p *Profiler) Reset() {
	p.mu.Lock()
	clear(p.totals)
	p.mu.Unlock()
}

// Snapshot returns a copy of the current totals
func (p *Profiler) Snapshot() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]time.Duration, len(p.totals))
	for k, v := range p.totals {
		out[k] = v
	}
	return out
}

// Top formats the n largest totals, longest first.
// Example: "renderer.Submit:4.2ms, renderer.Uniforms:0.1ms"
func (p *Profiler) Top(n int) string {
	ss := p.Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	n = max(min(n, len(list)), 0)
	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		parts = append(parts, e.name+":"+formatMs(e.dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing .0
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("%.1f", ms)
	return strings.TrimSuffix(s, ".0") + "ms"
}
