package main

import "time"

// spinThreshold is the tail of each wait that is busy-waited instead of slept
const spinThreshold = 200 * time.Microsecond

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	next time.Time
}

// NewFPSLimiter creates a new FPS limiter
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{}
}

// frameTarget returns the frame period for a limit, or 0 for unlimited
func frameTarget(limit int) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Second / time.Duration(limit)
}

// Wait blocks until the next frame is due for the given limit. A limit of 0 disables waiting.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait(limit int) {
	target := frameTarget(limit)
	if target == 0 {
		f.next = time.Time{}
		return
	}

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinThreshold {
			time.Sleep(remaining - spinThreshold)
		}
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// Resync after a hitch so the limiter does not try to catch up
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
