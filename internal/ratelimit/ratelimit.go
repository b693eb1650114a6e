// Package ratelimit implements a fixed-window request counter keyed by
// credential. Windows are aligned to multiples of the window length, so a
// burst straddling a window boundary can see up to 2×max requests accepted;
// that is the documented trade-off of the scheme, not a bug.
package ratelimit

import (
	"sync"
	"time"
)

type windowKey struct {
	credential string
	window     int64
}

// FixedWindow counts requests per (credential, window) pair in memory.
// Counters for expired windows are evicted by a background sweep so memory
// stays bounded by the number of credentials active in the current window.
type FixedWindow struct {
	mu     sync.Mutex
	counts map[windowKey]int
	max    int
	window time.Duration
	now    func() time.Time
}

// NewFixedWindow creates a limiter allowing max requests per window length.
// Windows shorter than one second are clamped to one second; currentWindow
// divides by whole seconds and the sweep sleeps for one window.
func NewFixedWindow(max int, window time.Duration) *FixedWindow {
	if window < time.Second {
		window = time.Second
	}
	fw := &FixedWindow{
		counts: make(map[windowKey]int),
		max:    max,
		window: window,
		now:    time.Now,
	}
	go fw.sweep()
	return fw
}

// Allow reports whether credential may perform another request in the current
// window and, if so, consumes one slot. Once the window's count reaches max,
// further calls return false without incrementing.
func (fw *FixedWindow) Allow(credential string) bool {
	key := windowKey{credential: credential, window: fw.currentWindow()}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.counts[key] >= fw.max {
		return false
	}
	fw.counts[key]++
	return true
}

func (fw *FixedWindow) currentWindow() int64 {
	return fw.now().Unix() / int64(fw.window/time.Second)
}

// sweep drops counters for windows older than the current one.
func (fw *FixedWindow) sweep() {
	for {
		time.Sleep(fw.window)
		fw.evictStale()
	}
}

func (fw *FixedWindow) evictStale() {
	current := fw.currentWindow()
	fw.mu.Lock()
	for key := range fw.counts {
		if key.window < current {
			delete(fw.counts, key)
		}
	}
	fw.mu.Unlock()
}
