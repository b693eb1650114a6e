package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newTestLimiter returns a limiter with a controllable clock and no
// background sweep goroutine.
func newTestLimiter(max int, window time.Duration) (*FixedWindow, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	fw := &FixedWindow{
		counts: make(map[windowKey]int),
		max:    max,
		window: window,
		now:    func() time.Time { return now },
	}
	return fw, &now
}

func TestAllow_UpToMaxWithinWindow(t *testing.T) {
	fw, _ := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, fw.Allow("key1"), "request %d should pass", i+1)
	}
	assert.False(t, fw.Allow("key1"), "11th request must be rejected")
	assert.False(t, fw.Allow("key1"), "rejections must not consume slots")
}

func TestAllow_DeniedDoesNotIncrementPastCap(t *testing.T) {
	fw, _ := newTestLimiter(2, time.Minute)

	fw.Allow("k")
	fw.Allow("k")
	fw.Allow("k")
	key := windowKey{credential: "k", window: fw.currentWindow()}
	assert.Equal(t, 2, fw.counts[key])
}

func TestAllow_ResetsAfterWindowBoundary(t *testing.T) {
	fw, now := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		fw.Allow("key1")
	}
	assert.False(t, fw.Allow("key1"))

	*now = now.Add(time.Minute)
	assert.True(t, fw.Allow("key1"), "new window starts a fresh count")
}

func TestAllow_CredentialsAreIndependent(t *testing.T) {
	fw, _ := newTestLimiter(1, time.Minute)

	assert.True(t, fw.Allow("a"))
	assert.False(t, fw.Allow("a"))
	assert.True(t, fw.Allow("b"))
}

func TestEvictStale_DropsOldWindowsOnly(t *testing.T) {
	fw, now := newTestLimiter(10, time.Minute)

	fw.Allow("key1")
	*now = now.Add(time.Minute)
	fw.Allow("key2")

	fw.evictStale()

	assert.Len(t, fw.counts, 1)
	key := windowKey{credential: "key2", window: fw.currentWindow()}
	assert.Equal(t, 1, fw.counts[key])
}

func TestNewFixedWindow_ClampsSubSecondWindow(t *testing.T) {
	fw := NewFixedWindow(1, 0)

	assert.Equal(t, time.Second, fw.window)
	assert.True(t, fw.Allow("k"), "Allow must not panic on a zero-length window config")
	assert.False(t, fw.Allow("k"))
}

func TestAllow_ConcurrentCallersNeverExceedCap(t *testing.T) {
	fw, _ := newTestLimiter(10, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fw.Allow("key1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
