package ratelimiter

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAllow(t *testing.T) {
	t.Run("burst up to capacity then deny", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		l := New(1, 3, time.Hour, WithClock(clock.Now))
		defer l.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, l.Allow("1.2.3.4"), "request %d", i)
		}
		assert.False(t, l.Allow("1.2.3.4"))
	})

	t.Run("refills over time", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		l := New(1, 1, time.Hour, WithClock(clock.Now))
		defer l.Stop()

		require.True(t, l.Allow("1.2.3.4"))
		require.False(t, l.Allow("1.2.3.4"))

		clock.Advance(500 * time.Millisecond)
		assert.False(t, l.Allow("1.2.3.4"), "half a token is not enough")

		clock.Advance(600 * time.Millisecond)
		assert.True(t, l.Allow("1.2.3.4"))
	})

	t.Run("does not exceed capacity", func(t *testing.T) {
		clock := &fakeClock{now: time.Unix(0, 0)}
		l := New(1, 2, time.Hour, WithClock(clock.Now))
		defer l.Stop()

		require.True(t, l.Allow("k"))
		clock.Advance(time.Hour)
		assert.True(t, l.Allow("k"))
		assert.True(t, l.Allow("k"))
		assert.False(t, l.Allow("k"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := New(0, 1, time.Hour)
		defer l.Stop()

		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
	})
}

func TestExpiration(t *testing.T) {
	l := New(0, 1, 20*time.Millisecond)
	defer l.Stop()

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	assert.Equal(t, 1, l.Len())

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, l.Allow("a"), "a forgotten client starts with a full bucket")
}

func TestStop(t *testing.T) {
	l := New(1, 1, time.Hour)
	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, 5, l.Len())
	l.Stop()
	assert.Equal(t, 0, l.Len())
}

func TestConcurrentAllow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	l := New(1, 50, time.Hour, WithClock(clock.Now))
	defer l.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), allowed.Load())
}
