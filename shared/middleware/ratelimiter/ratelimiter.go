// Package ratelimiter keeps one token bucket per client key.
package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a single client's token bucket. Idle buckets are dropped after the
// owner's expiration so the map does not grow with every client ever seen.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	idle       *time.Timer
}

type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	rate       float64 // tokens per second
	capacity   float64
	expiration time.Duration
	now        func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(rate, capacity float64, expiration time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		rate:       rate,
		capacity:   capacity,
		expiration: expiration,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	b := l.bucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) bucket(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		l.touch(key, b)
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		l.touch(key, b)
		return b
	}
	b = &bucket{tokens: l.capacity, lastRefill: l.now()}
	l.buckets[key] = b
	l.touch(key, b)
	return b
}

func (l *Limiter) touch(key string, b *bucket) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.idle != nil {
		b.idle.Stop()
	}
	b.idle = time.AfterFunc(l.expiration, func() { l.forget(key, b) })
}

func (l *Limiter) forget(key string, b *bucket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buckets[key] == b {
		delete(l.buckets, key)
	}
}

// Len is the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop cancels every idle timer and forgets all clients.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		b.mu.Lock()
		if b.idle != nil {
			b.idle.Stop()
		}
		b.mu.Unlock()
	}
	l.buckets = make(map[string]*bucket)
}
