package light

import (
	"sync"
	"time"
)

// RateLimiter spaces out forced publishes per location
type RateLimiter struct {
	mu             sync.RWMutex
	lastPublishMap map[string]time.Time
	now            func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastPublishMap: make(map[string]time.Time),
		now:            time.Now,
	}
}

// ShouldPublish checks if at least minInterval has passed since the last publish
// and records a publish if so
func (rl *RateLimiter) ShouldPublish(location string, minInterval time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	lastTime, exists := rl.lastPublishMap[location]
	if exists && now.Sub(lastTime) < minInterval {
		return false
	}

	rl.lastPublishMap[location] = now
	return true
}

// RecordPublish records a publish that did not go through ShouldPublish
func (rl *RateLimiter) RecordPublish(location string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastPublishMap[location] = rl.now()
}

// LastPublishTime returns the last publish time for a location
func (rl *RateLimiter) LastPublishTime(location string) (time.Time, bool) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	lastTime, exists := rl.lastPublishMap[location]
	return lastTime, exists
}
