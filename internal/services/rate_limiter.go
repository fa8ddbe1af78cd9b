package services

import (
	"fmt"
	"sync"
	"time"
)

// ClientRateLimiter caps analysis requests per client over a sliding window.
// Each analysis can fan out to several generator calls, so this sits in front
// of the analyze endpoints.
type ClientRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewClientRateLimiter allows maxRequests per client within window.
func NewClientRateLimiter(maxRequests int, window time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow records a request for client, or errors when the window is full.
func (rl *ClientRateLimiter) Allow(client string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanupOldRequests(client, now)

	if len(rl.requests[client]) >= rl.maxRequests {
		return fmt.Errorf("rate limit exceeded: maximum %d analyses per %v", rl.maxRequests, rl.window)
	}
	rl.requests[client] = append(rl.requests[client], now)
	return nil
}

func (rl *ClientRateLimiter) cleanupOldRequests(client string, now time.Time) {
	requests, exists := rl.requests[client]
	if !exists {
		return
	}

	cutoff := now.Add(-rl.window)
	valid := requests[:0]
	for _, req := range requests {
		if req.After(cutoff) {
			valid = append(valid, req)
		}
	}

	if len(valid) == 0 {
		delete(rl.requests, client)
	} else {
		rl.requests[client] = valid
	}
}

// Stats reports limiter settings and how many clients are tracked.
func (rl *ClientRateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"tracked_clients": len(rl.requests),
		"max_requests":    rl.maxRequests,
		"window":          rl.window.String(),
	}
}

// Reset clears all tracked requests.
func (rl *ClientRateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requests = make(map[string][]time.Time)
}
