package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewClientRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.NoError(t, rl.Allow("10.0.0.1"))
	assert.NoError(t, rl.Allow("10.0.0.1"))
	assert.Error(t, rl.Allow("10.0.0.1"))
	assert.NoError(t, rl.Allow("10.0.0.2"), "clients are tracked separately")

	now = now.Add(61 * time.Second)
	assert.NoError(t, rl.Allow("10.0.0.1"), "window slides")

	stats := rl.Stats()
	assert.Equal(t, 2, stats["tracked_clients"])
	assert.Equal(t, "1m0s", stats["window"])

	rl.Reset()
	assert.Equal(t, 0, rl.Stats()["tracked_clients"])
}
