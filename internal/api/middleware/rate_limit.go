package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jstittsworth/monster-team-builder/pkg/utils"
)

// ClientLimiter admits or rejects one request for a client key.
type ClientLimiter interface {
	Allow(client string) error
}

// RateLimit rejects requests with 429 once the client's window is full.
// A nil limiter lets everything through.
func RateLimit(limiter ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if err := limiter.Allow(c.ClientIP()); err != nil {
			utils.SendTooManyRequests(c, err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}
