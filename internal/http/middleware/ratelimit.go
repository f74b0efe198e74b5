package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientWindow struct {
	start time.Time
	count int
}

// SimpleRateLimit is an in-process fixed window per client IP. Each call
// gets its own counters.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientWindow)
		sweep   = time.Now()
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(sweep) > window {
			for k, cw := range clients {
				if now.Sub(cw.start) > window {
					delete(clients, k)
				}
			}
			sweep = now
		}

		cw, ok := clients[ip]
		if !ok || now.Sub(cw.start) > window {
			cw = &clientWindow{start: now}
			clients[ip] = cw
		}
		cw.count++
		count := cw.count
		mu.Unlock()

		if count > maxRequests {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
