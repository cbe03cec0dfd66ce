package httpserver

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const rateLimitMaxClients = 10_000

// RateLimit returns a middleware keeping a token bucket per client IP.
// Mutation routes use it; reads are unthrottled.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 10
	}

	type client struct {
		lim  *rate.Limiter
		seen time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*client)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteIP(r)
			now := time.Now()

			mu.Lock()
			c, ok := clients[ip]
			if !ok {
				// Bound the map: drop the stalest half when full.
				if len(clients) >= rateLimitMaxClients {
					for k, v := range clients {
						if now.Sub(v.seen) > time.Minute {
							delete(clients, k)
						}
					}
				}
				c = &client{lim: rate.NewLimiter(rate.Limit(rps), rps*2)}
				clients[ip] = c
			}
			c.seen = now
			allowed := c.lim.Allow()
			mu.Unlock()

			if !allowed {
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
