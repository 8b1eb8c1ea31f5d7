package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/assetmgr/assetmgr/pkg/errors"
	"github.com/assetmgr/assetmgr/pkg/response"
)

// ErrTooManyRequests is returned once a client exhausts its window.
var ErrTooManyRequests = apperrors.New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)

type window struct {
	count int
	ends  time.Time
}

// fixedWindow counts requests per key in fixed windows. Expired windows are
// swept on write so the map stays bounded by the number of active clients.
type fixedWindow struct {
	mu     sync.Mutex
	length time.Duration
	data   map[string]*window
	clock  func() time.Time
}

func (f *fixedWindow) hit(key string) (count int, reset time.Duration) {
	now := f.clock()
	f.mu.Lock()
	defer f.mu.Unlock()

	for k, w := range f.data {
		if now.After(w.ends) {
			delete(f.data, k)
		}
	}
	w, ok := f.data[key]
	if !ok {
		w = &window{ends: now.Add(f.length)}
		f.data[key] = w
	}
	w.count++
	return w.count, w.ends.Sub(now)
}

// RateLimit limits requests per client IP and route within a fixed window.
// It guards the expensive mutation endpoints such as forced rebuilds.
func RateLimit(maxRequests int, length time.Duration) gin.HandlerFunc {
	return rateLimit(maxRequests, length, time.Now)
}

func rateLimit(maxRequests int, length time.Duration, clock func() time.Time) gin.HandlerFunc {
	limiter := &fixedWindow{length: length, data: map[string]*window{}, clock: clock}

	return func(c *gin.Context) {
		if maxRequests <= 0 || length <= 0 {
			c.Next()
			return
		}

		count, reset := limiter.hit(c.ClientIP() + "|" + c.FullPath())
		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(reset.Seconds())))

		if count > maxRequests {
			response.Error(c, ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
