package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	clientIdleTTL               = time.Minute
	defaultMaxRequestsPerMinute = 60
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает число запросов с одного IP: maxPerMinute в минуту, с таким же запасом на всплеск.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	limit     rate.Limit
	burst     int
	logger    logger.Logger
	now       func() time.Time
}

func NewRateLimiter(maxPerMinute int, logger logger.Logger) *RateLimiter {
	if maxPerMinute <= 0 {
		maxPerMinute = defaultMaxRequestsPerMinute
	}

	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(maxPerMinute)),
		burst:   maxPerMinute,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow фиксирует запрос клиента key и сообщает, укладывается ли он в лимит.
// Клиенты, не заходившие дольше минуты, забываются; проход по всем клиентам
// выполняется не чаще раза в clientIdleTTL.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > clientIdleTTL {
		l.sweep(now)
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

func (l *RateLimiter) sweep(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > clientIdleTTL {
			delete(l.clients, k)
		}
	}
	l.lastSweep = now
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.Allow(ip) {
			l.logger.Warnf("%d rate limit exceeded: %s", http.StatusTooManyRequests, ip)
			WriteError(w, e.ErrTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
