package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/classkit/classkit/internal/infrastructure/config"
)

// limiterIdleTTL is how long an idle client's limiter is kept before the
// cleanup loop drops it.
const limiterIdleTTL = 10 * time.Minute

// limiterStore holds one token bucket per client address. It protects the
// credential endpoints from online password guessing; everything else runs
// unlimited.
type limiterStore struct {
	cfg     config.RateLimitConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(cfg config.RateLimitConfig) *limiterStore {
	return &limiterStore{
		cfg:     cfg,
		clients: make(map[string]*clientLimiter),
	}
}

// allow reports whether the client may proceed, consuming one token if so.
// A disabled limiter always allows.
func (ls *limiterStore) allow(clientAddr string) bool {
	if !ls.cfg.Enabled {
		return true
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	entry, ok := ls.clients[clientAddr]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(ls.cfg.RequestsPerMinute)/60.0), ls.cfg.Burst),
		}
		ls.clients[clientAddr] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// cleanIdle removes limiters for clients not seen within limiterIdleTTL.
func (ls *limiterStore) cleanIdle() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	cutoff := time.Now().Add(-limiterIdleTTL)
	for addr, entry := range ls.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(ls.clients, addr)
		}
	}
}

// cleanLoop runs cleanIdle periodically until the context is cancelled.
func (ls *limiterStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ls.cleanIdle()
		}
	}
}
