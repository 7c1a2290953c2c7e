package tools

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles the tools that do the most work per call. Tools
// without a limiter are never throttled.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// heavyTools are the tools throttled by NewRateLimiter.
var heavyTools = []string{
	ToolBuildElevationProfile,
	ToolEvaluateClearanceBatch,
	ToolTerrainClearance,
	ToolSearchCorridor,
}

// NewRateLimiter gives each heavy tool its own limiter allowing perSecond
// calls with the given burst. perSecond <= 0 disables throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{limiters: make(map[string]*rate.Limiter)}
	if perSecond <= 0 {
		return rl
	}
	if burst < 1 {
		burst = 1
	}
	for _, name := range heavyTools {
		rl.limiters[name] = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return rl
}

// Set replaces the limiter of one tool.
func (rl *RateLimiter) Set(tool string, l *rate.Limiter) {
	rl.mu.Lock()
	rl.limiters[tool] = l
	rl.mu.Unlock()
}

// Wait blocks until tool may proceed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, tool string) error {
	if rl == nil {
		return nil
	}
	rl.mu.RLock()
	limiter, exists := rl.limiters[tool]
	rl.mu.RUnlock()
	if !exists {
		return nil
	}
	return limiter.Wait(ctx)
}
