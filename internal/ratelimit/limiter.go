package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ServiceLimiter throttles outbound calls per upstream service.
type ServiceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

func New(config Config) *ServiceLimiter {
	return &ServiceLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (l *ServiceLimiter) limiter(service string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[service]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists = l.limiters[service]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(l.defaults.RequestsPerSecond), l.defaults.BurstSize)
	l.limiters[service] = limiter
	return limiter
}

func (l *ServiceLimiter) SetLimit(service string, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limiters[service] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until service may be called again. A nil limiter never waits.
func (l *ServiceLimiter) Wait(ctx context.Context, service string) error {
	if l == nil {
		return nil
	}
	return l.limiter(service).Wait(ctx)
}

// Allow reports whether service may be called right now without waiting.
func (l *ServiceLimiter) Allow(service string) bool {
	if l == nil {
		return true
	}
	return l.limiter(service).Allow()
}
