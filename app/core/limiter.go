package core

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type LimitConfig struct {
	Limit int
	Range time.Duration
}

type LimitOption func(l *LimitConfig)

func WithLimit(limit int) LimitOption {
	return func(l *LimitConfig) {
		l.Limit = limit
	}
}

func WithRange(r time.Duration) LimitOption {
	return func(l *LimitConfig) {
		l.Range = r
	}
}

var (
	limiters   = make(map[string]*rate.Limiter)
	limitersMu sync.Mutex
)

// UseLimiter 按 key 维护进程内限流器，默认 1 秒 10 次
func (s *Core) UseLimiter(key string, opts ...LimitOption) *rate.Limiter {
	cfg := &LimitConfig{
		Limit: 10,
		Range: time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limitersMu.Lock()
	defer limitersMu.Unlock()

	l, ok := limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(cfg.Range/time.Duration(cfg.Limit)), cfg.Limit)
		limiters[key] = l
	}
	return l
}
