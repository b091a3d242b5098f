// Package suggest debounces per-slot autocomplete lookups.
//
// Each slot owns at most one pending timer. A new query for a slot stops
// that slot's timer before arming a fresh one, and lookups for the same slot
// run one at a time, so a slot never has two requests in flight.
package suggest

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	DefaultQuietPeriod = 300 * time.Millisecond
	MinQueryLength     = 2
)

type Lookup interface {
	Suggestions(ctx context.Context, query string) ([]string, error)
}

type LookupFunc func(ctx context.Context, query string) ([]string, error)

func (f LookupFunc) Suggestions(ctx context.Context, query string) ([]string, error) {
	return f(ctx, query)
}

type Config struct {
	QuietPeriod time.Duration
	Logger      *zap.Logger
}

type Suggester[K comparable] struct {
	lookup Lookup
	quiet  time.Duration
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	slots map[K]*slot
}

type slot struct {
	timer    *time.Timer
	query    string
	gen      uint64
	inflight chan struct{}
}

func New[K comparable](lookup Lookup, cfg Config) *Suggester[K] {
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = DefaultQuietPeriod
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Suggester[K]{
		lookup: lookup,
		quiet:  cfg.QuietPeriod,
		logger: cfg.Logger,
		ctx:    ctx,
		cancel: cancel,
		slots:  make(map[K]*slot),
	}
}

// Schedule replaces any pending lookup for key with one for query, fired
// after the quiet period. deliver receives the results, or an empty slice
// if the lookup failed. Queries shorter than MinQueryLength only cancel.
// It reports whether a lookup was scheduled.
func (s *Suggester[K]) Schedule(key K, query string, deliver func([]string)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}

	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{inflight: make(chan struct{}, 1)}
		s.slots[key] = sl
	}
	sl.stop()

	if utf8.RuneCountInString(query) < MinQueryLength {
		sl.query = ""
		return false
	}

	sl.query = query
	gen := sl.gen
	sl.timer = time.AfterFunc(s.quiet, func() {
		s.fire(key, sl, gen, deliver)
	})
	return true
}

// Cancel stops the pending lookup for key, if any. A lookup already in
// flight still completes and delivers.
func (s *Suggester[K]) Cancel(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[key]; ok {
		sl.stop()
	}
}

// Forget cancels key and drops its slot. Results of a lookup still in
// flight for the slot are discarded.
func (s *Suggester[K]) Forget(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[key]; ok {
		sl.stop()
		delete(s.slots, key)
	}
}

// Pending reports whether key has an armed timer.
func (s *Suggester[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	return ok && sl.timer != nil
}

// Stop cancels every slot and aborts lookups in flight. The suggester
// schedules nothing afterwards.
func (s *Suggester[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	for key, sl := range s.slots {
		sl.stop()
		delete(s.slots, key)
	}
}

func (s *Suggester[K]) fire(key K, sl *slot, gen uint64, deliver func([]string)) {
	s.mu.Lock()
	if s.slots[key] != sl || sl.gen != gen {
		s.mu.Unlock()
		return
	}
	sl.timer = nil
	query := sl.query
	s.mu.Unlock()

	sl.inflight <- struct{}{}
	defer func() { <-sl.inflight }()

	results, err := s.lookup.Suggestions(s.ctx, query)
	if err != nil {
		s.logger.Warn("suggestion lookup failed",
			zap.String("query", query),
			zap.Error(err),
		)
		results = nil
	}
	if results == nil {
		results = []string{}
	}

	s.mu.Lock()
	live := s.slots[key] == sl
	s.mu.Unlock()
	if !live {
		return
	}

	deliver(results)
}

func (sl *slot) stop() {
	if sl.timer != nil {
		sl.timer.Stop()
		sl.timer = nil
	}
	sl.gen++
}
