// Package booking resolves the URL a traveller opens to book one leg.
//
// Generated links are cached per (from, to, date) for the life of the
// session. Concurrent resolutions of one key share a single request, and a
// failed request falls back to a search link without caching anything.
package booking

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dharmasatrya/tripplanner/internal/models"
	"github.com/dharmasatrya/tripplanner/internal/upstream"
)

type State int

const (
	Unresolved State = iota
	Pending
	Resolved
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

type Source string

const (
	SourceProvider  Source = "provider"
	SourceCache     Source = "cache"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

type Link struct {
	URL    string `json:"url"`
	Source Source `json:"source"`
}

type Resolver struct {
	links  upstream.LinkService
	logger *zap.Logger

	mu       sync.Mutex
	gen      uint64
	group    *singleflight.Group
	resolved map[models.LegKey]string
	pending  map[models.LegKey]bool
}

func NewResolver(links upstream.LinkService, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		links:    links,
		logger:   logger,
		group:    &singleflight.Group{},
		resolved: make(map[models.LegKey]string),
		pending:  make(map[models.LegKey]bool),
	}
}

// Resolve returns the booking URL for leg. A provider link on the leg wins
// outright. If another caller is already resolving the same key, Resolve
// waits for that result instead of issuing a second request. The only
// error is ctx ending while waiting.
func (r *Resolver) Resolve(ctx context.Context, leg models.FlightLeg) (Link, error) {
	if leg.BookingLink != "" {
		return Link{URL: leg.BookingLink, Source: SourceProvider}, nil
	}

	key := leg.Key()

	r.mu.Lock()
	if u, ok := r.resolved[key]; ok {
		r.mu.Unlock()
		return Link{URL: u, Source: SourceCache}, nil
	}
	group, gen := r.group, r.gen
	r.mu.Unlock()

	// The shared request outlives any single caller's cancellation.
	callCtx := context.WithoutCancel(ctx)
	ch := group.DoChan(key.String(), func() (any, error) {
		return r.generate(callCtx, gen, key, leg), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Link), nil
	case <-ctx.Done():
		return Link{}, ctx.Err()
	}
}

func (r *Resolver) generate(ctx context.Context, gen uint64, key models.LegKey, leg models.FlightLeg) Link {
	r.mu.Lock()
	if u, ok := r.resolved[key]; ok && r.gen == gen {
		r.mu.Unlock()
		return Link{URL: u, Source: SourceCache}
	}
	if r.gen == gen {
		r.pending[key] = true
	}
	r.mu.Unlock()

	u, err := r.links.GenerateLink(ctx, upstream.LinkRequest{
		From:     key.From,
		To:       key.To,
		Date:     key.Date,
		LegIndex: leg.Index,
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen == gen {
		delete(r.pending, key)
	}

	if err != nil {
		r.logger.Warn("booking link generation failed, using fallback",
			zap.String("leg", key.String()),
			zap.Error(err),
		)
		return Link{URL: FallbackLink(leg), Source: SourceFallback}
	}

	if r.gen == gen {
		r.resolved[key] = u
	}
	return Link{URL: u, Source: SourceGenerated}
}

func (r *Resolver) Status(key models.LegKey) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resolved[key]; ok {
		return Resolved
	}
	if r.pending[key] {
		return Pending
	}
	return Unresolved
}

// Reset empties the cache. Requests still in flight finish for their own
// callers but no longer populate it.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	r.group = &singleflight.Group{}
	r.resolved = make(map[models.LegKey]string)
	r.pending = make(map[models.LegKey]bool)
}
