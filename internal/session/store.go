package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps live controllers in memory, keyed by a random id. Sessions
// idle for longer than the TTL are dropped by Sweep.
type Store struct {
	newController func() *Controller
	idleTTL       time.Duration
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	controller *Controller
	lastSeen   time.Time
}

func NewStore(newController func() *Controller, idleTTL time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		newController: newController,
		idleTTL:       idleTTL,
		logger:        logger,
		sessions:      make(map[string]*entry),
	}
}

func (s *Store) Create() (string, *Controller) {
	id := uuid.NewString()
	c := s.newController()

	s.mu.Lock()
	s.sessions[id] = &entry{controller: c, lastSeen: time.Now()}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("session_id", id))
	return id, c
}

func (s *Store) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = time.Now()
	return e.controller, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.controller.Close()
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes sessions not seen since now minus the idle TTL and returns
// how many were removed. A zero TTL keeps sessions forever.
func (s *Store) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}

	var expired []*Controller
	s.mu.Lock()
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.idleTTL {
			expired = append(expired, e.controller)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx ends.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// Close drops every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.controller.Close()
	}
}
