package tramagrid

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Sessions keeps charts in memory by id and serializes access to each one.
// Charts missing from memory are loaded from the store on first use, or
// created empty when the store has none.
type Sessions struct {
	store BlobStore
	opts  []ChartOption
	log   *zap.Logger

	mu      sync.Mutex
	entries map[string]*session
}

type session struct {
	mu    sync.Mutex
	chart *Chart
}

// NewSessions creates a session table backed by store, which may be nil.
// opts are applied to every chart it creates.
func NewSessions(store BlobStore, log *zap.Logger, opts ...ChartOption) *Sessions {
	log = loggerOrNop(log)
	return &Sessions{
		store:   store,
		opts:    append([]ChartOption{WithLogger(log)}, opts...),
		log:     log,
		entries: make(map[string]*session),
	}
}

func (s *Sessions) entry(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &session{}
		s.entries[id] = e
	}
	return e
}

// Do runs fn with exclusive access to chart id.
func (s *Sessions) Do(id string, fn func(*Chart) error) error {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chart == nil {
		c := NewChart(s.opts...)
		if s.store != nil {
			err := c.Load(s.store, id)
			switch {
			case errors.Is(err, ErrNotFound):
				s.log.Debug("new chart session", zap.String("id", id))
			case err != nil:
				return err
			}
		}
		e.chart = c
	}
	return fn(e.chart)
}

// Save persists chart id to the store. Charts that are not in memory are
// left alone.
func (s *Sessions) Save(id string, lite bool) error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.chart == nil {
		return nil
	}
	return e.chart.Save(s.store, id, lite)
}

// Forget drops chart id from memory. The stored copy is kept.
func (s *Sessions) Forget(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Delete drops chart id from memory and from the store.
func (s *Sessions) Delete(id string) error {
	s.Forget(id)
	if s.store == nil {
		return nil
	}
	return s.store.Delete(id)
}

// Len returns the number of charts held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
