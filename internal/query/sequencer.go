package query

import (
	"context"
	"sync"
)

// Sequencer orders overlapping fetches so only the most recently issued one may
// publish its result. Starting a new fetch cancels the previous one.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// Begin issues a new token and a context derived from ctx. The previous
// in-flight fetch, if any, has its context cancelled.
func (s *Sequencer) Begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	child, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.latest, child, cancel
}

// IsLatest reports whether token is still the newest issued.
func (s *Sequencer) IsLatest(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.latest
}

// Commit runs apply while holding the sequencer lock, but only when token is
// still the newest. It reports whether apply ran.
func (s *Sequencer) Commit(token uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}
