package branding

import (
	"sync"
)

// Session applies extraction results in request order: a result is kept only
// if no newer request has been issued since it started. Extractions are not
// cancelled, their stale results are just dropped.
type Session struct {
	mu      sync.Mutex
	latest  uint64
	applied uint64
	current Result
	has     bool
}

// Begin registers a new request and returns its sequence number.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// Apply stores r if seq is the most recently issued request and reports
// whether it did.
func (s *Session) Apply(seq uint64, r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest || seq <= s.applied {
		return false
	}
	s.applied = seq
	s.current = r
	s.has = true
	return true
}

// Current returns the last applied result.
func (s *Session) Current() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}
