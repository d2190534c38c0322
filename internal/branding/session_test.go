package branding

import (
	"sync"
	"testing"

	"github.com/serviceplanpro/brandcolour/internal/colour"
)

func TestSessionLatestWins(t *testing.T) {
	var s Session

	if _, ok := s.Current(); ok {
		t.Fatal("new session should have no result")
	}

	first := s.Begin()
	second := s.Begin()

	newer := Result{Scheme: colour.Synthesize([]string{"#336699"})}
	stale := Result{Scheme: colour.DefaultScheme()}

	if !s.Apply(second, newer) {
		t.Error("Apply(second) = false, want true")
	}
	// The older request resolves late and must be discarded.
	if s.Apply(first, stale) {
		t.Error("Apply(first) = true, want false")
	}

	got, ok := s.Current()
	if !ok || got.Scheme != newer.Scheme {
		t.Errorf("Current() = %+v, want %+v", got.Scheme, newer.Scheme)
	}
}

func TestSessionStaleBeforeNewer(t *testing.T) {
	var s Session

	first := s.Begin()
	_ = s.Begin()

	// A superseded request is dropped even if it finishes first.
	if s.Apply(first, Result{Scheme: colour.DefaultScheme()}) {
		t.Error("Apply(first) = true after a newer request began")
	}
	if _, ok := s.Current(); ok {
		t.Error("Current() should still be empty")
	}
}

func TestSessionApplyOnce(t *testing.T) {
	var s Session
	seq := s.Begin()

	if !s.Apply(seq, Result{}) {
		t.Fatal("first Apply() = false")
	}
	if s.Apply(seq, Result{Fallback: true}) {
		t.Error("second Apply() with same sequence = true, want false")
	}
}

func TestSessionConcurrent(t *testing.T) {
	var s Session
	var wg sync.WaitGroup
	seqs := make(chan uint64, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seqs <- s.Begin()
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make(map[uint64]bool)
	var newest uint64
	for seq := range seqs {
		if seen[seq] {
			t.Fatalf("sequence %d issued twice", seq)
		}
		seen[seq] = true
		if seq > newest {
			newest = seq
		}
	}

	applied := 0
	for seq := range seen {
		if s.Apply(seq, Result{}) {
			applied++
			if seq != newest {
				t.Errorf("applied sequence %d, want only %d", seq, newest)
			}
		}
	}
	if applied != 1 {
		t.Errorf("applied %d results, want 1", applied)
	}
}
