// Package memlog is the in-process LogStore: events live in a slice,
// nothing survives process restart. It is the default backend for tests
// and for embedders who want apply_batch/migrate's revert-on-failure
// semantics without any durability, grounded on the original engine's
// memory-variant log codec (spec §4.7: "the memory variant serializes
// in-process values directly").
package memlog

import (
	"fmt"
	"sync"

	"github.com/factorlabs/factordb/logfacade"
)

// Store is a LogStore backed by an in-memory slice, safe for concurrent
// use.
type Store struct {
	mu     sync.Mutex
	events []logfacade.Event
}

// New returns an empty Store.
func New() *Store { return &Store{} }

func (s *Store) IterEvents(from, until uint64) ([]logfacade.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []logfacade.Event
	for _, e := range s.events {
		if e.ID < from {
			continue
		}
		if until != 0 && e.ID > until {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) ReadEvent(id uint64) (logfacade.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true, nil
		}
	}
	return logfacade.Event{}, false, nil
}

func (s *Store) WriteEvent(e logfacade.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) > 0 && e.ID <= s.events[len(s.events)-1].ID {
		return fmt.Errorf("memlog: event id %d is not strictly monotonic after %d", e.ID, s.events[len(s.events)-1].ID)
	}
	s.events = append(s.events, e)
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}

func (s *Store) SizeLog() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), nil
}

// SizeData reports the same count as SizeLog: the in-memory backend has
// no separate on-disk data footprint to distinguish.
func (s *Store) SizeData() (int, error) {
	return s.SizeLog()
}
