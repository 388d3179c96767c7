// Package interner deduplicates string payloads stored inside tuples,
// returning shared *string handles keyed by content hash so repeated
// values (attribute idents, enum-like strings, class tags) share one
// backing allocation instead of each tuple holding its own copy.
package interner

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Interner is safe for concurrent use.
type Interner struct {
	mu      sync.RWMutex
	buckets map[uint64][]*string
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{buckets: make(map[uint64][]*string)}
}

// Intern returns a pointer to a canonical copy of s, reusing a previously
// interned string with the same content when one exists.
func (in *Interner) Intern(s string) *string {
	h := xxhash.Sum64String(s)

	in.mu.RLock()
	for _, p := range in.buckets[h] {
		if *p == s {
			in.mu.RUnlock()
			return p
		}
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	for _, p := range in.buckets[h] {
		if *p == s {
			return p
		}
	}
	cp := s
	p := &cp
	in.buckets[h] = append(in.buckets[h], p)
	return p
}

// Len returns the number of distinct interned strings, for metrics/tests.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	n := 0
	for _, b := range in.buckets {
		n += len(b)
	}
	return n
}

// Reset discards every interned string, releasing their backing storage.
func (in *Interner) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.buckets = make(map[uint64][]*string)
}
