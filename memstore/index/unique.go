package index

import (
	"sort"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

type uniqueEntry struct {
	value value.Value
	owner id.Id
}

// Unique maps an encoded Value key to at most one entity id, retaining
// the original Value alongside so Entries can produce a Value-ordered
// snapshot for range scans. Insert reports the conflicting owner rather
// than an error directly, since only the caller (the memory store) knows
// the index/attribute idents needed for a useful
// UniqueConstraintViolation.
type Unique struct {
	entries map[string]uniqueEntry
}

func NewUnique() *Unique {
	return &Unique{entries: make(map[string]uniqueEntry)}
}

// Insert records owner under v's key. If a different entity already
// holds that key, Insert leaves the index unchanged and returns that
// entity's id with ok=true so the caller can build a
// UniqueConstraintViolation.
func (u *Unique) Insert(v value.Value, owner id.Id) (conflict id.Id, ok bool) {
	k := Key(v)
	if existing, exists := u.entries[k]; exists && existing.owner != owner {
		return existing.owner, true
	}
	u.entries[k] = uniqueEntry{value: v, owner: owner}
	return id.Nil, false
}

// Remove deletes the (v, owner) entry if owner still holds it.
func (u *Unique) Remove(v value.Value, owner id.Id) {
	k := Key(v)
	if existing, ok := u.entries[k]; ok && existing.owner == owner {
		delete(u.entries, k)
	}
}

// Lookup returns the entity owning v, if any.
func (u *Unique) Lookup(v value.Value) (id.Id, bool) {
	got, ok := u.entries[Key(v)]
	return got.owner, ok
}

// Len returns the number of distinct keys currently indexed.
func (u *Unique) Len() int { return len(u.entries) }

// Entry pairs a stored Value with the entity id that holds it, the unit
// Entries/Range scans are built from.
type Entry struct {
	Value value.Value
	ID    id.Id
}

// Entries returns every (value, id) pair in ascending Value order. There
// is no backing ordered structure in this implementation (no B-tree
// dependency is wired per SPEC_FULL.md §3), so range scans sort a fresh
// snapshot on each call rather than walking a maintained order — correct,
// but O(n log n) instead of O(log n) per spec §4.3's aspirational bound.
func (u *Unique) Entries() []Entry {
	out := make([]Entry, 0, len(u.entries))
	for _, e := range u.entries {
		out = append(out, Entry{Value: e.value, ID: e.owner})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value.Compare(out[j].Value) < 0 })
	return out
}
