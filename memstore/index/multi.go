package index

import (
	"sort"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

// Multi maps an encoded Value key to the set of entity ids holding that
// value, for non-unique indexed attributes.
type Multi struct {
	entries map[string]map[id.Id]struct{}
	values  map[string]value.Value
}

func NewMulti() *Multi {
	return &Multi{
		entries: make(map[string]map[id.Id]struct{}),
		values:  make(map[string]value.Value),
	}
}

// Insert adds owner to v's bucket.
func (m *Multi) Insert(v value.Value, owner id.Id) {
	k := Key(v)
	bucket, ok := m.entries[k]
	if !ok {
		bucket = make(map[id.Id]struct{})
		m.entries[k] = bucket
		m.values[k] = v
	}
	bucket[owner] = struct{}{}
}

// Remove drops owner from v's bucket, removing the bucket entirely once
// it's empty.
func (m *Multi) Remove(v value.Value, owner id.Id) {
	k := Key(v)
	bucket, ok := m.entries[k]
	if !ok {
		return
	}
	delete(bucket, owner)
	if len(bucket) == 0 {
		delete(m.entries, k)
		delete(m.values, k)
	}
}

// Lookup returns every entity holding v.
func (m *Multi) Lookup(v value.Value) []id.Id {
	bucket := m.entries[Key(v)]
	out := make([]id.Id, 0, len(bucket))
	for owner := range bucket {
		out = append(out, owner)
	}
	return out
}

// Len returns the number of distinct keys currently indexed.
func (m *Multi) Len() int { return len(m.entries) }

// Entries returns every (value, id) pair in ascending Value order, one
// entry per id sharing a bucket. See Unique.Entries for the same
// no-backing-B-tree caveat.
func (m *Multi) Entries() []Entry {
	var out []Entry
	for k, bucket := range m.entries {
		v := m.values[k]
		for owner := range bucket {
			out = append(out, Entry{Value: v, ID: owner})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value.Compare(out[j].Value) < 0 })
	return out
}
