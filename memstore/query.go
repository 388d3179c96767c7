package memstore

import (
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/memstore/index"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/value"
)

// AllIDs returns a snapshot of every live entity id, the universe Scan
// walks over.
func (s *Store) AllIDs() []id.Id {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]id.Id, 0, len(s.tuples))
	for eid := range s.tuples {
		out = append(out, eid)
	}
	return out
}

// TupleRef returns the entity's data without cloning, for the executor's
// read-only per-id lookups during a scan.
func (s *Store) TupleRef(entityID id.Id) (patch.DataMap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.tuples[entityID]
	return data, ok
}

// IndexLookup returns every id registered under v on the given index,
// whether the index is unique or multi.
func (s *Store) IndexLookup(indexLocal uint32, v value.Value) []id.Id {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.reg.IndexByLocal(indexLocal); idx != nil && idx.Unique {
		if u, ok := s.unique[indexLocal]; ok {
			if eid, found := u.Lookup(v); found {
				return []id.Id{eid}
			}
		}
		return nil
	}
	if m, ok := s.multi[indexLocal]; ok {
		return m.Lookup(v)
	}
	return nil
}

// IndexEntries returns a Value-ordered snapshot of an index's contents,
// the basis for IndexScan range queries.
func (s *Store) IndexEntries(indexLocal uint32) []index.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.reg.IndexByLocal(indexLocal); idx != nil && idx.Unique {
		if u, ok := s.unique[indexLocal]; ok {
			return u.Entries()
		}
		return nil
	}
	if m, ok := s.multi[indexLocal]; ok {
		return m.Entries()
	}
	return nil
}

// IndexScanPrefix returns every id whose indexed string starts with
// prefix.
func (s *Store) IndexScanPrefix(indexLocal uint32, prefix string) []id.Id {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefix[indexLocal]
	if !ok {
		return nil
	}
	return p.ScanPrefix(prefix)
}

// TupleByLocal returns entityID's data keyed by attribute local id, the
// form queryexpr.Eval expects. Missing attributes are simply absent from
// the map; Eval treats an absent Attr as value.Unit{}.
func (s *Store) TupleByLocal(entityID id.Id) (map[uint32]value.Value, bool) {
	s.mu.RLock()
	data, ok := s.tuples[entityID]
	if !ok {
		s.mu.RUnlock()
		return nil, false
	}
	out := make(map[uint32]value.Value, len(data))
	for ident, v := range data {
		if local, ok := s.reg.ResolveAttrLocal(ident); ok {
			out[local] = v
		}
	}
	s.mu.RUnlock()
	return out, true
}
