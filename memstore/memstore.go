// Package memstore is the in-memory tuple store: it holds the live
// entity table and every index array, applies the DbOp plans the
// registry produces, and supports reverting a batch or migration via an
// in-order inverse-op list, mirroring the teacher's storage/inmem txn
// machinery generalized from a KV store to FactorDB's typed tuples.
package memstore

import (
	"sync"

	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/memstore/index"
	"github.com/factorlabs/factordb/memstore/interner"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/value"
)

// Store is the in-memory backend. Safe for concurrent use: readers take
// an RLock, ApplyBatch/RevertChanges/PurgeAllData take a full Lock for the
// duration of the mutation.
type Store struct {
	mu sync.RWMutex

	reg      *registry.Registry
	interner *interner.Interner

	tuples map[id.Id]patch.DataMap

	unique map[uint32]*index.Unique
	multi  map[uint32]*index.Multi
	prefix map[uint32]*index.Prefix

	revertEpoch uint64
}

// New creates an empty Store bound to reg. Every index, builtin or user,
// gets its backing index structure lazily on first use.
func New(reg *registry.Registry) *Store {
	s := &Store{
		reg:      reg,
		interner: interner.New(),
		tuples:   make(map[id.Id]patch.DataMap),
		unique:   make(map[uint32]*index.Unique),
		multi:    make(map[uint32]*index.Multi),
		prefix:   make(map[uint32]*index.Prefix),
	}
	return s
}

// Get returns the entity's current data, if it exists and isn't
// soft-deleted at the tuple level (deletion removes the tuple entirely,
// so presence in the table is equivalent to existence).
func (s *Store) Get(entityID id.Id) (patch.DataMap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.tuples[entityID]
	if !ok {
		return nil, false
	}
	return data.Clone(), true
}

// classSatisfies reports whether entityID has a live tuple, and if so, whether
// its factor/type satisfies any of the allowed classes (empty allowed
// means "any type is fine") — used to resolve the RefChecks the registry
// defers to the store.
func (s *Store) classSatisfies(entityID id.Id, allowed []string) (ok bool, actualType string) {
	data, exists := s.tuples[entityID]
	if !exists {
		return false, ""
	}
	if len(allowed) == 0 {
		return true, ""
	}
	typeVal, hasType := data[schemaAttrType]
	if !hasType {
		return false, ""
	}
	ts, _ := typeVal.(value.String)
	actualType = string(ts)
	for _, cls := range allowed {
		if actualType == cls {
			return true, actualType
		}
	}
	return false, actualType
}

const schemaAttrType = "factor/type"

// RevertOp is one inverse action recorded while applying a batch or
// migration, so the whole batch can be undone in reverse order (e.g. when
// a later op in the batch fails, or via RevertChanges when the log append
// fails).
type RevertOp interface{ revertOp() }

type revertTuple struct {
	ID      id.Id
	Existed bool
	Old     patch.DataMap
}

type revertIndex struct {
	Local uint32
	Owner id.Id
	Op    registry.IndexOp
}

func (revertTuple) revertOp() {}
func (revertIndex) revertOp() {}

// ApplyBatch applies every DbOp in ops in order, validating the deferred
// RefChecks against the live tuple table first (unless
// ignoreRefChecks — set true during log replay, which trusts the
// original validation pass already happened). It returns the inverse
// RevertOp list so the caller can unwind the batch on a later failure
// (spec §6 atomic-batch guarantee: a batch either fully applies or has no
// effect).
func (s *Store) ApplyBatch(ops []registry.DbOp, refs []registry.RefCheck, ignoreRefChecks bool) ([]RevertOp, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !ignoreRefChecks {
		for _, rc := range refs {
			ok, actual := s.classSatisfies(rc.EntityID, rc.Allowed)
			if !ok {
				if _, exists := s.tuples[rc.EntityID]; !exists {
					return nil, 0, dberr.NotFound(dberr.EntityNotFound, rc.EntityID.String(), nil)
				}
				return nil, 0, dberr.ReferenceViolation(rc.Attribute, rc.EntityID.String(), actual, rc.Allowed)
			}
		}
	}

	var reverts []RevertOp
	for _, op := range ops {
		rv, err := s.applyOp(op)
		if err != nil {
			s.unwind(reverts)
			return nil, 0, err
		}
		reverts = append(reverts, rv...)
	}
	s.revertEpoch++
	return reverts, s.revertEpoch, nil
}

// RevertChanges undoes reverts if epoch still matches the store's current
// RevertEpoch (nothing has been applied since) — the log facade's
// failed-append-rollback path, and the only supported way to unwind a
// batch once ApplyBatch has returned successfully.
func (s *Store) RevertChanges(epoch uint64, reverts []RevertOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.revertEpoch {
		return dberr.ConsistencyErr("revert epoch mismatch: store has moved on")
	}
	s.unwind(reverts)
	s.revertEpoch--
	return nil
}

func (s *Store) applyOp(op registry.DbOp) ([]RevertOp, error) {
	switch o := op.(type) {
	case registry.TupleCreate:
		reverts, err := s.applyIndexOps(o.ID, toIndexOps(o.IndexOps))
		if err != nil {
			return nil, err
		}
		s.tuples[o.ID] = o.Data
		reverts = append(reverts, revertTuple{ID: o.ID, Existed: false})
		return reverts, nil

	case registry.TupleReplace:
		old, existed := s.tuples[o.ID]
		reverts, err := s.applyIndexOps(o.ID, o.IndexOps)
		if err != nil {
			return nil, err
		}
		s.tuples[o.ID] = o.Data
		reverts = append(reverts, revertTuple{ID: o.ID, Existed: existed, Old: old})
		return reverts, nil

	case registry.TupleMerge:
		old, existed := s.tuples[o.ID]
		reverts, err := s.applyIndexOps(o.ID, o.IndexOps)
		if err != nil {
			return nil, err
		}
		s.tuples[o.ID] = o.Data
		reverts = append(reverts, revertTuple{ID: o.ID, Existed: existed, Old: old})
		return reverts, nil

	case registry.TupleDelete:
		old, existed := s.tuples[o.ID]
		reverts, err := s.applyIndexOps(o.ID, toIndexOps(o.IndexOps))
		if err != nil {
			return nil, err
		}
		delete(s.tuples, o.ID)
		reverts = append(reverts, revertTuple{ID: o.ID, Existed: existed, Old: old})
		return reverts, nil
	}
	return nil, dberr.Internal("unknown DbOp")
}

func toIndexOps[T registry.IndexOp](ops []T) []registry.IndexOp {
	out := make([]registry.IndexOp, len(ops))
	for i, o := range ops {
		out[i] = o
	}
	return out
}

func (s *Store) applyIndexOps(owner id.Id, ops []registry.IndexOp) ([]RevertOp, error) {
	var reverts []RevertOp
	for _, iop := range ops {
		rv, err := s.applyIndexOp(owner, iop)
		if err != nil {
			s.unwind(reverts)
			return nil, err
		}
		reverts = append(reverts, rv)
	}
	return reverts, nil
}

func (s *Store) applyIndexOp(owner id.Id, op registry.IndexOp) (RevertOp, error) {
	switch o := op.(type) {
	case registry.IndexInsert:
		if o.Unique {
			u := s.uniqueFor(o.Index)
			if conflict, dup := u.Insert(o.Value, owner); dup {
				return nil, s.uniqueErr(o.Index, conflict, o.Value)
			}
		} else {
			s.multiFor(o.Index).Insert(o.Value, owner)
		}
		s.prefixFor(o.Index).ValueInsert(o.Value, owner)
		return revertIndex{Local: o.Index, Owner: owner, Op: registry.IndexRemove{Index: o.Index, Value: o.Value}}, nil

	case registry.IndexReplace:
		if o.Unique {
			u := s.uniqueFor(o.Index)
			u.Remove(o.OldValue, owner)
			if conflict, dup := u.Insert(o.Value, owner); dup {
				u.Insert(o.OldValue, owner)
				return nil, s.uniqueErr(o.Index, conflict, o.Value)
			}
		} else {
			m := s.multiFor(o.Index)
			m.Remove(o.OldValue, owner)
			m.Insert(o.Value, owner)
		}
		p := s.prefixFor(o.Index)
		p.ValueRemove(o.OldValue, owner)
		p.ValueInsert(o.Value, owner)
		return revertIndex{Local: o.Index, Owner: owner, Op: registry.IndexReplace{Index: o.Index, Value: o.OldValue, OldValue: o.Value, Unique: o.Unique}}, nil

	case registry.IndexRemove:
		idx := s.reg.IndexByLocal(o.Index)
		unique := idx != nil && idx.Unique
		if unique {
			s.uniqueFor(o.Index).Remove(o.Value, owner)
		} else {
			s.multiFor(o.Index).Remove(o.Value, owner)
		}
		s.prefixFor(o.Index).ValueRemove(o.Value, owner)
		return revertIndex{Local: o.Index, Owner: owner, Op: registry.IndexInsert{Index: o.Index, Value: o.Value, Unique: unique}}, nil
	}
	return nil, dberr.Internal("unknown IndexOp")
}

func (s *Store) uniqueErr(indexLocal uint32, conflict id.Id, v value.Value) error {
	idx := s.reg.IndexByLocal(indexLocal)
	ident, attr := "", ""
	if idx != nil {
		ident = idx.Ident
		if len(idx.Attributes) > 0 {
			attr = idx.Attributes[0]
		}
	}
	return dberr.UniqueViolation(ident, attr, conflict.String(), v)
}

func (s *Store) uniqueFor(local uint32) *index.Unique {
	u, ok := s.unique[local]
	if !ok {
		u = index.NewUnique()
		s.unique[local] = u
	}
	return u
}

func (s *Store) multiFor(local uint32) *index.Multi {
	m, ok := s.multi[local]
	if !ok {
		m = index.NewMulti()
		s.multi[local] = m
	}
	return m
}

func (s *Store) prefixFor(local uint32) *index.Prefix {
	p, ok := s.prefix[local]
	if !ok {
		p = index.NewPrefix()
		s.prefix[local] = p
	}
	return p
}

func (s *Store) unwind(reverts []RevertOp) {
	for i := len(reverts) - 1; i >= 0; i-- {
		s.applyRevert(reverts[i])
	}
}

func (s *Store) applyRevert(rv RevertOp) {
	switch r := rv.(type) {
	case revertTuple:
		if r.Existed {
			s.tuples[r.ID] = r.Old
		} else {
			delete(s.tuples, r.ID)
		}
	case revertIndex:
		_, _ = s.applyIndexOp(r.Owner, r.Op)
	}
}

// RevertEpoch returns the number of batches/migrations successfully
// applied, and not since reverted, since the store was created or last
// purged.
func (s *Store) RevertEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revertEpoch
}

// PurgeAllData discards every tuple and index entry, but leaves the
// registry's schema catalog untouched (callers reset the registry
// separately when a full purge is requested).
func (s *Store) PurgeAllData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tuples = make(map[id.Id]patch.DataMap)
	s.unique = make(map[uint32]*index.Unique)
	s.multi = make(map[uint32]*index.Multi)
	s.prefix = make(map[uint32]*index.Prefix)
	s.revertEpoch = 0
	s.interner.Reset()
}
