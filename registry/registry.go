// Package registry is the authoritative catalog of attribute, class and
// index definitions: it assigns dense process-local local ids in
// insertion order, validates schema changes, and lowers user-facing
// mutations into flat DbOp plans for the memory store to apply.
package registry

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/internal/suggest"
	"github.com/factorlabs/factordb/schema"
)

// Registry holds the live catalog of attributes, classes and indexes. It
// is safe for concurrent use: reads take a brief RLock, migrations take
// a brief Lock to swap in new entries (mirrored from the teacher's
// per-store RWMutex discipline).
type Registry struct {
	mu sync.RWMutex

	attrsByLocal []*schema.Attribute
	attrsByIdent map[string]uint32

	classesByLocal []*schema.Class
	classesByIdent map[string]uint32

	indexesByLocal []*schema.Index
	indexesByIdent map[string]uint32
	// indexesByAttr maps an attribute local id to the indexes covering it.
	indexesByAttr map[uint32][]uint32

	identCache *lru.Cache[string, uint32]
}

// New creates a Registry pre-populated with the builtin attributes and
// indexes (factor/id, factor/type, factor/ident, and their reserved
// indexes). It defines no builtin classes.
func New() *Registry {
	r := &Registry{
		attrsByIdent:   make(map[string]uint32),
		classesByIdent: make(map[string]uint32),
		indexesByIdent: make(map[string]uint32),
		indexesByAttr:  make(map[uint32][]uint32),
	}
	r.identCache, _ = lru.New[string, uint32](4096)
	r.addBuiltins()
	return r
}

func (r *Registry) addBuiltins() {
	// Local id 0 is reserved so a zero-value LocalID can mean "unassigned".
	r.attrsByLocal = append(r.attrsByLocal, nil)
	r.classesByLocal = append(r.classesByLocal, nil)
	r.indexesByLocal = append(r.indexesByLocal, nil)

	for _, ident := range []string{schema.AttrID, schema.AttrType, schema.AttrIdent} {
		a := &schema.Attribute{ID: id.New(), Ident: ident}
		a.LocalID = uint32(len(r.attrsByLocal))
		r.attrsByLocal = append(r.attrsByLocal, a)
		r.attrsByIdent[ident] = a.LocalID
	}

	for _, spec := range []struct {
		ident  string
		attr   string
		unique bool
	}{
		{"factor/index_type", schema.AttrType, false},
		{"factor/index_ident", schema.AttrIdent, true},
	} {
		attrLocal := r.attrsByIdent[spec.attr]
		idx := &schema.Index{ID: id.New(), Ident: spec.ident, Attributes: []string{spec.attr}, Unique: spec.unique}
		idx.LocalID = uint32(len(r.indexesByLocal))
		r.indexesByLocal = append(r.indexesByLocal, idx)
		r.indexesByIdent[spec.ident] = idx.LocalID
		r.indexesByAttr[attrLocal] = append(r.indexesByAttr[attrLocal], idx.LocalID)
	}
}

// Reset clears all user-registered attributes, classes and indexes,
// restoring only the builtins. Used by purge_all_data.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attrsByLocal = nil
	r.attrsByIdent = make(map[string]uint32)
	r.classesByLocal = nil
	r.classesByIdent = make(map[string]uint32)
	r.indexesByLocal = nil
	r.indexesByIdent = make(map[string]uint32)
	r.indexesByAttr = make(map[uint32][]uint32)
	r.identCache.Purge()
	r.addBuiltins()
}

// --- lookups ---

func allIdents(m map[string]uint32) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// AttrByIdent returns the attribute registered under ident, including
// soft-deleted ones.
func (r *Registry) AttrByIdent(ident string) (*schema.Attribute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if local, ok := r.attrsByIdent[ident]; ok {
		return r.attrsByLocal[local], nil
	}
	return nil, dberr.NotFound(dberr.AttributeNotFound, ident, suggest.Closest(ident, allIdents(r.attrsByIdent)))
}

// AttrByLocal returns the attribute for a local id, or nil if out of range.
func (r *Registry) AttrByLocal(local uint32) *schema.Attribute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(local) >= len(r.attrsByLocal) {
		return nil
	}
	return r.attrsByLocal[local]
}

// ClassByIdent returns the class registered under ident.
func (r *Registry) ClassByIdent(ident string) (*schema.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if local, ok := r.classesByIdent[ident]; ok {
		return r.classesByLocal[local], nil
	}
	return nil, dberr.NotFound(dberr.ClassNotFound, ident, suggest.Closest(ident, allIdents(r.classesByIdent)))
}

// ClassByLocal returns the class for a local id, or nil if out of range.
func (r *Registry) ClassByLocal(local uint32) *schema.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(local) >= len(r.classesByLocal) {
		return nil
	}
	return r.classesByLocal[local]
}

// IndexByIdent returns the index registered under ident.
func (r *Registry) IndexByIdent(ident string) (*schema.Index, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if local, ok := r.indexesByIdent[ident]; ok {
		return r.indexesByLocal[local], nil
	}
	return nil, dberr.NotFound(dberr.IndexNotFound, ident, suggest.Closest(ident, allIdents(r.indexesByIdent)))
}

// IndexByLocal returns the index for a local id, or nil if out of range.
func (r *Registry) IndexByLocal(local uint32) *schema.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(local) >= len(r.indexesByLocal) {
		return nil
	}
	return r.indexesByLocal[local]
}

// IndexesForAttribute returns every (non-deleted) index covering the
// given attribute local id.
func (r *Registry) IndexesForAttribute(attrLocal uint32) []*schema.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*schema.Index
	for _, local := range r.indexesByAttr[attrLocal] {
		idx := r.indexesByLocal[local]
		if !idx.Deleted {
			out = append(out, idx)
		}
	}
	return out
}

// ResolveAttrLocal resolves an IdOrIdent-style attribute/class name to its
// local id via the bounded LRU cache fronting attrsByIdent — the hottest
// lookup on the mutation and query path (SPEC_FULL.md §3).
func (r *Registry) ResolveAttrLocal(ident string) (uint32, bool) {
	if local, ok := r.identCache.Get(ident); ok {
		return local, true
	}
	r.mu.RLock()
	local, ok := r.attrsByIdent[ident]
	r.mu.RUnlock()
	if ok {
		r.identCache.Add(ident, local)
	}
	return local, ok
}

// ResolveAttrByIdOrIdent resolves an id.IdOrIdent attribute reference against the
// attribute catalog, accepting either form.
func (r *Registry) ResolveAttrByIdOrIdent(ref id.IdOrIdent) (*schema.Attribute, error) {
	if ident, ok := ref.Ident(); ok {
		return r.AttrByIdent(ident)
	}
	wantID, _ := ref.Id()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.attrsByLocal {
		if a != nil && a.ID == wantID {
			return a, nil
		}
	}
	return nil, dberr.NotFound(dberr.AttributeNotFound, wantID.String(), nil)
}

// Attributes returns every non-deleted attribute, for schema() snapshots.
func (r *Registry) Attributes() []*schema.Attribute {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*schema.Attribute
	for _, a := range r.attrsByLocal {
		if a != nil && !a.Deleted {
			out = append(out, a)
		}
	}
	return out
}

// Classes returns every non-deleted class.
func (r *Registry) Classes() []*schema.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*schema.Class
	for _, c := range r.classesByLocal {
		if c != nil && !c.Deleted {
			out = append(out, c)
		}
	}
	return out
}

// Indexes returns every non-deleted index.
func (r *Registry) Indexes() []*schema.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*schema.Index
	for _, idx := range r.indexesByLocal {
		if idx != nil && !idx.Deleted {
			out = append(out, idx)
		}
	}
	return out
}

// CheckReservedNamespace rejects user writes into the `factor` namespace.
func CheckReservedNamespace(ident string) error {
	if id.Namespace(ident) == schema.ReservedNamespace {
		return dberr.Invalid(fmt.Sprintf("ident %q uses the reserved %q namespace", ident, schema.ReservedNamespace))
	}
	return nil
}
