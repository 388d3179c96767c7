// Package schema defines the catalog entity shapes the registry manages:
// attributes, classes (entity types) and indexes. These are plain data —
// validation and local-id assignment live in the registry package.
package schema

import (
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

// Attribute describes a single named, typed slot an entity may carry.
// Lifecycle: created by migration; its ValueType is replaced by an
// AttributeChangeType migration (whether the new type widens the old one
// is not checked); it may be deleted only when no Class references it.
type Attribute struct {
	ID          id.Id
	Ident       string
	Title       string
	Description string
	ValueType   value.ValueType
	Unique      bool
	Index       bool
	Strict      bool

	// Deleted marks a soft-deleted attribute. Its LocalID slot is never
	// reclaimed — see DESIGN.md's soft-delete-compaction decision.
	Deleted bool

	// LocalID is the dense, process-local u32 id the registry assigned in
	// insertion order. Zero until registered.
	LocalID uint32
}

// ClassAttribute references an Attribute from within a Class, with a
// required/optional cardinality.
type ClassAttribute struct {
	Attribute string // ident
	Required  bool
}

// Class describes an entity type: the attribute set it declares (directly
// or via Extends), whether it rejects attributes outside that set
// (Strict), and its position in the class inheritance lattice.
type Class struct {
	ID          id.Id
	Ident       string
	Title       string
	Description string
	Attributes  []ClassAttribute
	Extends     []string // class idents
	Strict      bool

	Deleted bool
	LocalID uint32
}

// Attribute returns the ClassAttribute declared directly on c for the
// given attribute ident, if any. It does not walk Extends.
func (c *Class) Attribute(ident string) (ClassAttribute, bool) {
	for _, a := range c.Attributes {
		if a.Attribute == ident {
			return a, true
		}
	}
	return ClassAttribute{}, false
}

// Index describes a secondary index over exactly one attribute (multi-
// attribute indexes are reserved, not implemented — see DESIGN.md).
type Index struct {
	ID         id.Id
	Ident      string
	Attributes []string // attribute idents; len == 1 today
	Unique     bool

	Deleted bool
	LocalID uint32
}

// ReservedNamespace is the namespace reserved for built-in attributes and
// classes; user-authored idents in this namespace are rejected.
const ReservedNamespace = "factor"

// Builtin attribute idents populated into every tuple.
const (
	AttrID    = "factor/id"
	AttrType  = "factor/type"
	AttrIdent = "factor/ident"
)

// AttrCount names the synthetic attribute an Aggregate{Count} plan node
// produces; it is never a real schema attribute.
const AttrCount = "factor/count"
