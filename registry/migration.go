package registry

import (
	"fmt"

	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/schema"
)

// SchemaAction is one step of a Migration: a schema-only change to the
// catalog (as opposed to the DbOps a data mutation produces).
type SchemaAction interface{ schemaAction() }

type CreateAttribute struct{ Attribute schema.Attribute }
type CreateClass struct{ Class schema.Class }
type CreateIndex struct{ Index schema.Index }
type DeleteAttribute struct{ Ident string }
type DeleteClass struct{ Ident string }
type DeleteIndex struct{ Ident string }

// AttributeChangeType replaces an existing attribute's declared type.
// Neither the registry nor db.PlanMigrationDataOps checks that the new
// type is a union-widening or a scalar-to-list promotion: any type is
// accepted, and the data migration coerces stored values to it, failing
// if a stored value does not coerce.
type AttributeChangeType struct {
	Ident   string
	NewType schema.Attribute
}

func (CreateAttribute) schemaAction()     {}
func (CreateClass) schemaAction()         {}
func (CreateIndex) schemaAction()         {}
func (DeleteAttribute) schemaAction()     {}
func (DeleteClass) schemaAction()         {}
func (DeleteIndex) schemaAction()         {}
func (AttributeChangeType) schemaAction() {}

// Migration is a named, atomically-applied sequence of SchemaActions.
type Migration struct {
	Name    string
	Actions []SchemaAction
}

// ApplyMigration validates and applies every action in m under a single
// exclusive section. On any validation failure no action takes effect.
// Re-applying a migration is not a no-op: a Create* action for an ident
// that already exists fails validation, even when the existing definition
// is identical; definitions are not compared.
func (r *Registry) ApplyMigration(m Migration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, action := range m.Actions {
		if err := r.validateSchemaAction(action); err != nil {
			return err
		}
	}
	for _, action := range m.Actions {
		r.applySchemaAction(action)
	}
	return nil
}

func (r *Registry) validateSchemaAction(action SchemaAction) error {
	switch a := action.(type) {
	case CreateAttribute:
		if err := CheckReservedNamespace(a.Attribute.Ident); err != nil {
			return err
		}
		if !id.ValidIdent(a.Attribute.Ident) {
			return dberr.Invalid(fmt.Sprintf("invalid attribute ident %q", a.Attribute.Ident))
		}
		if _, ok := r.attrsByIdent[a.Attribute.Ident]; ok {
			return dberr.Invalid(fmt.Sprintf("attribute %q already exists", a.Attribute.Ident))
		}
	case CreateClass:
		if err := CheckReservedNamespace(a.Class.Ident); err != nil {
			return err
		}
		if !id.ValidIdent(a.Class.Ident) {
			return dberr.Invalid(fmt.Sprintf("invalid class ident %q", a.Class.Ident))
		}
		if _, ok := r.classesByIdent[a.Class.Ident]; ok {
			return dberr.Invalid(fmt.Sprintf("class %q already exists", a.Class.Ident))
		}
		for _, parent := range a.Class.Extends {
			if _, ok := r.classesByIdent[parent]; !ok {
				return dberr.Invalid(fmt.Sprintf("class %q extends unknown parent %q", a.Class.Ident, parent))
			}
		}
		for _, ca := range a.Class.Attributes {
			if _, ok := r.attrsByIdent[ca.Attribute]; !ok {
				return dberr.Invalid(fmt.Sprintf("class %q references unknown attribute %q", a.Class.Ident, ca.Attribute))
			}
		}
	case CreateIndex:
		if err := CheckReservedNamespace(a.Index.Ident); err != nil {
			return err
		}
		if len(a.Index.Attributes) != 1 {
			return dberr.Invalid("multi-attribute indexes are reserved, not implemented")
		}
		if _, ok := r.attrsByIdent[a.Index.Attributes[0]]; !ok {
			return dberr.Invalid(fmt.Sprintf("index %q references unknown attribute %q", a.Index.Ident, a.Index.Attributes[0]))
		}
		if _, ok := r.indexesByIdent[a.Index.Ident]; ok {
			return dberr.Invalid(fmt.Sprintf("index %q already exists", a.Index.Ident))
		}
	case DeleteAttribute:
		local, ok := r.attrsByIdent[a.Ident]
		if !ok {
			return dberr.NotFound(dberr.AttributeNotFound, a.Ident, nil)
		}
		for _, c := range r.classesByLocal {
			if c == nil || c.Deleted {
				continue
			}
			if _, ok := c.Attribute(a.Ident); ok {
				return dberr.Invalid(fmt.Sprintf("attribute %q is referenced by class %q", a.Ident, c.Ident))
			}
		}
		if len(r.indexesByAttr[local]) > 0 {
			return dberr.Invalid(fmt.Sprintf("attribute %q is referenced by an index", a.Ident))
		}
	case DeleteClass:
		local, ok := r.classesByIdent[a.Ident]
		if !ok {
			return dberr.NotFound(dberr.ClassNotFound, a.Ident, nil)
		}
		for _, c := range r.classesByLocal {
			if c == nil || c.Deleted || c.LocalID == local {
				continue
			}
			for _, parent := range c.Extends {
				if parent == a.Ident {
					return dberr.Invalid(fmt.Sprintf("class %q is extended by %q", a.Ident, c.Ident))
				}
			}
		}
	case DeleteIndex:
		if _, ok := r.indexesByIdent[a.Ident]; !ok {
			return dberr.NotFound(dberr.IndexNotFound, a.Ident, nil)
		}
	case AttributeChangeType:
		if _, ok := r.attrsByIdent[a.Ident]; !ok {
			return dberr.NotFound(dberr.AttributeNotFound, a.Ident, nil)
		}
		// Any replacement ValueType is accepted here; whether it widens
		// the old type (union-widen / scalar->list) is not checked.
	default:
		return dberr.Invalid(fmt.Sprintf("unknown schema action %T", action))
	}
	return nil
}

func (r *Registry) applySchemaAction(action SchemaAction) {
	switch a := action.(type) {
	case CreateAttribute:
		attr := a.Attribute
		attr.LocalID = uint32(len(r.attrsByLocal))
		r.attrsByLocal = append(r.attrsByLocal, &attr)
		r.attrsByIdent[attr.Ident] = attr.LocalID
	case CreateClass:
		cls := a.Class
		cls.LocalID = uint32(len(r.classesByLocal))
		r.classesByLocal = append(r.classesByLocal, &cls)
		r.classesByIdent[cls.Ident] = cls.LocalID
	case CreateIndex:
		idx := a.Index
		idx.LocalID = uint32(len(r.indexesByLocal))
		r.indexesByLocal = append(r.indexesByLocal, &idx)
		r.indexesByIdent[idx.Ident] = idx.LocalID
		attrLocal := r.attrsByIdent[idx.Attributes[0]]
		r.indexesByAttr[attrLocal] = append(r.indexesByAttr[attrLocal], idx.LocalID)
	case DeleteAttribute:
		local := r.attrsByIdent[a.Ident]
		r.attrsByLocal[local].Deleted = true
		r.identCache.Remove(a.Ident)
	case DeleteClass:
		local := r.classesByIdent[a.Ident]
		r.classesByLocal[local].Deleted = true
	case DeleteIndex:
		local := r.indexesByIdent[a.Ident]
		r.indexesByLocal[local].Deleted = true
	case AttributeChangeType:
		local := r.attrsByIdent[a.Ident]
		newType := a.NewType.ValueType
		r.attrsByLocal[local].ValueType = newType
		r.identCache.Remove(a.Ident)
	}
}
