package registry

import (
	"fmt"

	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

// RefCheck is a follow-up entity-reference check that validation registers
// and the caller resolves against the store.
type RefCheck struct {
	Attribute string
	EntityID  id.Id
	Allowed   []string // class idents; empty means "any entity"
}

// validateAttributes coerces every attribute value in data against its
// declared ValueType, mirroring validate_attributes/validate_entity_data:
// if factor/type names a known class, required fields are checked
// (filled with an empty list if the declared type is List<T> and the
// field is absent) and List<T>/Ref/RefConstrained element values register
// follow-up entity-reference checks the caller resolves against the
// store.
func (r *Registry) validateAttributes(data patch.DataMap) (patch.DataMap, []RefCheck, error) {
	out := data.Clone()
	var refs []RefCheck

	classIdent, hasType := classIdentOf(out)
	if hasType {
		cls, err := r.ClassByIdent(classIdent)
		if err != nil {
			return nil, nil, err
		}
		if err := r.validateClassData(out, cls, &refs); err != nil {
			return nil, nil, err
		}
		return out, refs, nil
	}

	for ident, v := range out {
		attr, err := r.AttrByIdent(ident)
		if err != nil {
			return nil, nil, err
		}
		coerced, err := r.validateAttrValue(attr, v, &refs)
		if err != nil {
			return nil, nil, err
		}
		out[ident] = coerced
	}
	return out, refs, nil
}

func classIdentOf(data patch.DataMap) (string, bool) {
	v, ok := data[schema.AttrType]
	if !ok {
		return "", false
	}
	s, ok := v.(value.String)
	return string(s), ok
}

func (r *Registry) validateClassData(data patch.DataMap, cls *schema.Class, refs *[]RefCheck) error {
	for _, ca := range cls.Attributes {
		attr, err := r.AttrByIdent(ca.Attribute)
		if err != nil {
			return err
		}
		v, present := data[ca.Attribute]
		switch {
		case present:
			if _, isUnit := v.(value.Unit); isUnit && !ca.Required {
				delete(data, ca.Attribute)
				continue
			}
			coerced, err := r.validateAttrValue(attr, v, refs)
			if err != nil {
				return err
			}
			data[ca.Attribute] = coerced
		case ca.Required:
			if attr.ValueType.Kind == value.KList {
				data[ca.Attribute] = value.List{}
			} else {
				return dberr.Invalid(fmt.Sprintf("missing required attribute %q", ca.Attribute))
			}
		}
	}
	for _, parentIdent := range cls.Extends {
		parent, err := r.ClassByIdent(parentIdent)
		if err != nil {
			return err
		}
		if err := r.validateClassData(data, parent, refs); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validateAttrValue(attr *schema.Attribute, v value.Value, refs *[]RefCheck) (value.Value, error) {
	coerced, err := value.Coerce(v, attr.ValueType)
	if err != nil {
		if ce, ok := err.(*value.CoercionError); ok {
			return nil, dberr.CoercionErr(ce.Expected, ce.Actual, ce.Path.String())
		}
		return nil, err
	}
	elemTy := attr.ValueType
	if elemTy.Kind == value.KList {
		elemTy = *elemTy.Elem
		list := coerced.(value.List)
		for _, item := range list {
			r.collectRefCheck(attr, elemTy, item, refs)
		}
	} else {
		r.collectRefCheck(attr, elemTy, coerced, refs)
	}
	return coerced, nil
}

func (r *Registry) collectRefCheck(attr *schema.Attribute, ty value.ValueType, v value.Value, refs *[]RefCheck) {
	if attr.LocalID == r.attrsByIdent[schema.AttrID] {
		return
	}
	idVal, ok := v.(value.IdVal)
	if !ok {
		return
	}
	switch ty.Kind {
	case value.KRef:
		*refs = append(*refs, RefCheck{Attribute: attr.Ident, EntityID: id.Id(idVal)})
	case value.KRefConstrained:
		*refs = append(*refs, RefCheck{Attribute: attr.Ident, EntityID: id.Id(idVal), Allowed: ty.Classes})
	}
}

// ValidateCreate lowers a Create mutation into a TupleCreate DbOp plus any
// ref-integrity checks the caller (the memory store) must resolve before
// applying it.
func (r *Registry) ValidateCreate(entityID id.Id, data patch.DataMap) (id.Id, []DbOp, []RefCheck, error) {
	entityID = entityID.NonNilOrRandom()
	checked, refs, err := r.validateAttributes(data)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	checked[schema.AttrID] = value.IdVal(entityID)

	indexOps, err := r.buildIndexOpsCreate(checked)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	return entityID, []DbOp{TupleCreate{ID: entityID, Data: checked, IndexOps: indexOps}}, refs, nil
}

// ValidateReplace lowers a Replace mutation. If old is nil the entity
// doesn't yet exist and Replace degrades to Create, matching
// validate_replace.
func (r *Registry) ValidateReplace(entityID id.Id, data patch.DataMap, old patch.DataMap) (id.Id, []DbOp, []RefCheck, error) {
	if old == nil {
		return r.ValidateCreate(entityID, data)
	}
	entityID = entityID.NonNilOrRandom()
	checked, refs, err := r.validateAttributes(data)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	checked[schema.AttrID] = value.IdVal(entityID)

	indexOps, err := r.buildIndexOpsUpdate(checked, old)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	return entityID, []DbOp{TupleReplace{ID: entityID, Data: checked, IndexOps: indexOps}}, refs, nil
}

// ValidatePatch applies p to current, validates the result, and lowers it
// to a TupleReplace — apply_batch(Patch) has the same effect as
// apply_batch(Replace(id, p.apply(entity(id)))) per spec §8.
func (r *Registry) ValidatePatch(entityID id.Id, p patch.Patch, current patch.DataMap) ([]DbOp, []RefCheck, error) {
	newData, err := p.ApplyMap(current)
	if err != nil {
		return nil, nil, err
	}
	checked, refs, err := r.validateAttributes(newData)
	if err != nil {
		return nil, nil, err
	}
	indexOps, err := r.buildIndexOpsUpdate(checked, current)
	if err != nil {
		return nil, nil, err
	}
	return []DbOp{TupleReplace{ID: entityID, Data: checked, IndexOps: indexOps}}, refs, nil
}

// ValidateMerge unions data into old — new scalars win, but a list value
// present on both sides is merged element-wise with duplicates dropped —
// and lowers the result to a TupleMerge. Merging an empty map into an
// existing entity is a no-op, per spec §8.
func (r *Registry) ValidateMerge(entityID id.Id, data patch.DataMap, old patch.DataMap) (id.Id, []DbOp, []RefCheck, error) {
	entityID = entityID.NonNilOrRandom()
	merged := old.Clone()
	for k, v := range data {
		if newList, isList := v.(value.List); isList {
			if oldList, wasList := merged[k].(value.List); wasList {
				merged[k] = unionLists(oldList, newList)
				continue
			}
		}
		merged[k] = v
	}
	checked, refs, err := r.validateAttributes(merged)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	checked[schema.AttrID] = value.IdVal(entityID)

	indexOps, err := r.buildIndexOpsUpdate(checked, old)
	if err != nil {
		return id.Nil, nil, nil, err
	}
	return entityID, []DbOp{TupleMerge{ID: entityID, Data: checked, IndexOps: indexOps}}, refs, nil
}

// ValidateDelete lowers a Delete mutation to a TupleDelete.
func (r *Registry) ValidateDelete(entityID id.Id, old patch.DataMap) ([]DbOp, error) {
	indexOps, err := r.buildIndexOpsDelete(old)
	if err != nil {
		return nil, err
	}
	return []DbOp{TupleDelete{ID: entityID, IndexOps: indexOps}}, nil
}

func (r *Registry) buildIndexOpsCreate(data patch.DataMap) ([]IndexInsert, error) {
	var ops []IndexInsert
	for ident, v := range data {
		attr, err := r.AttrByIdent(ident)
		if err != nil {
			return nil, err
		}
		for _, idx := range r.IndexesForAttribute(attr.LocalID) {
			ops = append(ops, IndexInsert{Index: idx.LocalID, Value: v, Unique: idx.Unique})
		}
	}
	return ops, nil
}

func (r *Registry) buildIndexOpsUpdate(data, old patch.DataMap) ([]IndexOp, error) {
	var ops []IndexOp
	covered := make(map[uint32]bool)

	for ident, v := range data {
		attr, err := r.AttrByIdent(ident)
		if err != nil {
			return nil, err
		}
		covered[attr.LocalID] = true
		for _, idx := range r.IndexesForAttribute(attr.LocalID) {
			if oldV, ok := old[ident]; ok {
				if !oldV.Equal(v) {
					ops = append(ops, IndexReplace{Index: idx.LocalID, Value: v, OldValue: oldV, Unique: idx.Unique})
				}
			} else {
				ops = append(ops, IndexInsert{Index: idx.LocalID, Value: v, Unique: idx.Unique})
			}
		}
	}
	for ident, v := range old {
		attr, err := r.AttrByIdent(ident)
		if err != nil {
			return nil, err
		}
		if covered[attr.LocalID] {
			continue
		}
		for _, idx := range r.IndexesForAttribute(attr.LocalID) {
			ops = append(ops, IndexRemove{Index: idx.LocalID, Value: v})
		}
	}
	return ops, nil
}

func (r *Registry) buildIndexOpsDelete(data patch.DataMap) ([]IndexRemove, error) {
	var ops []IndexRemove
	for ident, v := range data {
		attr, err := r.AttrByIdent(ident)
		if err != nil {
			return nil, err
		}
		for _, idx := range r.IndexesForAttribute(attr.LocalID) {
			ops = append(ops, IndexRemove{Index: idx.LocalID, Value: v})
		}
	}
	return ops, nil
}

// unionLists concatenates old and new, dropping values from new that
// already appear (by Equal) in old, preserving old's order followed by
// new's deduplicated remainder.
func unionLists(old, new value.List) value.List {
	out := make(value.List, len(old), len(old)+len(new))
	copy(out, old)
	for _, v := range new {
		dup := false
		for _, existing := range out {
			if existing.Equal(v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
