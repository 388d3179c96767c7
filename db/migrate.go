package db

import (
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

// PlanMigrationDataOps inspects m's schema actions and produces the DbOps
// needed to carry existing data forward: backfilling a new index,
// stripping a deleted attribute from every tuple, cascade-deleting a
// deleted class's entities, and coercing a widened attribute's stored
// values. Call this after reg.ApplyMigration(m) has already run, so a
// CreateIndex action's new index has a LocalID to backfill into.
//
// DeleteIndex and CreateAttribute/CreateClass have no data consequence:
// an index no longer exposed by the registry is simply never read or
// written again (its backing array in the store is abandoned, not
// reclaimed — see DESIGN.md).
func PlanMigrationDataOps(m registry.Migration, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, error) {
	var ops []registry.DbOp
	for _, action := range m.Actions {
		switch a := action.(type) {
		case registry.CreateIndex:
			backfill, err := planIndexBackfill(a, store, reg)
			if err != nil {
				return nil, err
			}
			ops = append(ops, backfill...)

		case registry.DeleteAttribute:
			stripped, err := planAttributeStrip(a.Ident, store, reg)
			if err != nil {
				return nil, err
			}
			ops = append(ops, stripped...)

		case registry.DeleteClass:
			del, err := planClassCascadeDelete(a.Ident, store, reg)
			if err != nil {
				return nil, err
			}
			ops = append(ops, del...)

		case registry.AttributeChangeType:
			coerced, err := planAttributeCoerce(a, store, reg)
			if err != nil {
				return nil, err
			}
			ops = append(ops, coerced...)
		}
	}
	return ops, nil
}

func planIndexBackfill(a registry.CreateIndex, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, error) {
	idx, err := reg.IndexByIdent(a.Index.Ident)
	if err != nil {
		return nil, err
	}
	attrIdent := a.Index.Attributes[0]
	var ops []registry.DbOp
	for _, eid := range store.AllIDs() {
		data, ok := store.TupleRef(eid)
		if !ok {
			continue
		}
		v, has := data[attrIdent]
		if !has {
			continue
		}
		ops = append(ops, registry.TupleReplace{
			ID:       eid,
			Data:     data,
			IndexOps: []registry.IndexOp{registry.IndexInsert{Index: idx.LocalID, Value: v, Unique: idx.Unique}},
		})
	}
	return ops, nil
}

func planAttributeStrip(ident string, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, error) {
	var ops []registry.DbOp
	for _, eid := range store.AllIDs() {
		data, ok := store.TupleRef(eid)
		if !ok {
			continue
		}
		if _, has := data[ident]; !has {
			continue
		}
		stripped := data.Clone()
		delete(stripped, ident)
		_, replaceOps, _, err := reg.ValidateReplace(eid, stripped, data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, replaceOps...)
	}
	return ops, nil
}

func planClassCascadeDelete(classIdent string, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, error) {
	var ops []registry.DbOp
	for _, eid := range store.AllIDs() {
		data, ok := store.TupleRef(eid)
		if !ok {
			continue
		}
		t, has := data[schema.AttrType]
		if !has {
			continue
		}
		ts, _ := t.(value.String)
		if string(ts) != classIdent {
			continue
		}
		delOps, err := reg.ValidateDelete(eid, data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, delOps...)
	}
	return ops, nil
}

func planAttributeCoerce(a registry.AttributeChangeType, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, error) {
	var ops []registry.DbOp
	for _, eid := range store.AllIDs() {
		data, ok := store.TupleRef(eid)
		if !ok {
			continue
		}
		v, has := data[a.Ident]
		if !has {
			continue
		}
		coerced, err := value.Coerce(v, a.NewType.ValueType)
		if err != nil {
			return nil, err
		}
		if coerced.Equal(v) {
			continue
		}
		updated := data.Clone()
		updated[a.Ident] = coerced
		_, replaceOps, _, err := reg.ValidateReplace(eid, updated, data)
		if err != nil {
			return nil, err
		}
		ops = append(ops, replaceOps...)
	}
	return ops, nil
}
