// Package db defines the Mutate/Batch request shapes apply_batch accepts
// and plans them into the registry's flat DbOp form, grounded on the
// original engine's apply_batch/validate_* dispatch (spec §4.2, §4.4,
// §6).
package db

import (
	"fmt"

	"github.com/factorlabs/factordb/dberr"
	"github.com/factorlabs/factordb/exec"
	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/planner"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
)

func entityNotFound(eid id.Id) error {
	return dberr.NotFound(dberr.EntityNotFound, eid.String(), nil)
}

// Action is one step of a Batch. Concrete types are Create, Replace,
// Merge, PatchAction, Delete and SelectAction.
type Action interface{ action() }

// Create inserts a new entity. ID is nil to request a random id.
type Create struct {
	ID   id.Id
	Data patch.DataMap
}

// Replace overwrites id's data wholesale (or creates it, if absent).
type Replace struct {
	ID   id.Id
	Data patch.DataMap
}

// Merge unions data into id's existing data.
type Merge struct {
	ID   id.Id
	Data patch.DataMap
}

// PatchAction applies a patch.Patch to id's current data.
type PatchAction struct {
	ID    id.Id
	Patch patch.Patch
}

// Delete removes id entirely.
type Delete struct{ ID id.Id }

// SelectAction resolves Filter against the live store and runs Then on
// every matching id, through the same DbOp path as a direct mutation —
// the generated ops are never another SelectAction (spec §4.4).
type SelectAction struct {
	Filter queryexpr.Expr
	Then   SelectThen
}

// SelectThen is the action SelectAction runs per matched id: SelectDelete
// or SelectPatch.
type SelectThen interface{ selectThen() }

type SelectDelete struct{}
type SelectPatch struct{ Patch patch.Patch }

func (SelectDelete) selectThen() {}
func (SelectPatch) selectThen()  {}

func (Create) action()       {}
func (Replace) action()      {}
func (Merge) action()        {}
func (PatchAction) action()  {}
func (Delete) action()       {}
func (SelectAction) action() {}

// Batch is one atomic apply_batch request.
type Batch struct{ Actions []Action }

// Plan lowers every action in b into a flat DbOp/RefCheck list the store
// can apply as a single unit. store is read (never mutated) to fetch
// each target's current data and, for SelectAction, to run the filter.
func Plan(b Batch, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, []registry.RefCheck, error) {
	var ops []registry.DbOp
	var refs []registry.RefCheck

	for _, a := range b.Actions {
		aOps, aRefs, err := planAction(a, store, reg)
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, aOps...)
		refs = append(refs, aRefs...)
	}
	return ops, refs, nil
}

func planAction(a Action, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, []registry.RefCheck, error) {
	switch x := a.(type) {
	case Create:
		eid, ops, refs, err := reg.ValidateCreate(x.ID, x.Data)
		_ = eid
		return ops, refs, err

	case Replace:
		old, _ := store.TupleRef(x.ID)
		eid, ops, refs, err := reg.ValidateReplace(x.ID, x.Data, old)
		_ = eid
		return ops, refs, err

	case Merge:
		old, _ := store.TupleRef(x.ID)
		eid, ops, refs, err := reg.ValidateMerge(x.ID, x.Data, old)
		_ = eid
		return ops, refs, err

	case PatchAction:
		old, ok := store.TupleRef(x.ID)
		if !ok {
			return nil, nil, entityNotFound(x.ID)
		}
		return reg.ValidatePatch(x.ID, x.Patch, old)

	case Delete:
		old, ok := store.TupleRef(x.ID)
		if !ok {
			return nil, nil, entityNotFound(x.ID)
		}
		return reg.ValidateDelete(x.ID, old)

	case SelectAction:
		return planSelectAction(x, store, reg)

	default:
		return nil, nil, fmt.Errorf("db: unhandled batch action %T", a)
	}
}

func planSelectAction(x SelectAction, store *memstore.Store, reg *registry.Registry) ([]registry.DbOp, []registry.RefCheck, error) {
	resolved, err := queryexpr.Resolve(x.Filter, reg)
	if err != nil {
		return nil, nil, err
	}
	p, err := planner.Build(planner.Select{Filter: resolved}, reg)
	if err != nil {
		return nil, nil, err
	}
	result, err := exec.Run(p, store)
	if err != nil {
		return nil, nil, err
	}

	var ops []registry.DbOp
	var refs []registry.RefCheck
	for _, eid := range result.IDs {
		old, ok := store.TupleRef(eid)
		if !ok {
			continue
		}
		var opsForID []registry.DbOp
		var refsForID []registry.RefCheck
		switch then := x.Then.(type) {
		case SelectDelete:
			opsForID, err = reg.ValidateDelete(eid, old)
		case SelectPatch:
			opsForID, refsForID, err = reg.ValidatePatch(eid, then.Patch, old)
		default:
			err = fmt.Errorf("db: unhandled select-action %T", then)
		}
		if err != nil {
			return nil, nil, err
		}
		ops = append(ops, opsForID...)
		refs = append(refs, refsForID...)
	}
	return ops, refs, nil
}
