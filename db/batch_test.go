package db

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/memstore"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/path"
	"github.com/factorlabs/factordb/queryexpr"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func newTestStore(t *testing.T) (*registry.Registry, *memstore.Store) {
	t.Helper()
	r := registry.New()
	err := r.ApplyMigration(registry.Migration{
		Name: "init",
		Actions: []registry.SchemaAction{
			registry.CreateAttribute{Attribute: schema.Attribute{
				Ident:     "person/age",
				ValueType: value.TypeInt(),
				Index:     true,
			}},
			registry.CreateIndex{Index: schema.Index{
				Ident:      "person_age_idx",
				Attributes: []string{"person/age"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	return r, memstore.New(r)
}

func apply(t *testing.T, r *registry.Registry, s *memstore.Store, b Batch) {
	t.Helper()
	ops, refs, err := Plan(b, s, r)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if _, _, err := s.ApplyBatch(ops, refs, false); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
}

func TestPlanCreate(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(10)}}}})

	data, ok := s.Get(eid)
	if !ok || data["person/age"] != value.Int(10) {
		t.Fatalf("Get(%v) = %v, %v", eid, data, ok)
	}
}

func TestPlanReplaceDegradesToCreateWhenAbsent(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Replace{ID: eid, Data: patch.DataMap{"person/age": value.Int(5)}}}})

	data, ok := s.Get(eid)
	if !ok || data["person/age"] != value.Int(5) {
		t.Fatalf("Get(%v) = %v, %v, want a created entity", eid, data, ok)
	}
}

func TestPlanMerge(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(1)}}}})
	apply(t, r, s, Batch{Actions: []Action{Merge{ID: eid, Data: patch.DataMap{"person/age": value.Int(2)}}}})

	data, _ := s.Get(eid)
	if data["person/age"] != value.Int(2) {
		t.Fatalf("person/age = %v, want 2", data["person/age"])
	}
}

func TestPlanPatchAction(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(1)}}}})

	p := patch.Patch{patch.Replace{Path: path.Path{path.Key("person/age")}, Value: value.Int(99)}}
	apply(t, r, s, Batch{Actions: []Action{PatchAction{ID: eid, Patch: p}}})

	data, _ := s.Get(eid)
	if data["person/age"] != value.Int(99) {
		t.Fatalf("person/age = %v, want 99", data["person/age"])
	}
}

func TestPlanPatchActionMissingEntityErrors(t *testing.T) {
	r, s := newTestStore(t)
	_, _, err := Plan(Batch{Actions: []Action{PatchAction{ID: id.New()}}}, s, r)
	if err == nil {
		t.Fatal("expected an error patching a nonexistent entity")
	}
}

func TestPlanDelete(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(1)}}}})
	apply(t, r, s, Batch{Actions: []Action{Delete{ID: eid}}})

	if _, ok := s.Get(eid); ok {
		t.Fatal("entity should be deleted")
	}
}

func TestPlanDeleteMissingEntityErrors(t *testing.T) {
	r, s := newTestStore(t)
	_, _, err := Plan(Batch{Actions: []Action{Delete{ID: id.New()}}}, s, r)
	if err == nil {
		t.Fatal("expected an error deleting a nonexistent entity")
	}
}

func TestPlanSelectActionDelete(t *testing.T) {
	r, s := newTestStore(t)
	keep := id.New()
	drop := id.New()
	apply(t, r, s, Batch{Actions: []Action{
		Create{ID: keep, Data: patch.DataMap{"person/age": value.Int(10)}},
		Create{ID: drop, Data: patch.DataMap{"person/age": value.Int(99)}},
	}})

	age, ok := r.ResolveAttrLocal("person/age")
	if !ok {
		t.Fatal("person/age not found")
	}
	filter := queryexpr.BinaryOp{
		Left:  queryexpr.Attr{Local: age},
		Op:    queryexpr.Gt,
		Right: queryexpr.Literal{Value: value.Int(50)},
	}
	apply(t, r, s, Batch{Actions: []Action{SelectAction{Filter: filter, Then: SelectDelete{}}}})

	if _, ok := s.Get(keep); !ok {
		t.Fatal("entity below the threshold should survive")
	}
	if _, ok := s.Get(drop); ok {
		t.Fatal("entity above the threshold should have been deleted")
	}
}

func TestPlanSelectActionPatch(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(10)}}}})

	age, _ := r.ResolveAttrLocal("person/age")
	filter := queryexpr.BinaryOp{
		Left:  queryexpr.Attr{Local: age},
		Op:    queryexpr.Eq,
		Right: queryexpr.Literal{Value: value.Int(10)},
	}
	p := patch.Patch{patch.Replace{Path: path.Path{path.Key("person/age")}, Value: value.Int(11)}}
	apply(t, r, s, Batch{Actions: []Action{SelectAction{Filter: filter, Then: SelectPatch{Patch: p}}}})

	data, _ := s.Get(eid)
	if data["person/age"] != value.Int(11) {
		t.Fatalf("person/age = %v, want 11", data["person/age"])
	}
}
