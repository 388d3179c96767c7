package db

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func TestPlanMigrationDataOpsIndexBackfill(t *testing.T) {
	r, s := newTestStore(t)
	withAge := id.New()
	withoutAge := id.New()
	apply(t, r, s, Batch{Actions: []Action{
		Create{ID: withAge, Data: patch.DataMap{"person/age": value.Int(5)}},
	}})
	apply(t, r, s, Batch{Actions: []Action{
		Create{ID: withoutAge, Data: patch.DataMap{}},
	}})

	m := registry.Migration{
		Name: "add-name-index",
		Actions: []registry.SchemaAction{
			registry.CreateAttribute{Attribute: schema.Attribute{Ident: "person/name", ValueType: value.TypeString()}},
			registry.CreateIndex{Index: schema.Index{Ident: "person_name_idx", Attributes: []string{"person/name"}}},
		},
	}
	if err := r.ApplyMigration(m); err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	ops, err := PlanMigrationDataOps(m, s, r)
	if err != nil {
		t.Fatalf("PlanMigrationDataOps: %v", err)
	}
	// Neither entity has person/name set yet, so the backfill produces no ops.
	if len(ops) != 0 {
		t.Fatalf("ops = %v, want none (nothing has person/name set)", ops)
	}
}

func TestPlanMigrationDataOpsAttributeStrip(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{
		Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(5)}},
	}})

	dropIndex := registry.Migration{Name: "drop-age-index", Actions: []registry.SchemaAction{registry.DeleteIndex{Ident: "person_age_idx"}}}
	if err := r.ApplyMigration(dropIndex); err != nil {
		t.Fatalf("ApplyMigration(drop index): %v", err)
	}

	m := registry.Migration{
		Name:    "drop-age",
		Actions: []registry.SchemaAction{registry.DeleteAttribute{Ident: "person/age"}},
	}
	if err := r.ApplyMigration(m); err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	ops, err := PlanMigrationDataOps(m, s, r)
	if err != nil {
		t.Fatalf("PlanMigrationDataOps: %v", err)
	}
	if _, _, err := s.ApplyBatch(ops, nil, true); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	data, ok := s.Get(eid)
	if !ok {
		t.Fatal("entity should still exist")
	}
	if _, has := data["person/age"]; has {
		t.Fatalf("person/age should have been stripped, got %v", data)
	}
}

func TestPlanMigrationDataOpsAttributeCoerce(t *testing.T) {
	r, s := newTestStore(t)
	eid := id.New()
	apply(t, r, s, Batch{Actions: []Action{
		Create{ID: eid, Data: patch.DataMap{"person/age": value.Int(5)}},
	}})

	m := registry.Migration{
		Name: "widen-age",
		Actions: []registry.SchemaAction{registry.AttributeChangeType{
			Ident:   "person/age",
			NewType: schema.Attribute{ValueType: value.TypeFloat()},
		}},
	}
	if err := r.ApplyMigration(m); err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	ops, err := PlanMigrationDataOps(m, s, r)
	if err != nil {
		t.Fatalf("PlanMigrationDataOps: %v", err)
	}
	if _, _, err := s.ApplyBatch(ops, nil, true); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	data, _ := s.Get(eid)
	if data["person/age"] != value.Float(5) {
		t.Fatalf("person/age = %#v, want Float(5)", data["person/age"])
	}
}
