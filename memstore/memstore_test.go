package memstore

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/registry"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func newTestStore(t *testing.T) (*registry.Registry, *Store) {
	t.Helper()
	r := registry.New()
	err := r.ApplyMigration(registry.Migration{
		Name: "init",
		Actions: []registry.SchemaAction{
			registry.CreateAttribute{Attribute: schema.Attribute{
				Ident:     "person/ssn",
				ValueType: value.TypeString(),
				Unique:    true,
			}},
			registry.CreateIndex{Index: schema.Index{
				Ident:      "person_ssn_idx",
				Attributes: []string{"person/ssn"},
				Unique:     true,
			}},
		},
	})
	if err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	return r, New(r)
}

func TestApplyBatchCreateAndGet(t *testing.T) {
	r, s := newTestStore(t)
	ssnLocal, _ := r.ResolveAttrLocal("person/ssn")
	idxLocal, _ := r.IndexForAttribute(ssnLocal)

	eid := id.New()
	data := patch.DataMap{"person/ssn": value.String("123-45-6789")}
	ops := []registry.DbOp{registry.TupleCreate{
		ID:       eid,
		Data:     data,
		IndexOps: []registry.IndexInsert{{Index: idxLocal, Value: value.String("123-45-6789"), Unique: true}},
	}}

	reverts, epoch, err := s.ApplyBatch(ops, nil, false)
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if epoch != 1 {
		t.Fatalf("epoch = %d, want 1", epoch)
	}
	if len(reverts) == 0 {
		t.Fatal("expected revert ops to be recorded")
	}

	got, ok := s.Get(eid)
	if !ok || got["person/ssn"] != value.String("123-45-6789") {
		t.Fatalf("Get(%v) = %v, %v", eid, got, ok)
	}
}

func TestApplyBatchUniqueViolationRollsBack(t *testing.T) {
	r, s := newTestStore(t)
	ssnLocal, _ := r.ResolveAttrLocal("person/ssn")
	idxLocal, _ := r.IndexForAttribute(ssnLocal)

	first := id.New()
	ops := []registry.DbOp{registry.TupleCreate{
		ID:       first,
		Data:     patch.DataMap{"person/ssn": value.String("111-11-1111")},
		IndexOps: []registry.IndexInsert{{Index: idxLocal, Value: value.String("111-11-1111"), Unique: true}},
	}}
	if _, _, err := s.ApplyBatch(ops, nil, false); err != nil {
		t.Fatalf("ApplyBatch(first): %v", err)
	}

	second := id.New()
	dupOps := []registry.DbOp{registry.TupleCreate{
		ID:       second,
		Data:     patch.DataMap{"person/ssn": value.String("111-11-1111")},
		IndexOps: []registry.IndexInsert{{Index: idxLocal, Value: value.String("111-11-1111"), Unique: true}},
	}}
	if _, _, err := s.ApplyBatch(dupOps, nil, false); err == nil {
		t.Fatal("expected a unique-violation error on a duplicate SSN")
	}

	if _, ok := s.Get(second); ok {
		t.Fatal("the conflicting entity must not have been committed")
	}
	if len(s.AllIDs()) != 1 {
		t.Fatalf("AllIDs() = %v, want only the first entity", s.AllIDs())
	}
}

func TestApplyBatchRefCheckFailure(t *testing.T) {
	_, s := newTestStore(t)
	missing := id.New()
	refs := []registry.RefCheck{{Attribute: "person/friend", EntityID: missing}}
	_, _, err := s.ApplyBatch(nil, refs, false)
	if err == nil {
		t.Fatal("expected a reference-check failure for a nonexistent entity")
	}
}

func TestApplyBatchIgnoreRefChecksDuringReplay(t *testing.T) {
	_, s := newTestStore(t)
	missing := id.New()
	refs := []registry.RefCheck{{Attribute: "person/friend", EntityID: missing}}
	// During replay, ref checks are skipped entirely (already validated once).
	if _, _, err := s.ApplyBatch(nil, refs, true); err != nil {
		t.Fatalf("ApplyBatch(ignoreRefChecks): %v", err)
	}
}

func TestRevertChangesUndoesBatch(t *testing.T) {
	r, s := newTestStore(t)
	ssnLocal, _ := r.ResolveAttrLocal("person/ssn")
	idxLocal, _ := r.IndexForAttribute(ssnLocal)

	eid := id.New()
	ops := []registry.DbOp{registry.TupleCreate{
		ID:       eid,
		Data:     patch.DataMap{"person/ssn": value.String("222-22-2222")},
		IndexOps: []registry.IndexInsert{{Index: idxLocal, Value: value.String("222-22-2222"), Unique: true}},
	}}
	reverts, epoch, err := s.ApplyBatch(ops, nil, false)
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if err := s.RevertChanges(epoch, reverts); err != nil {
		t.Fatalf("RevertChanges: %v", err)
	}
	if _, ok := s.Get(eid); ok {
		t.Fatal("entity should be gone after revert")
	}

	// The index slot must also be free again.
	if len(s.IndexLookup(idxLocal, value.String("222-22-2222"))) != 0 {
		t.Fatal("index entry should have been reverted too")
	}
}

func TestRevertChangesEpochMismatch(t *testing.T) {
	_, s := newTestStore(t)
	if err := s.RevertChanges(42, nil); err == nil {
		t.Fatal("expected an epoch-mismatch error")
	}
}

func TestPurgeAllData(t *testing.T) {
	r, s := newTestStore(t)
	ssnLocal, _ := r.ResolveAttrLocal("person/ssn")
	idxLocal, _ := r.IndexForAttribute(ssnLocal)

	eid := id.New()
	ops := []registry.DbOp{registry.TupleCreate{
		ID:       eid,
		Data:     patch.DataMap{"person/ssn": value.String("333-33-3333")},
		IndexOps: []registry.IndexInsert{{Index: idxLocal, Value: value.String("333-33-3333"), Unique: true}},
	}}
	if _, _, err := s.ApplyBatch(ops, nil, false); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	s.PurgeAllData()

	if len(s.AllIDs()) != 0 {
		t.Fatal("AllIDs() should be empty after purge")
	}
	if s.RevertEpoch() != 0 {
		t.Fatalf("RevertEpoch() = %d, want 0 after purge", s.RevertEpoch())
	}
}
