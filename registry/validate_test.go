package registry

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/patch"
	"github.com/factorlabs/factordb/path"
	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func newValidateTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	err := r.ApplyMigration(Migration{
		Name: "init",
		Actions: []SchemaAction{
			CreateAttribute{Attribute: schema.Attribute{Ident: "person/age", ValueType: value.TypeInt()}},
			CreateAttribute{Attribute: schema.Attribute{Ident: "person/tags", ValueType: value.TypeList(value.TypeString())}},
			CreateAttribute{Attribute: schema.Attribute{Ident: "person/ssn", ValueType: value.TypeString(), Unique: true}},
			CreateIndex{Index: schema.Index{Ident: "person_ssn_idx", Attributes: []string{"person/ssn"}, Unique: true}},
		},
	})
	if err != nil {
		t.Fatalf("ApplyMigration: %v", err)
	}
	return r
}

func TestValidateCreateAssignsIDAndCoerces(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid, ops, refs, err := r.ValidateCreate(id.Nil, patch.DataMap{"person/age": value.UInt(5)})
	if err != nil {
		t.Fatalf("ValidateCreate: %v", err)
	}
	if eid.IsNil() {
		t.Fatal("ValidateCreate should assign a random id when none is given")
	}
	if len(refs) != 0 {
		t.Fatalf("refs = %v, want none", refs)
	}
	create, ok := ops[0].(TupleCreate)
	if !ok {
		t.Fatalf("ops[0] = %T, want TupleCreate", ops[0])
	}
	if create.Data["person/age"] != value.Int(5) {
		t.Fatalf("person/age = %v, want coerced Int(5)", create.Data["person/age"])
	}
}

func TestValidateCreateUniqueIndexOp(t *testing.T) {
	r := newValidateTestRegistry(t)
	_, ops, _, err := r.ValidateCreate(id.Nil, patch.DataMap{"person/ssn": value.String("111-22-3333")})
	if err != nil {
		t.Fatalf("ValidateCreate: %v", err)
	}
	create := ops[0].(TupleCreate)
	if len(create.IndexOps) != 1 || !create.IndexOps[0].Unique {
		t.Fatalf("IndexOps = %v, want one unique insert", create.IndexOps)
	}
}

func TestValidateCreateUnknownAttributeErrors(t *testing.T) {
	r := newValidateTestRegistry(t)
	_, _, _, err := r.ValidateCreate(id.Nil, patch.DataMap{"person/unknown": value.Int(1)})
	if err == nil {
		t.Fatal("expected an error for an unknown attribute")
	}
}

func TestValidateReplaceDegradesToCreateWhenAbsent(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid := id.New()
	gotID, ops, _, err := r.ValidateReplace(eid, patch.DataMap{"person/age": value.Int(9)}, nil)
	if err != nil {
		t.Fatalf("ValidateReplace: %v", err)
	}
	if gotID != eid {
		t.Fatalf("gotID = %v, want %v", gotID, eid)
	}
	if _, ok := ops[0].(TupleCreate); !ok {
		t.Fatalf("ops[0] = %T, want TupleCreate", ops[0])
	}
}

func TestValidateReplaceUpdatesIndex(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid := id.New()
	old := patch.DataMap{"person/ssn": value.String("111-22-3333")}
	_, ops, _, err := r.ValidateReplace(eid, patch.DataMap{"person/ssn": value.String("999-88-7777")}, old)
	if err != nil {
		t.Fatalf("ValidateReplace: %v", err)
	}
	replace, ok := ops[0].(TupleReplace)
	if !ok {
		t.Fatalf("ops[0] = %T, want TupleReplace", ops[0])
	}
	if len(replace.IndexOps) != 1 {
		t.Fatalf("IndexOps = %v, want one replace op", replace.IndexOps)
	}
	if _, ok := replace.IndexOps[0].(IndexReplace); !ok {
		t.Fatalf("IndexOps[0] = %T, want IndexReplace", replace.IndexOps[0])
	}
}

func TestValidateMergeUnionsListsDedup(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid := id.New()
	old := patch.DataMap{"person/tags": value.List{value.String("a"), value.String("b")}}
	_, ops, _, err := r.ValidateMerge(eid, patch.DataMap{"person/tags": value.List{value.String("b"), value.String("c")}}, old)
	if err != nil {
		t.Fatalf("ValidateMerge: %v", err)
	}
	merge := ops[0].(TupleMerge)
	tags := merge.Data["person/tags"].(value.List)
	if len(tags) != 3 {
		t.Fatalf("tags = %v, want [a b c]", tags)
	}
}

func TestValidateMergeScalarOverwrites(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid := id.New()
	old := patch.DataMap{"person/age": value.Int(10)}
	_, ops, _, err := r.ValidateMerge(eid, patch.DataMap{"person/age": value.Int(20)}, old)
	if err != nil {
		t.Fatalf("ValidateMerge: %v", err)
	}
	merge := ops[0].(TupleMerge)
	if merge.Data["person/age"] != value.Int(20) {
		t.Fatalf("person/age = %v, want 20", merge.Data["person/age"])
	}
}

func TestValidatePatchAppliesThenValidates(t *testing.T) {
	r := newValidateTestRegistry(t)
	eid := id.New()
	current := patch.DataMap{"person/age": value.Int(1)}
	p := patch.Patch{patch.Replace{Path: path.Path{path.Key("person/age")}, Value: value.Int(2)}}
	ops, _, err := r.ValidatePatch(eid, p, current)
	if err != nil {
		t.Fatalf("ValidatePatch: %v", err)
	}
	replace := ops[0].(TupleReplace)
	if replace.Data["person/age"] != value.Int(2) {
		t.Fatalf("person/age = %v, want 2", replace.Data["person/age"])
	}
}

func TestValidateDeleteRemovesIndexEntries(t *testing.T) {
	r := newValidateTestRegistry(t)
	old := patch.DataMap{"person/ssn": value.String("111-22-3333")}
	ops, err := r.ValidateDelete(id.New(), old)
	if err != nil {
		t.Fatalf("ValidateDelete: %v", err)
	}
	del, ok := ops[0].(TupleDelete)
	if !ok {
		t.Fatalf("ops[0] = %T, want TupleDelete", ops[0])
	}
	if len(del.IndexOps) != 1 {
		t.Fatalf("IndexOps = %v, want one remove op", del.IndexOps)
	}
}
