package registry

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

func TestMigrationYAMLRoundTrip(t *testing.T) {
	m := Migration{
		Name: "add-person",
		Actions: []SchemaAction{
			CreateAttribute{Attribute: schema.Attribute{
				Ident:     "person/age",
				ValueType: value.TypeInt(),
				Index:     true,
			}},
			CreateClass{Class: schema.Class{
				Ident:      "person",
				Attributes: []schema.ClassAttribute{{Attribute: "person/age", Required: true}},
				Strict:     true,
			}},
			CreateIndex{Index: schema.Index{Ident: "person_age_idx", Attributes: []string{"person/age"}}},
			DeleteAttribute{Ident: "person/nickname"},
			AttributeChangeType{Ident: "person/age", NewType: schema.Attribute{ValueType: value.TypeFloat()}},
		},
	}

	b, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out Migration
	if err := yaml.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal(%s): %v", b, err)
	}

	if out.Name != m.Name {
		t.Errorf("Name = %q, want %q", out.Name, m.Name)
	}
	if len(out.Actions) != len(m.Actions) {
		t.Fatalf("len(Actions) = %d, want %d", len(out.Actions), len(m.Actions))
	}

	ca, ok := out.Actions[0].(CreateAttribute)
	if !ok || ca.Attribute.Ident != "person/age" || !ca.Attribute.ValueType.Equal(value.TypeInt()) || !ca.Attribute.Index {
		t.Errorf("Actions[0] = %#v, want CreateAttribute(person/age, Int, Index)", out.Actions[0])
	}

	cc, ok := out.Actions[1].(CreateClass)
	if !ok || cc.Class.Ident != "person" || !cc.Class.Strict || len(cc.Class.Attributes) != 1 {
		t.Errorf("Actions[1] = %#v, want CreateClass(person)", out.Actions[1])
	}

	ci, ok := out.Actions[2].(CreateIndex)
	if !ok || ci.Index.Ident != "person_age_idx" {
		t.Errorf("Actions[2] = %#v, want CreateIndex(person_age_idx)", out.Actions[2])
	}

	da, ok := out.Actions[3].(DeleteAttribute)
	if !ok || da.Ident != "person/nickname" {
		t.Errorf("Actions[3] = %#v, want DeleteAttribute(person/nickname)", out.Actions[3])
	}

	act, ok := out.Actions[4].(AttributeChangeType)
	if !ok || act.Ident != "person/age" || !act.NewType.ValueType.Equal(value.TypeFloat()) {
		t.Errorf("Actions[4] = %#v, want AttributeChangeType(person/age, Float)", out.Actions[4])
	}
}
