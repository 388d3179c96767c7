package schema

import "testing"

func TestClassAttributeFindsDirectlyDeclared(t *testing.T) {
	c := Class{Attributes: []ClassAttribute{
		{Attribute: "person/age", Required: true},
		{Attribute: "person/name"},
	}}

	got, ok := c.Attribute("person/age")
	if !ok || !got.Required {
		t.Fatalf("Attribute(person/age) = %v, %v, want a required match", got, ok)
	}
}

func TestClassAttributeMissing(t *testing.T) {
	c := Class{Attributes: []ClassAttribute{{Attribute: "person/age"}}}
	if _, ok := c.Attribute("person/ssn"); ok {
		t.Fatal("Attribute should not find an undeclared ident")
	}
}

func TestClassAttributeDoesNotWalkExtends(t *testing.T) {
	c := Class{Ident: "employee", Extends: []string{"person"}}
	if _, ok := c.Attribute("person/age"); ok {
		t.Fatal("Attribute should only look at attributes declared directly on c")
	}
}
