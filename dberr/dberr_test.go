package dberr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/factorlabs/factordb/value"
)

func TestKindOfExtractsWrappedError(t *testing.T) {
	base := NotFound(EntityNotFound, "abc", nil)
	wrapped := fmt.Errorf("select failed: %w", base)

	kind, ok := KindOf(wrapped)
	if !ok || kind != EntityNotFound {
		t.Fatalf("KindOf(wrapped) = %v, %v, want EntityNotFound, true", kind, ok)
	}
}

func TestKindOfNonDberrError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatal("KindOf(plain error) = true, want false")
	}
}

func TestIsComparesKindNotIdentity(t *testing.T) {
	a := NotFound(EntityNotFound, "a", nil)
	b := NotFound(EntityNotFound, "b", nil)
	if !errors.Is(a, b) {
		t.Fatal("two EntityNotFound errors with different idents should compare equal via errors.Is")
	}

	c := NotFound(ClassNotFound, "a", nil)
	if errors.Is(a, c) {
		t.Fatal("errors of different Kind should not compare equal")
	}
}

func TestErrorStringIncludesSuggestion(t *testing.T) {
	err := NotFound(AttributeNotFound, "person/naem", []string{"person/name"})
	msg := err.Error()
	if !contains(msg, "person/naem") || !contains(msg, "person/name") {
		t.Fatalf("Error() = %q, want it to mention both the ident and the suggestion", msg)
	}
}

func TestErrorStringCoercion(t *testing.T) {
	err := CoercionErr(value.TypeInt(), value.TypeString(), "person/age")
	msg := err.Error()
	if !contains(msg, "Int") || !contains(msg, "String") || !contains(msg, "person/age") {
		t.Fatalf("Error() = %q, want expected/actual types and the path", msg)
	}
}

func TestErrorStringUniqueViolation(t *testing.T) {
	err := UniqueViolation("person_ssn_idx", "person/ssn", "deadbeef", value.String("123"))
	msg := err.Error()
	if !contains(msg, "person_ssn_idx") || !contains(msg, "deadbeef") {
		t.Fatalf("Error() = %q, want the index and entity id", msg)
	}
}

func TestErrorStringReferenceViolation(t *testing.T) {
	err := ReferenceViolation("person/employer", "deadbeef", "company", []string{"org"})
	msg := err.Error()
	if !contains(msg, "company") || !contains(msg, "org") {
		t.Fatalf("Error() = %q, want the actual and expected types", msg)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{EntityNotFound, "EntityNotFound"},
		{InvalidMigration, "InvalidMigration"},
		{Consistency, "Consistency"},
		{InternalErr, "InternalErr"},
		{Kind(99), "InternalErr"},
	}
	for _, tc := range tests {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (sub == "" || indexOf(s, sub) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
