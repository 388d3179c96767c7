package index

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

func TestUniqueInsertAndLookup(t *testing.T) {
	u := NewUnique()
	owner := id.New()
	if _, ok := u.Insert(value.String("ssn-1"), owner); ok {
		t.Fatal("first insert should not conflict")
	}
	got, ok := u.Lookup(value.String("ssn-1"))
	if !ok || got != owner {
		t.Fatalf("Lookup = %v, %v, want %v, true", got, ok, owner)
	}
}

func TestUniqueInsertConflict(t *testing.T) {
	u := NewUnique()
	first := id.New()
	second := id.New()
	u.Insert(value.String("ssn-1"), first)

	conflict, ok := u.Insert(value.String("ssn-1"), second)
	if !ok || conflict != first {
		t.Fatalf("Insert conflict = %v, %v, want %v, true", conflict, ok, first)
	}
	// The losing insert must not have displaced the original owner.
	got, _ := u.Lookup(value.String("ssn-1"))
	if got != first {
		t.Fatalf("Lookup after conflicting insert = %v, want %v", got, first)
	}
}

func TestUniqueReinsertBySameOwnerIsNotAConflict(t *testing.T) {
	u := NewUnique()
	owner := id.New()
	u.Insert(value.String("ssn-1"), owner)
	if _, ok := u.Insert(value.String("ssn-1"), owner); ok {
		t.Fatal("re-inserting the same owner under the same value should not conflict")
	}
}

func TestUniqueRemove(t *testing.T) {
	u := NewUnique()
	owner := id.New()
	u.Insert(value.String("ssn-1"), owner)
	u.Remove(value.String("ssn-1"), owner)
	if _, ok := u.Lookup(value.String("ssn-1")); ok {
		t.Fatal("entry should be gone after Remove")
	}
}

func TestUniqueRemoveWrongOwnerIsNoop(t *testing.T) {
	u := NewUnique()
	owner := id.New()
	other := id.New()
	u.Insert(value.String("ssn-1"), owner)
	u.Remove(value.String("ssn-1"), other)
	if _, ok := u.Lookup(value.String("ssn-1")); !ok {
		t.Fatal("Remove with the wrong owner should not delete the entry")
	}
}

func TestUniqueLenAndEntriesOrdered(t *testing.T) {
	u := NewUnique()
	u.Insert(value.Int(3), id.New())
	u.Insert(value.Int(1), id.New())
	u.Insert(value.Int(2), id.New())

	if n := u.Len(); n != 3 {
		t.Fatalf("Len() = %d, want 3", n)
	}
	entries := u.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Value.Compare(entries[i].Value) > 0 {
			t.Fatalf("Entries() not sorted: %v", entries)
		}
	}
}
