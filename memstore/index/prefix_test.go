package index

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

func TestPrefixInsertAndLookupExact(t *testing.T) {
	p := NewPrefix()
	owner := id.New()
	p.Insert("hello", owner)

	got := p.Lookup("hello")
	if len(got) != 1 || got[0] != owner {
		t.Fatalf("Lookup(hello) = %v, want [%v]", got, owner)
	}
	if got := p.Lookup("hell"); len(got) != 0 {
		t.Fatalf("Lookup(hell) = %v, want empty (not a full match)", got)
	}
}

func TestPrefixScanPrefixFindsAllMatches(t *testing.T) {
	p := NewPrefix()
	a := id.New()
	b := id.New()
	c := id.New()
	p.Insert("hello", a)
	p.Insert("helicopter", b)
	p.Insert("world", c)

	got := p.ScanPrefix("hel")
	if len(got) != 2 {
		t.Fatalf("ScanPrefix(hel) = %v, want 2 matches", got)
	}
	found := map[id.Id]bool{}
	for _, eid := range got {
		found[eid] = true
	}
	if !found[a] || !found[b] {
		t.Fatalf("ScanPrefix(hel) = %v, want both hello and helicopter owners", got)
	}
	if found[c] {
		t.Fatal("ScanPrefix(hel) should not match world")
	}
}

func TestPrefixRemoveDropsEntry(t *testing.T) {
	p := NewPrefix()
	owner := id.New()
	p.Insert("hello", owner)
	p.Remove("hello", owner)

	if got := p.Lookup("hello"); len(got) != 0 {
		t.Fatalf("Lookup after Remove = %v, want empty", got)
	}
}

func TestPrefixValueInsertOnlyAcceptsStrings(t *testing.T) {
	p := NewPrefix()
	owner := id.New()
	p.ValueInsert(value.Int(5), owner)
	p.ValueInsert(value.String("hello"), owner)

	if got := p.Lookup("hello"); len(got) != 1 {
		t.Fatalf("Lookup(hello) = %v, want the string value to have been indexed", got)
	}
}

func TestPrefixValueRemove(t *testing.T) {
	p := NewPrefix()
	owner := id.New()
	p.ValueInsert(value.String("hello"), owner)
	p.ValueRemove(value.String("hello"), owner)
	if got := p.Lookup("hello"); len(got) != 0 {
		t.Fatalf("Lookup after ValueRemove = %v, want empty", got)
	}
}
