package suggest

import (
	"reflect"
	"testing"
)

func TestClosestPicksNearestMatch(t *testing.T) {
	got := Closest("person/naem", []string{"person/name", "person/age", "company/name"})
	want := []string{"person/name"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Closest() = %v, want %v", got, want)
	}
}

func TestClosestReturnsAllTiedCandidatesSorted(t *testing.T) {
	got := Closest("cat", []string{"bat", "cap", "dog"})
	want := []string{"bat", "cap"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Closest() = %v, want %v", got, want)
	}
}

func TestClosestNoneWithinRange(t *testing.T) {
	got := Closest("completely-unrelated-ident-string", []string{"x", "y"})
	if got != nil {
		t.Fatalf("Closest() = %v, want nil", got)
	}
}

func TestClosestEmptyCandidates(t *testing.T) {
	if got := Closest("anything", nil); got != nil {
		t.Fatalf("Closest(nil) = %v, want nil", got)
	}
}
