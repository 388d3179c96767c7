package index

import (
	"testing"

	"github.com/factorlabs/factordb/id"
	"github.com/factorlabs/factordb/value"
)

func TestKeyNumericCrossTypeEquality(t *testing.T) {
	if Key(value.Int(10)) != Key(value.UInt(10)) {
		t.Fatal("Int(10) and UInt(10) should share the same key")
	}
	if Key(value.Int(10)) != Key(value.Float(10)) {
		t.Fatal("Int(10) and Float(10) should share the same key")
	}
}

func TestKeyDistinguishesNegativeNumbers(t *testing.T) {
	if Key(value.Int(-5)) == Key(value.Int(5)) {
		t.Fatal("Int(-5) and Int(5) should have different keys")
	}
}

func TestKeyStringVsNumberNoCollision(t *testing.T) {
	if Key(value.String("1")) == Key(value.Int(1)) {
		t.Fatal("String(\"1\") and Int(1) must not collide")
	}
}

func TestKeyFloatFractional(t *testing.T) {
	if Key(value.Float(1.5)) == Key(value.Int(1)) {
		t.Fatal("Float(1.5) should not collide with Int(1)")
	}
}

func TestKeyBoolDistinctFromEachOther(t *testing.T) {
	if Key(value.Bool(true)) == Key(value.Bool(false)) {
		t.Fatal("Bool(true) and Bool(false) must have different keys")
	}
}

func TestKeyListOrderSensitive(t *testing.T) {
	a := Key(value.List{value.Int(1), value.Int(2)})
	b := Key(value.List{value.Int(2), value.Int(1)})
	if a == b {
		t.Fatal("lists with a different element order should have different keys")
	}
}

func TestKeyIDDeterministic(t *testing.T) {
	eid := id.New()
	if Key(value.IdVal(eid)) != Key(value.IdVal(eid)) {
		t.Fatal("Key(IdVal) should be deterministic for the same id")
	}
}
