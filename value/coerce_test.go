package value

import (
	"testing"

	"github.com/factorlabs/factordb/id"
)

func TestCoerceIntWidening(t *testing.T) {
	got, err := Coerce(UInt(5), TypeInt())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != Int(5) {
		t.Fatalf("got %v, want Int(5)", got)
	}
}

func TestCoerceFloatToIntLossless(t *testing.T) {
	got, err := Coerce(Float(5.0), TypeInt())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != Int(5) {
		t.Fatalf("got %v, want Int(5)", got)
	}
}

func TestCoerceFloatToIntLossyFails(t *testing.T) {
	if _, err := Coerce(Float(5.5), TypeInt()); err == nil {
		t.Fatal("expected an error coercing a fractional Float to Int")
	}
}

func TestCoerceNegativeToUIntFails(t *testing.T) {
	if _, err := Coerce(Int(-1), TypeUInt()); err == nil {
		t.Fatal("expected an error coercing a negative Int to UInt")
	}
}

func TestCoerceStringToInt(t *testing.T) {
	got, err := Coerce(String("42"), TypeInt())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != Int(42) {
		t.Fatalf("got %v, want Int(42)", got)
	}
}

func TestCoerceStringToIntInvalid(t *testing.T) {
	if _, err := Coerce(String("not a number"), TypeInt()); err == nil {
		t.Fatal("expected an error coercing a non-numeric string to Int")
	}
}

func TestCoerceScalarToListSingleton(t *testing.T) {
	got, err := Coerce(Int(5), TypeList(TypeInt()))
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	list, ok := got.(List)
	if !ok || len(list) != 1 || list[0] != Int(5) {
		t.Fatalf("got %#v, want List{Int(5)}", got)
	}
}

func TestCoerceListElementFailureReportsPath(t *testing.T) {
	_, err := Coerce(List{Int(1), String("not a number")}, TypeList(TypeInt()))
	if err == nil {
		t.Fatal("expected an error coercing an invalid list element")
	}
	ce, ok := err.(*CoercionError)
	if !ok {
		t.Fatalf("err = %T, want *CoercionError", err)
	}
	if len(ce.Path) != 1 {
		t.Fatalf("Path = %v, want a single index step", ce.Path)
	}
	if idx, ok := ce.Path[0].Index(); !ok || idx != 1 {
		t.Fatalf("Path[0] = %v, want index 1", ce.Path[0])
	}
}

func TestCoerceUnionTriesEachVariant(t *testing.T) {
	ty := TypeUnion(TypeInt(), TypeString())
	got, err := Coerce(String("hello"), ty)
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != String("hello") {
		t.Fatalf("got %v, want String(hello)", got)
	}
}

func TestCoerceUnionAllVariantsFail(t *testing.T) {
	ty := TypeUnion(TypeInt(), TypeBool())
	if _, err := Coerce(String("nope"), ty); err == nil {
		t.Fatal("expected an error when no union variant coerces")
	}
}

func TestCoerceRefFromString(t *testing.T) {
	eid := id.New()
	got, err := Coerce(String(eid.String()), TypeRef())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != IdVal(eid) {
		t.Fatalf("got %v, want IdVal(%v)", got, eid)
	}
}

func TestCoerceRefFromInvalidString(t *testing.T) {
	if _, err := Coerce(String("not-an-id"), TypeRef()); err == nil {
		t.Fatal("expected an error coercing an invalid ref string")
	}
}

func TestCoerceIdentFromIdVal(t *testing.T) {
	eid := id.New()
	got, err := Coerce(IdVal(eid), TypeIdent())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if got != String(eid.String()) {
		t.Fatalf("got %v, want String(%s)", got, eid.String())
	}
}

func TestCoerceConstMatchesOnlyExactValue(t *testing.T) {
	ty := TypeConst(Int(5))
	if _, err := Coerce(Int(5), ty); err != nil {
		t.Fatalf("Coerce(5): %v", err)
	}
	if _, err := Coerce(Int(6), ty); err == nil {
		t.Fatal("expected an error coercing a value that doesn't match the const")
	}
}

func TestCoerceAnyAcceptsEverything(t *testing.T) {
	got, err := Coerce(Bytes{1, 2, 3}, TypeAny())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	if b, ok := got.(Bytes); !ok || len(b) != 3 {
		t.Fatalf("got %#v, want Bytes{1,2,3}", got)
	}
}

func TestCoerceBytesFromIntList(t *testing.T) {
	got, err := Coerce(List{Int(1), Int(2), UInt(3)}, TypeBytes())
	if err != nil {
		t.Fatalf("Coerce: %v", err)
	}
	b, ok := got.(Bytes)
	if !ok || string(b) != "\x01\x02\x03" {
		t.Fatalf("got %#v, want Bytes{1,2,3}", got)
	}
}

func TestCoerceBytesFromOutOfRangeIntFails(t *testing.T) {
	if _, err := Coerce(List{Int(300)}, TypeBytes()); err == nil {
		t.Fatal("expected an error coercing an out-of-range int to a byte")
	}
}

func TestCoercionErrorMessageIncludesPath(t *testing.T) {
	_, err := Coerce(List{String("nope")}, TypeList(TypeInt()))
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() should not be empty")
	}
}
