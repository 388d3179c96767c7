package value

import "testing"

func TestKindString(t *testing.T) {
	if got := KInt.String(); got != "Int" {
		t.Fatalf("KInt.String() = %q, want Int", got)
	}
	if got := Kind(255).String(); got != "Unknown" {
		t.Fatalf("Kind(255).String() = %q, want Unknown", got)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		v    Value
		want ValueType
	}{
		{Int(1), TypeInt()},
		{UInt(1), TypeUInt()},
		{Float(1.5), TypeFloat()},
		{String("x"), TypeString()},
		{Bool(true), TypeBool()},
		{Unit{}, TypeUnit()},
	}
	for _, tc := range tests {
		if got := TypeOf(tc.v); !got.Equal(tc.want) {
			t.Errorf("TypeOf(%#v) = %s, want %s", tc.v, got, tc.want)
		}
	}
}

func TestValueTypeEqualScalars(t *testing.T) {
	if !TypeInt().Equal(TypeInt()) {
		t.Fatal("TypeInt() should equal itself")
	}
	if TypeInt().Equal(TypeString()) {
		t.Fatal("TypeInt() should not equal TypeString()")
	}
}

func TestValueTypeEqualList(t *testing.T) {
	a := TypeList(TypeInt())
	b := TypeList(TypeInt())
	c := TypeList(TypeString())
	if !a.Equal(b) {
		t.Fatal("List<Int> should equal List<Int>")
	}
	if a.Equal(c) {
		t.Fatal("List<Int> should not equal List<String>")
	}
}

func TestValueTypeEqualUnion(t *testing.T) {
	a := TypeUnion(TypeInt(), TypeString())
	b := TypeUnion(TypeInt(), TypeString())
	c := TypeUnion(TypeInt())
	if !a.Equal(b) {
		t.Fatal("identical unions should be equal")
	}
	if a.Equal(c) {
		t.Fatal("unions of differing arity should not be equal")
	}
}

func TestValueTypeEqualRefConstrained(t *testing.T) {
	a := TypeRefConstrained("person", "company")
	b := TypeRefConstrained("person", "company")
	c := TypeRefConstrained("person")
	if !a.Equal(b) {
		t.Fatal("RefConstrained with the same classes should be equal")
	}
	if a.Equal(c) {
		t.Fatal("RefConstrained with different class sets should not be equal")
	}
}

func TestValueTypeEqualConst(t *testing.T) {
	a := TypeConst(Int(5))
	b := TypeConst(Int(5))
	c := TypeConst(Int(6))
	if !a.Equal(b) {
		t.Fatal("Const(5) should equal Const(5)")
	}
	if a.Equal(c) {
		t.Fatal("Const(5) should not equal Const(6)")
	}
}

func TestValueTypeString(t *testing.T) {
	if got := TypeList(TypeInt()).String(); got != "List<Int>" {
		t.Fatalf("TypeList(TypeInt()).String() = %q", got)
	}
	if got := TypeConst(Int(5)).String(); got != "Const(5)" {
		t.Fatalf("TypeConst(5).String() = %q", got)
	}
}
