package value

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func roundTripValueType(t *testing.T, vt ValueType) ValueType {
	t.Helper()
	b, err := yaml.Marshal(vt)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out ValueType
	if err := yaml.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal(%s): %v", b, err)
	}
	return out
}

func TestValueTypeYAMLRoundTrip(t *testing.T) {
	cases := []ValueType{
		TypeInt(),
		TypeString(),
		TypeList(TypeString()),
		TypeMap(TypeString(), TypeInt()),
		TypeUnion(TypeInt(), TypeString()),
		TypeObject(map[string]ValueType{"x": TypeInt()}),
		TypeRefConstrained("person", "org"),
		TypeIdent("person"),
		TypeConst(Int(42)),
	}
	for _, vt := range cases {
		t.Run(vt.String(), func(t *testing.T) {
			got := roundTripValueType(t, vt)
			if !got.Equal(vt) {
				t.Errorf("round-trip = %s, want %s", got, vt)
			}
		})
	}
}
