package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/factorlabs/factordb/id"
)

// Value is FactorDB's tagged value universe. Every stored attribute value,
// query literal and patch payload is a Value. Concrete variants are Unit,
// Bool, Int, UInt, Float, String, Bytes, List, Map and IdVal — mirroring
// the teacher's interface-based ast.Value sum type (one Go type per
// variant, a Compare/Equal/String trio on each).
type Value interface {
	// Compare returns -1, 0 or 1 comparing v to other under the total
	// order described in variantRank: Id < Unit < Bool < Numeric <
	// String < Bytes < List < Map, with Int/UInt/Float compared
	// numerically across variants.
	Compare(other Value) int
	Equal(other Value) bool
	String() string
	isValue()
}

// variantRank buckets a Value into its position in the cross-variant
// ordering. Numeric kinds (Int, UInt, Float) all share rank 3 and are
// compared against each other numerically rather than by declared type.
func variantRank(v Value) int {
	switch v.(type) {
	case IdVal:
		return 0
	case Unit:
		return 1
	case Bool:
		return 2
	case Int, UInt, Float:
		return 3
	case String:
		return 4
	case Bytes:
		return 5
	case List:
		return 6
	case Map:
		return 7
	default:
		return 8
	}
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case Int, UInt, Float:
		return true
	default:
		return false
	}
}

// asFloat converts a numeric Value to float64 for cross-numeric ordering.
func asFloat(v Value) float64 {
	switch x := v.(type) {
	case Int:
		return float64(x)
	case UInt:
		return float64(x)
	case Float:
		return float64(x)
	default:
		return math.NaN()
	}
}

// compareNumeric orders two numeric values, preferring exact integer
// comparison when both sides are integral so a large Int/UInt near the
// edge of float64 precision doesn't silently collide with its neighbor.
func compareNumeric(a, b Value) int {
	ai, aIsInt := a.(Int)
	au, aIsUInt := a.(UInt)
	bi, bIsInt := b.(Int)
	bu, bIsUInt := b.(UInt)

	switch {
	case aIsInt && bIsInt:
		return cmpInt64(int64(ai), int64(bi))
	case aIsUInt && bIsUInt:
		return cmpUint64(uint64(au), uint64(bu))
	case aIsInt && bIsUInt:
		if ai < 0 {
			return -1
		}
		return cmpUint64(uint64(ai), uint64(bu))
	case aIsUInt && bIsInt:
		if bi < 0 {
			return 1
		}
		return cmpUint64(uint64(au), uint64(bi))
	default:
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ---- Unit ----

// Unit is the singleton "no value" variant.
type Unit struct{}

func (Unit) isValue()                 {}
func (Unit) String() string           { return "Unit" }
func (Unit) Equal(o Value) bool       { _, ok := o.(Unit); return ok }
func (v Unit) Compare(o Value) int    { return compareCrossVariant(v, o) }

// ---- Bool ----

type Bool bool

func (Bool) isValue()       {}
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && b == ob
}
func (b Bool) Compare(o Value) int {
	if ob, ok := o.(Bool); ok {
		switch {
		case b == ob:
			return 0
		case !bool(b) && bool(ob):
			return -1
		default:
			return 1
		}
	}
	return compareCrossVariant(b, o)
}

// ---- Int / UInt / Float ----

type Int int64
type UInt uint64
type Float float64

func (Int) isValue()   {}
func (UInt) isValue()  {}
func (Float) isValue() {}

func (v Int) String() string   { return fmt.Sprintf("%d", int64(v)) }
func (v UInt) String() string  { return fmt.Sprintf("%d", uint64(v)) }
func (v Float) String() string { return fmt.Sprintf("%g", float64(v)) }

func (v Int) Equal(o Value) bool   { return isNumeric(o) && compareNumeric(v, o) == 0 }
func (v UInt) Equal(o Value) bool  { return isNumeric(o) && compareNumeric(v, o) == 0 }
func (v Float) Equal(o Value) bool { return isNumeric(o) && compareNumeric(v, o) == 0 }

func (v Int) Compare(o Value) int   { return numericCompare(v, o) }
func (v UInt) Compare(o Value) int  { return numericCompare(v, o) }
func (v Float) Compare(o Value) int { return numericCompare(v, o) }

func numericCompare(v, o Value) int {
	if isNumeric(o) {
		return compareNumeric(v, o)
	}
	return compareCrossVariant(v, o)
}

// ---- String ----

type String string

func (String) isValue()           {}
func (s String) String() string   { return string(s) }
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && s == os
}
func (s String) Compare(o Value) int {
	if os, ok := o.(String); ok {
		return strings.Compare(string(s), string(os))
	}
	return compareCrossVariant(s, o)
}

// ---- Bytes ----

type Bytes []byte

func (Bytes) isValue()         {}
func (b Bytes) String() string { return "0x" + hex.EncodeToString(b) }
func (b Bytes) Equal(o Value) bool {
	ob, ok := o.(Bytes)
	if !ok || len(b) != len(ob) {
		return false
	}
	for i := range b {
		if b[i] != ob[i] {
			return false
		}
	}
	return true
}
func (b Bytes) Compare(o Value) int {
	if ob, ok := o.(Bytes); ok {
		n := len(b)
		if len(ob) < n {
			n = len(ob)
		}
		for i := 0; i < n; i++ {
			if b[i] != ob[i] {
				if b[i] < ob[i] {
					return -1
				}
				return 1
			}
		}
		return cmpInt64(int64(len(b)), int64(len(ob)))
	}
	return compareCrossVariant(b, o)
}

// ---- List ----

type List []Value

func (List) isValue() {}
func (l List) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l List) Equal(o Value) bool {
	ol, ok := o.(List)
	if !ok || len(l) != len(ol) {
		return false
	}
	for i := range l {
		if !l[i].Equal(ol[i]) {
			return false
		}
	}
	return true
}
func (l List) Compare(o Value) int {
	if ol, ok := o.(List); ok {
		n := len(l)
		if len(ol) < n {
			n = len(ol)
		}
		for i := 0; i < n; i++ {
			if c := l[i].Compare(ol[i]); c != 0 {
				return c
			}
		}
		return cmpInt64(int64(len(l)), int64(len(ol)))
	}
	return compareCrossVariant(l, o)
}

// ---- Map ----

// MapEntry is one key/value pair of a Map value. Map preserves insertion
// order for String() and iteration but Compare/Equal treat it as an
// unordered association, matching ValueMap<Value> semantics.
type MapEntry struct {
	Key Value
	Val Value
}

type Map []MapEntry

func (Map) isValue() {}

func (m Map) String() string {
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = e.Key.String() + ": " + e.Val.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m Map) get(k Value) (Value, bool) {
	for _, e := range m {
		if e.Key.Equal(k) {
			return e.Val, true
		}
	}
	return nil, false
}

func (m Map) Equal(o Value) bool {
	om, ok := o.(Map)
	if !ok || len(m) != len(om) {
		return false
	}
	for _, e := range m {
		ov, ok := om.get(e.Key)
		if !ok || !e.Val.Equal(ov) {
			return false
		}
	}
	return true
}

func (m Map) Compare(o Value) int {
	om, ok := o.(Map)
	if !ok {
		return compareCrossVariant(m, o)
	}
	sa, sb := sortedEntries(m), sortedEntries(om)
	n := len(sa)
	if len(sb) < n {
		n = len(sb)
	}
	for i := 0; i < n; i++ {
		if c := sa[i].Key.Compare(sb[i].Key); c != 0 {
			return c
		}
		if c := sa[i].Val.Compare(sb[i].Val); c != 0 {
			return c
		}
	}
	return cmpInt64(int64(len(sa)), int64(len(sb)))
}

func sortedEntries(m Map) []MapEntry {
	out := make([]MapEntry, len(m))
	copy(out, m)
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Compare(out[j].Key) < 0 })
	return out
}

// ---- Id ----

// IdVal wraps an id.Id as a Value, the sole way an Id appears in the
// value universe (as opposed to schema/registry metadata).
type IdVal id.Id

func (IdVal) isValue()           {}
func (v IdVal) String() string   { return id.Id(v).String() }
func (v IdVal) Equal(o Value) bool {
	ov, ok := o.(IdVal)
	return ok && id.Id(v) == id.Id(ov)
}
func (v IdVal) Compare(o Value) int {
	if ov, ok := o.(IdVal); ok {
		return id.Id(v).Compare(id.Id(ov))
	}
	return compareCrossVariant(v, o)
}

// compareCrossVariant orders v against o purely by variantRank, for pairs
// that aren't both numeric and aren't the same variant.
func compareCrossVariant(v, o Value) int {
	rv, ro := variantRank(v), variantRank(o)
	if rv == ro && rv == 3 {
		return compareNumeric(v, o)
	}
	return cmpInt64(int64(rv), int64(ro))
}
