// Package value implements FactorDB's tagged value universe: the Value sum
// type, its total ordering, the ValueType descriptor that drives coercion
// and referential-integrity checks, and the coerce operation between them.
package value

import "fmt"

// Kind discriminates the variants of ValueType.
type Kind uint8

const (
	KAny Kind = iota
	KUnit
	KBool
	KInt
	KUInt
	KFloat
	KString
	KBytes
	KList
	KMap
	KUnion
	KObject
	KDateTime
	KUrl
	KRef
	KRefConstrained
	KConst
	KIdent
	KEmbeddedEntity
)

func (k Kind) String() string {
	switch k {
	case KAny:
		return "Any"
	case KUnit:
		return "Unit"
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KUInt:
		return "UInt"
	case KFloat:
		return "Float"
	case KString:
		return "String"
	case KBytes:
		return "Bytes"
	case KList:
		return "List"
	case KMap:
		return "Map"
	case KUnion:
		return "Union"
	case KObject:
		return "Object"
	case KDateTime:
		return "DateTime"
	case KUrl:
		return "Url"
	case KRef:
		return "Ref"
	case KRefConstrained:
		return "RefConstrained"
	case KConst:
		return "Const"
	case KIdent:
		return "Ident"
	case KEmbeddedEntity:
		return "EmbeddedEntity"
	default:
		return "Unknown"
	}
}

// ValueType describes the permitted shape of a Value. It drives coercion
// (coerce) and referential-integrity checking by the registry. Most kinds
// carry no payload; List, Map, Union, Object, RefConstrained, Const and
// Ident carry the fields below.
type ValueType struct {
	Kind Kind

	// List
	Elem *ValueType

	// Map
	MapKey *ValueType
	MapVal *ValueType

	// Union
	Variants []ValueType

	// Object: field name -> declared type.
	Fields map[string]ValueType

	// RefConstrained, Ident: allowed class idents.
	Classes []string

	// Const: the single permitted value.
	Const Value
}

// Constructors for the leaf and composite ValueType kinds. Named with a
// Type prefix so they don't collide with the Value variant constructors
// of the same concept (Bool, Int, List, Map, ...) in this package.
func TypeAny() ValueType          { return ValueType{Kind: KAny} }
func TypeUnit() ValueType         { return ValueType{Kind: KUnit} }
func TypeBool() ValueType         { return ValueType{Kind: KBool} }
func TypeInt() ValueType          { return ValueType{Kind: KInt} }
func TypeUInt() ValueType         { return ValueType{Kind: KUInt} }
func TypeFloat() ValueType        { return ValueType{Kind: KFloat} }
func TypeString() ValueType       { return ValueType{Kind: KString} }
func TypeBytes() ValueType        { return ValueType{Kind: KBytes} }
func TypeDateTime() ValueType     { return ValueType{Kind: KDateTime} }
func TypeUrl() ValueType          { return ValueType{Kind: KUrl} }
func TypeRef() ValueType          { return ValueType{Kind: KRef} }
func TypeEmbeddedEntity() ValueType { return ValueType{Kind: KEmbeddedEntity} }

// TypeList builds a List<elem> ValueType.
func TypeList(elem ValueType) ValueType { return ValueType{Kind: KList, Elem: &elem} }

// TypeMap builds a Map{k,v} ValueType.
func TypeMap(k, v ValueType) ValueType { return ValueType{Kind: KMap, MapKey: &k, MapVal: &v} }

// TypeUnion builds a Union[variants] ValueType.
func TypeUnion(variants ...ValueType) ValueType { return ValueType{Kind: KUnion, Variants: variants} }

// TypeObject builds an Object{fields} ValueType.
func TypeObject(fields map[string]ValueType) ValueType {
	return ValueType{Kind: KObject, Fields: fields}
}

// TypeRefConstrained builds a Ref restricted to the given class idents.
func TypeRefConstrained(classes ...string) ValueType {
	return ValueType{Kind: KRefConstrained, Classes: classes}
}

// TypeIdent builds an Ident{classes} ValueType.
func TypeIdent(classes ...string) ValueType { return ValueType{Kind: KIdent, Classes: classes} }

// TypeConst builds a Const(value) ValueType.
func TypeConst(v Value) ValueType { return ValueType{Kind: KConst, Const: v} }

// Equal reports whether two ValueTypes denote the same constraint.
func (t ValueType) Equal(o ValueType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KList:
		return t.Elem.Equal(*o.Elem)
	case KMap:
		return t.MapKey.Equal(*o.MapKey) && t.MapVal.Equal(*o.MapVal)
	case KUnion:
		if len(t.Variants) != len(o.Variants) {
			return false
		}
		for i := range t.Variants {
			if !t.Variants[i].Equal(o.Variants[i]) {
				return false
			}
		}
		return true
	case KObject:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for k, v := range t.Fields {
			ov, ok := o.Fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	case KRefConstrained, KIdent:
		if len(t.Classes) != len(o.Classes) {
			return false
		}
		for i := range t.Classes {
			if t.Classes[i] != o.Classes[i] {
				return false
			}
		}
		return true
	case KConst:
		return t.Const.Equal(o.Const)
	default:
		return true
	}
}

func (t ValueType) String() string {
	switch t.Kind {
	case KList:
		return fmt.Sprintf("List<%s>", t.Elem)
	case KMap:
		return fmt.Sprintf("Map{%s,%s}", t.MapKey, t.MapVal)
	case KUnion:
		return fmt.Sprintf("Union%v", t.Variants)
	case KObject:
		return fmt.Sprintf("Object%v", t.Fields)
	case KRefConstrained:
		return fmt.Sprintf("RefConstrained%v", t.Classes)
	case KIdent:
		return fmt.Sprintf("Ident%v", t.Classes)
	case KConst:
		return fmt.Sprintf("Const(%s)", t.Const)
	default:
		return t.Kind.String()
	}
}

// TypeOf computes the ValueType of v, mirroring ValueType::for_value. List
// and Map values report their element/key/value constraint as Any — the
// precise declared shape lives in the attribute's ValueType, not the value
// itself.
func TypeOf(v Value) ValueType {
	switch v.(type) {
	case Unit:
		return TypeUnit()
	case Bool:
		return TypeBool()
	case Int:
		return TypeInt()
	case UInt:
		return TypeUInt()
	case Float:
		return TypeFloat()
	case String:
		return TypeString()
	case Bytes:
		return TypeBytes()
	case List:
		return TypeList(TypeAny())
	case Map:
		return TypeMap(TypeAny(), TypeAny())
	case IdVal:
		return TypeRef()
	default:
		return TypeAny()
	}
}
