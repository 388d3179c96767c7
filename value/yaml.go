package value

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yamlValueType is ValueType's on-disk form for schema-as-code migration
// authoring (spec §2.3/§3): a leaf kind is written as a bare string
// ("Int", "String", ...); a composite kind as a mapping with a "kind"
// discriminator and the fields relevant to that kind.
type yamlValueType struct {
	Kind     string               `yaml:"kind"`
	Elem     *ValueType           `yaml:"elem,omitempty"`
	MapKey   *ValueType           `yaml:"map_key,omitempty"`
	MapVal   *ValueType           `yaml:"map_val,omitempty"`
	Variants []ValueType          `yaml:"variants,omitempty"`
	Fields   map[string]ValueType `yaml:"fields,omitempty"`
	Classes  []string             `yaml:"classes,omitempty"`
	Const    string               `yaml:"const,omitempty"`
}

// MarshalYAML renders t per yamlValueType's scheme above.
func (t ValueType) MarshalYAML() (any, error) {
	switch t.Kind {
	case KList:
		return yamlValueType{Kind: "List", Elem: t.Elem}, nil
	case KMap:
		return yamlValueType{Kind: "Map", MapKey: t.MapKey, MapVal: t.MapVal}, nil
	case KUnion:
		return yamlValueType{Kind: "Union", Variants: t.Variants}, nil
	case KObject:
		return yamlValueType{Kind: "Object", Fields: t.Fields}, nil
	case KRefConstrained:
		return yamlValueType{Kind: "RefConstrained", Classes: t.Classes}, nil
	case KIdent:
		return yamlValueType{Kind: "Ident", Classes: t.Classes}, nil
	case KConst:
		return yamlValueType{Kind: "Const", Const: t.Const.String()}, nil
	default:
		return t.Kind.String(), nil
	}
}

// UnmarshalYAML parses either a bare leaf-kind string or a composite
// mapping back into t.
func (t *ValueType) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		k, err := kindFromString(name)
		if err != nil {
			return err
		}
		*t = ValueType{Kind: k}
		return nil
	}

	var y yamlValueType
	if err := node.Decode(&y); err != nil {
		return err
	}
	k, err := kindFromString(y.Kind)
	if err != nil {
		return err
	}
	switch k {
	case KList:
		if y.Elem == nil {
			return fmt.Errorf("value: List ValueType missing elem")
		}
		*t = TypeList(*y.Elem)
	case KMap:
		if y.MapKey == nil || y.MapVal == nil {
			return fmt.Errorf("value: Map ValueType missing map_key/map_val")
		}
		*t = TypeMap(*y.MapKey, *y.MapVal)
	case KUnion:
		*t = TypeUnion(y.Variants...)
	case KObject:
		*t = TypeObject(y.Fields)
	case KRefConstrained:
		*t = TypeRefConstrained(y.Classes...)
	case KIdent:
		*t = TypeIdent(y.Classes...)
	case KConst:
		v, err := constFromString(y.Const)
		if err != nil {
			return err
		}
		*t = TypeConst(v)
	default:
		*t = ValueType{Kind: k}
	}
	return nil
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "Any":
		return KAny, nil
	case "Unit":
		return KUnit, nil
	case "Bool":
		return KBool, nil
	case "Int":
		return KInt, nil
	case "UInt":
		return KUInt, nil
	case "Float":
		return KFloat, nil
	case "String":
		return KString, nil
	case "Bytes":
		return KBytes, nil
	case "List":
		return KList, nil
	case "Map":
		return KMap, nil
	case "Union":
		return KUnion, nil
	case "Object":
		return KObject, nil
	case "DateTime":
		return KDateTime, nil
	case "Url":
		return KUrl, nil
	case "Ref":
		return KRef, nil
	case "RefConstrained":
		return KRefConstrained, nil
	case "Const":
		return KConst, nil
	case "Ident":
		return KIdent, nil
	case "EmbeddedEntity":
		return KEmbeddedEntity, nil
	default:
		return 0, fmt.Errorf("value: unknown ValueType kind %q", s)
	}
}

// constFromString parses the scalar literal written for a Const
// ValueType's YAML form. Only the scalar variants (Bool/Int/Float/
// String) have an authoring form — a Const over a composite value must
// be built programmatically, not authored in YAML.
func constFromString(s string) (Value, error) {
	switch s {
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f), nil
	}
	return String(s), nil
}
