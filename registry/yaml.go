package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/factorlabs/factordb/schema"
	"github.com/factorlabs/factordb/value"
)

// yamlMigration and yamlAction are Migration's on-disk form for
// schema-as-code authoring (spec §2.3/§3): each SchemaAction variant
// becomes a mapping with a "kind" discriminator and that variant's
// fields, omitting the registry-assigned bookkeeping (ID, LocalID,
// Deleted) an author never supplies by hand.
type yamlMigration struct {
	Name    string       `yaml:"name"`
	Actions []yamlAction `yaml:"actions"`
}

type yamlAction struct {
	Kind string `yaml:"kind"`

	Ident       string           `yaml:"ident,omitempty"`
	Title       string           `yaml:"title,omitempty"`
	Description string           `yaml:"description,omitempty"`
	ValueType   *value.ValueType `yaml:"value_type,omitempty"`
	Unique      bool             `yaml:"unique,omitempty"`
	Index       bool             `yaml:"index,omitempty"`
	Strict      bool             `yaml:"strict,omitempty"`

	Attributes []yamlClassAttribute `yaml:"attributes,omitempty"`
	Extends    []string             `yaml:"extends,omitempty"`

	IndexAttributes []string `yaml:"index_attributes,omitempty"`
}

type yamlClassAttribute struct {
	Attribute string `yaml:"attribute"`
	Required  bool   `yaml:"required,omitempty"`
}

// MarshalYAML renders m per yamlMigration's scheme above.
func (m Migration) MarshalYAML() (any, error) {
	ym := yamlMigration{Name: m.Name, Actions: make([]yamlAction, 0, len(m.Actions))}
	for _, a := range m.Actions {
		ya, err := actionToYAML(a)
		if err != nil {
			return nil, err
		}
		ym.Actions = append(ym.Actions, ya)
	}
	return ym, nil
}

// UnmarshalYAML parses m's actions back from their "kind"-discriminated
// mapping form.
func (m *Migration) UnmarshalYAML(node *yaml.Node) error {
	var ym yamlMigration
	if err := node.Decode(&ym); err != nil {
		return err
	}
	m.Name = ym.Name
	m.Actions = make([]SchemaAction, 0, len(ym.Actions))
	for _, ya := range ym.Actions {
		a, err := yamlToAction(ya)
		if err != nil {
			return err
		}
		m.Actions = append(m.Actions, a)
	}
	return nil
}

func actionToYAML(a SchemaAction) (yamlAction, error) {
	switch x := a.(type) {
	case CreateAttribute:
		vt := x.Attribute.ValueType
		return yamlAction{
			Kind:        "create_attribute",
			Ident:       x.Attribute.Ident,
			Title:       x.Attribute.Title,
			Description: x.Attribute.Description,
			ValueType:   &vt,
			Unique:      x.Attribute.Unique,
			Index:       x.Attribute.Index,
			Strict:      x.Attribute.Strict,
		}, nil
	case CreateClass:
		attrs := make([]yamlClassAttribute, len(x.Class.Attributes))
		for i, ca := range x.Class.Attributes {
			attrs[i] = yamlClassAttribute{Attribute: ca.Attribute, Required: ca.Required}
		}
		return yamlAction{
			Kind:        "create_class",
			Ident:       x.Class.Ident,
			Title:       x.Class.Title,
			Description: x.Class.Description,
			Attributes:  attrs,
			Extends:     x.Class.Extends,
			Strict:      x.Class.Strict,
		}, nil
	case CreateIndex:
		return yamlAction{
			Kind:            "create_index",
			Ident:           x.Index.Ident,
			IndexAttributes: x.Index.Attributes,
			Unique:          x.Index.Unique,
		}, nil
	case DeleteAttribute:
		return yamlAction{Kind: "delete_attribute", Ident: x.Ident}, nil
	case DeleteClass:
		return yamlAction{Kind: "delete_class", Ident: x.Ident}, nil
	case DeleteIndex:
		return yamlAction{Kind: "delete_index", Ident: x.Ident}, nil
	case AttributeChangeType:
		vt := x.NewType.ValueType
		return yamlAction{Kind: "attribute_change_type", Ident: x.Ident, ValueType: &vt}, nil
	default:
		return yamlAction{}, fmt.Errorf("registry: %T has no YAML form", a)
	}
}

func yamlToAction(ya yamlAction) (SchemaAction, error) {
	var vt value.ValueType
	if ya.ValueType != nil {
		vt = *ya.ValueType
	}
	switch ya.Kind {
	case "create_attribute":
		return CreateAttribute{Attribute: schema.Attribute{
			Ident:       ya.Ident,
			Title:       ya.Title,
			Description: ya.Description,
			ValueType:   vt,
			Unique:      ya.Unique,
			Index:       ya.Index,
			Strict:      ya.Strict,
		}}, nil
	case "create_class":
		attrs := make([]schema.ClassAttribute, len(ya.Attributes))
		for i, a := range ya.Attributes {
			attrs[i] = schema.ClassAttribute{Attribute: a.Attribute, Required: a.Required}
		}
		return CreateClass{Class: schema.Class{
			Ident:       ya.Ident,
			Title:       ya.Title,
			Description: ya.Description,
			Attributes:  attrs,
			Extends:     ya.Extends,
			Strict:      ya.Strict,
		}}, nil
	case "create_index":
		return CreateIndex{Index: schema.Index{Ident: ya.Ident, Attributes: ya.IndexAttributes, Unique: ya.Unique}}, nil
	case "delete_attribute":
		return DeleteAttribute{Ident: ya.Ident}, nil
	case "delete_class":
		return DeleteClass{Ident: ya.Ident}, nil
	case "delete_index":
		return DeleteIndex{Ident: ya.Ident}, nil
	case "attribute_change_type":
		return AttributeChangeType{Ident: ya.Ident, NewType: schema.Attribute{ValueType: vt}}, nil
	default:
		return nil, fmt.Errorf("registry: unknown migration action kind %q", ya.Kind)
	}
}
