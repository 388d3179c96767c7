package logfacade

import (
	"gopkg.in/yaml.v3"

	"github.com/factorlabs/factordb/schema"
)

// yamlDbSchema is DbSchema's on-disk form: the same three catalog lists,
// tagged with explicit lowercase keys. These are the keys yaml.v3 would
// derive from the field names by default; the tags pin them so that
// renaming a Go field does not change the rendering.
type yamlDbSchema struct {
	Attributes []*schema.Attribute `yaml:"attributes"`
	Classes    []*schema.Class     `yaml:"classes"`
	Indexes    []*schema.Index     `yaml:"indexes"`
}

// MarshalYAML renders the catalog snapshot for export/backup — e.g.
// alongside ExportEvents output, or as a human-reviewable diff of schema
// state between two points in time.
func (s DbSchema) MarshalYAML() (any, error) {
	return yamlDbSchema{Attributes: s.Attributes, Classes: s.Classes, Indexes: s.Indexes}, nil
}

// UnmarshalYAML parses a DbSchema snapshot back. It does not apply
// anything to a live Registry — a snapshot is read-only, consistent with
// Facade.Schema's contract; authoring new schema state goes through
// Migration (see registry's YAML form) instead.
func (s *DbSchema) UnmarshalYAML(node *yaml.Node) error {
	var y yamlDbSchema
	if err := node.Decode(&y); err != nil {
		return err
	}
	s.Attributes = y.Attributes
	s.Classes = y.Classes
	s.Indexes = y.Indexes
	return nil
}
