package table

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/tdiff/tdiff/pkg/errors"
)

// Schema names the columns that give rows their business identity.
//
// Identity columns partition the table into groups. The merge key is the
// sub-tuple of identity columns that lines rows up across versions within
// a group. The version column carries the ordinal that orders a group's
// versions. Every remaining column is payload.
type Schema struct {
	// Version is the column holding the version ordinal.
	Version string `yaml:"version"`

	// Identity is the ordered list of columns forming the group identity.
	Identity []string `yaml:"identity"`

	// MergeKey is the subset of identity columns used for row
	// correspondence across versions.
	MergeKey []string `yaml:"merge_key"`
}

// LoadSchema reads a schema definition from a YAML file and validates it.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("schema", "unable to read schema file", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewConfigError("schema", "unable to parse schema file", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the internal consistency of the schema: a version
// column, at least one identity column, and a non-empty merge key that is
// a subset of the identity columns.
func (s *Schema) Validate() error {
	if s.Version == "" {
		return errors.NewSchemaError("version", "version column is required")
	}
	if len(s.Identity) == 0 {
		return errors.NewSchemaError("identity", "at least one identity column is required")
	}
	if len(s.MergeKey) == 0 {
		return errors.NewSchemaError("merge_key", "at least one merge-key column is required")
	}

	identity := make(map[string]bool, len(s.Identity))
	for _, c := range s.Identity {
		if c == s.Version {
			return errors.NewSchemaError(c, "version column cannot participate in identity")
		}
		if identity[c] {
			return errors.NewSchemaError(c, "duplicate identity column")
		}
		identity[c] = true
	}

	for _, c := range s.MergeKey {
		if !identity[c] {
			return errors.NewSchemaError(c, "merge-key column must be an identity column")
		}
	}

	return nil
}

// Payload returns the columns of t that are neither identity nor version
// columns, in their original table order.
func (s *Schema) Payload(t *Table) []string {
	skip := make(map[string]bool, len(s.Identity)+1)
	skip[s.Version] = true
	for _, c := range s.Identity {
		skip[c] = true
	}

	var payload []string
	for _, c := range t.Columns {
		if !skip[c] {
			payload = append(payload, c)
		}
	}
	return payload
}
