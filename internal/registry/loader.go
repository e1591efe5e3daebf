package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// schemaFile is the on-disk YAML layout for a custom schema definition. The
// key names the registry slot; the remaining document is the schema itself.
type schemaFile struct {
	Key    string                `yaml:"key"`
	Schema schemas.DatasetSchema `yaml:",inline"`
}

// LoadFile parses and validates one schema definition file. The returned key
// is the registry slot declared in the file.
func LoadFile(path string) (string, schemas.DatasetSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", schemas.DatasetSchema{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return "", schemas.DatasetSchema{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := validateSchemaFile(&sf, filepath.Base(path)); err != nil {
		return "", schemas.DatasetSchema{}, err
	}
	return sf.Key, sf.Schema, nil
}

// RegisterFile loads the schema definition at path and registers it,
// returning the key it was stored under. An existing schema under the same
// key is overwritten.
func (r *Registry) RegisterFile(path string) (string, error) {
	key, schema, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	r.Register(key, schema)
	return key, nil
}

func validateSchemaFile(sf *schemaFile, filename string) error {
	if sf.Key == "" {
		return fmt.Errorf("%s: missing required field 'key'", filename)
	}
	if sf.Schema.Vendor == "" {
		return fmt.Errorf("%s: missing required field 'vendor'", filename)
	}
	if sf.Schema.DatasetName == "" {
		return fmt.Errorf("%s: missing required field 'dataset_name'", filename)
	}
	if sf.Schema.Category == "" {
		return fmt.Errorf("%s: missing required field 'category'", filename)
	}
	if !schemas.IsValidThreatCategory(sf.Schema.Category) {
		return fmt.Errorf("%s: unknown category %q", filename, sf.Schema.Category)
	}
	if len(sf.Schema.Fields) == 0 {
		return fmt.Errorf("%s: schema must declare at least one field", filename)
	}
	for i, f := range sf.Schema.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field[%d]: missing name", filename, i)
		}
		if f.Type == "" {
			return fmt.Errorf("%s: field[%d] %q: missing type", filename, i, f.Name)
		}
		if f.Role != "" && !schemas.IsValidFieldRole(f.Role) {
			return fmt.Errorf("%s: field[%d] %q: unknown role %q", filename, i, f.Name, f.Role)
		}
	}
	return nil
}
