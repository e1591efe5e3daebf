// Package scenario loads threat scenario definitions from YAML files and
// validates the fields artifact generation depends on.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// File pairs a loaded scenario with the path it was read from.
type File struct {
	Path     string
	Scenario schemas.ThreatScenario
}

// Load reads, parses, and validates a single scenario file.
func Load(path string) (schemas.ThreatScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemas.ThreatScenario{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var scenario schemas.ThreatScenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return schemas.ThreatScenario{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := Validate(scenario); err != nil {
		return schemas.ThreatScenario{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return scenario, nil
}

// LoadDir loads every .yaml/.yml file in dir, in lexical filename order. Any
// file that fails to parse or validate aborts the whole load, and a directory
// with no scenario files is an error.
func LoadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		scenario, err := Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: path, Scenario: scenario})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files (.yaml or .yml) found in %s", dir)
	}
	return files, nil
}

// Validate checks the fields every artifact builder depends on. Descriptions,
// indicators, and MITRE references are optional.
func Validate(s schemas.ThreatScenario) error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("missing required field 'name'")
	}
	if s.Category == "" {
		return errors.New("missing required field 'category'")
	}
	if !schemas.IsValidThreatCategory(s.Category) {
		return fmt.Errorf("unknown category %q", s.Category)
	}
	if s.Severity == "" {
		return errors.New("missing required field 'severity'")
	}
	if !schemas.IsValidSeverity(s.Severity) {
		return fmt.Errorf("unknown severity %q", s.Severity)
	}
	return nil
}
