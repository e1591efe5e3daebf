// Package generator turns a registered dataset schema and a threat scenario
// into the four POV content artifacts: correlation rule, response playbook,
// alert layout, and monitoring dashboard. Every builder is deterministic
// apart from the correlation rule's generated identifier.
package generator

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/registry"
)

// Options tune presentation details of generated artifacts.
type Options struct {
	// MaxLayoutFields caps the alert layout's expandable details section.
	// Values below one fall back to the default of 10.
	MaxLayoutFields int
}

const defaultMaxLayoutFields = 10

// Generator builds POV content artifacts from schemas held in a registry.
type Generator struct {
	registry *registry.Registry
	logger   *zap.Logger
	opts     Options
}

// New creates a Generator bound to reg. A nil logger is replaced with a
// no-op logger.
func New(reg *registry.Registry, logger *zap.Logger, opts Options) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxLayoutFields < 1 {
		opts.MaxLayoutFields = defaultMaxLayoutFields
	}
	return &Generator{
		registry: reg,
		logger:   logger.Named("generator"),
		opts:     opts,
	}
}

// Generate builds the artifact of the given kind for scenario against the
// schema registered under key. An unregistered key surfaces as
// *registry.NotFoundError.
func (g *Generator) Generate(key string, scenario schemas.ThreatScenario, kind schemas.ArtifactKind) (schemas.GeneratedArtifact, error) {
	schema, err := g.registry.Lookup(key)
	if err != nil {
		return schemas.GeneratedArtifact{}, err
	}
	return g.build(key, schema, scenario, kind)
}

// GenerateAll builds every artifact kind for scenario, in AllArtifactKinds
// order, resolving the schema once.
func (g *Generator) GenerateAll(key string, scenario schemas.ThreatScenario) ([]schemas.GeneratedArtifact, error) {
	schema, err := g.registry.Lookup(key)
	if err != nil {
		return nil, err
	}

	artifacts := make([]schemas.GeneratedArtifact, 0, len(schemas.AllArtifactKinds))
	for _, kind := range schemas.AllArtifactKinds {
		artifact, err := g.build(key, schema, scenario, kind)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func (g *Generator) build(key string, schema schemas.DatasetSchema, scenario schemas.ThreatScenario, kind schemas.ArtifactKind) (schemas.GeneratedArtifact, error) {
	g.logger.Debug("Building artifact",
		zap.String("schema_key", key),
		zap.String("scenario", scenario.Name),
		zap.String("kind", string(kind)),
	)

	switch kind {
	case schemas.ArtifactRule:
		return g.buildRule(key, schema, scenario)
	case schemas.ArtifactPlaybook:
		return g.buildPlaybook(key, schema, scenario)
	case schemas.ArtifactLayout:
		return g.buildLayout(key, schema, scenario)
	case schemas.ArtifactDashboard:
		return g.buildDashboard(key, schema, scenario)
	default:
		return schemas.GeneratedArtifact{}, fmt.Errorf("unsupported artifact kind: %q", kind)
	}
}

// slugSanitizer collapses every run of characters outside [a-z0-9] into one
// underscore.
var slugSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases s and reduces it to an underscore-separated slug
// suitable for filenames and identifiers.
func slugify(s string) string {
	slug := slugSanitizer.ReplaceAllString(strings.ToLower(s), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// artifactTitle derives the artifact's title, which doubles as its output
// filename stem: <scenario slug>_<schema key>_<kind>.
func artifactTitle(scenarioName, key string, kind schemas.ArtifactKind) string {
	return fmt.Sprintf("%s_%s_%s", slugify(scenarioName), key, kind)
}
