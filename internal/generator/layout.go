package generator

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// buildLayout assembles the analyst-facing alert layout: one summary row of
// scenario context and one expandable section binding schema fields, capped
// at the configured maximum.
func (g *Generator) buildLayout(key string, schema schemas.DatasetSchema, scenario schemas.ThreatScenario) (schemas.GeneratedArtifact, error) {
	summary := schemas.LayoutSection{
		Title: "Alert Summary",
		Type:  "summary",
		Items: []schemas.LayoutItem{
			{Label: "Severity", Value: string(effectiveSeverity(scenario.Severity))},
			{Label: "Vendor", Value: schema.Vendor},
			{Label: "Dataset", Value: schema.DatasetName},
			{Label: "MITRE ATT&CK", Value: strings.Join(scenario.MitreAttack, ", ")},
		},
	}

	shown := schema.Fields
	if len(shown) > g.opts.MaxLayoutFields {
		shown = shown[:g.opts.MaxLayoutFields]
	}
	items := make([]schemas.LayoutItem, 0, len(shown))
	for _, f := range shown {
		items = append(items, schemas.LayoutItem{
			Label:     f.Name,
			FieldName: f.Name,
			Hint:      fieldHint(f),
		})
	}
	details := schemas.LayoutSection{
		Title:      "Event Details",
		Type:       "fields",
		Expandable: true,
		Items:      items,
	}

	layout := schemas.AlertLayout{
		Name:        scenario.Name + " Alert Layout",
		Description: fmt.Sprintf("Analyst view for %q alerts on %s data.", scenario.Name, schema.Vendor),
		Sections:    []schemas.LayoutSection{summary, details},
	}

	content, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return schemas.GeneratedArtifact{}, fmt.Errorf("failed to serialize alert layout %q: %w", layout.Name, err)
	}

	return schemas.GeneratedArtifact{
		Kind:    schemas.ArtifactLayout,
		Title:   artifactTitle(scenario.Name, key, schemas.ArtifactLayout),
		Content: string(content),
		Summary: layoutSummary(schema, len(items)),
	}, nil
}

// fieldHint surfaces a sample value when the schema ships one, otherwise the
// field's description.
func fieldHint(f schemas.DatasetField) string {
	if len(f.SampleValues) > 0 {
		return fmt.Sprintf("e.g. %s", f.SampleValues[0])
	}
	return f.Description
}

// layoutSummary reports what the layout builder produced. Entries are
// informational acknowledgements, not computed guarantees.
func layoutSummary(schema schemas.DatasetSchema, fieldCount int) map[string]string {
	return map[string]string{
		"sections": "✓ Summary and expandable details sections generated",
		"fields":   fmt.Sprintf("✓ %d of %d schema fields exposed in the details section", fieldCount, len(schema.Fields)),
		"context":  fmt.Sprintf("✓ Summary row carries severity, vendor and %s dataset context", schema.DatasetName),
	}
}
