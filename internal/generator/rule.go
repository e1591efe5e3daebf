package generator

import (
	"fmt"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// Canonical role names keyed in a correlation rule's field mapping.
const (
	mappingEventTime       = "event_time"
	mappingHostName        = "host_name"
	mappingUserIdentity    = "user_identity"
	mappingProcessActivity = "process_activity"
)

// BuildFieldMapping maps canonical role names to the schema fields serving
// them. Roles with no matching field are omitted rather than mapped to an
// empty name.
func BuildFieldMapping(fields []schemas.DatasetField) map[string]string {
	mapping := make(map[string]string)
	if f, ok := findRoleField(fields, schemas.RoleTimestamp); ok {
		mapping[mappingEventTime] = f.Name
	}
	if f, ok := findRoleField(fields, schemas.RoleHost); ok {
		mapping[mappingHostName] = f.Name
	}
	if f, ok := findRoleField(fields, schemas.RoleUser); ok {
		mapping[mappingUserIdentity] = f.Name
	}
	if f, ok := findRoleField(fields, schemas.RoleProcess); ok {
		mapping[mappingProcessActivity] = f.Name
	}
	return mapping
}

// buildRule assembles the correlation rule document and serializes it as
// indented JSON. The rule identifier is the only non-deterministic part of
// any generated artifact.
func (g *Generator) buildRule(key string, schema schemas.DatasetSchema, scenario schemas.ThreatScenario) (schemas.GeneratedArtifact, error) {
	rule := schemas.CorrelationRule{
		RuleID:          uuid.New().String(),
		Name:            scenario.Name,
		Description:     scenario.Description,
		Severity:        scenario.Severity,
		Vendor:          schema.Vendor,
		DatasetName:     schema.DatasetName,
		XQLQuery:        BuildQuery(schema, scenario, g.logger),
		MitreTechniques: scenario.MitreAttack,
		DataSources:     scenario.DataSources,
		FieldMapping:    BuildFieldMapping(schema.Fields),
		Schedule: schemas.RuleSchedule{
			Frequency:  "1h",
			TimeWindow: "1h",
		},
		Suppression: schemas.RuleSuppression{
			Enabled:  true,
			Duration: "24h",
			GroupBy:  suppressionGroupBy(schema.Fields),
		},
	}

	content, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return schemas.GeneratedArtifact{}, fmt.Errorf("failed to serialize correlation rule %q: %w", rule.Name, err)
	}

	return schemas.GeneratedArtifact{
		Kind:    schemas.ArtifactRule,
		Title:   artifactTitle(scenario.Name, key, schemas.ArtifactRule),
		Content: string(content),
		Summary: ruleSummary(schema, scenario, rule.FieldMapping),
	}, nil
}

// suppressionGroupBy picks the host and user fields as suppression grouping
// keys, in that order, skipping roles the schema cannot serve.
func suppressionGroupBy(fields []schemas.DatasetField) []string {
	var groupBy []string
	if f, ok := findRoleField(fields, schemas.RoleHost); ok {
		groupBy = append(groupBy, f.Name)
	}
	if f, ok := findRoleField(fields, schemas.RoleUser); ok {
		groupBy = append(groupBy, f.Name)
	}
	return groupBy
}

// ruleSummary reports what the rule builder produced. Entries are
// informational acknowledgements, not computed guarantees.
func ruleSummary(schema schemas.DatasetSchema, scenario schemas.ThreatScenario, mapping map[string]string) map[string]string {
	return map[string]string{
		"syntax":        fmt.Sprintf("✓ XQL syntax generated for %s %s", schema.Vendor, schema.DatasetName),
		"field_mapping": fmt.Sprintf("✓ Field mapping covers %d of 4 canonical roles", len(mapping)),
		"schedule":      "✓ Hourly schedule with a one hour lookback window",
		"mitre":         fmt.Sprintf("✓ %d MITRE ATT&CK technique(s) referenced", len(scenario.MitreAttack)),
	}
}
