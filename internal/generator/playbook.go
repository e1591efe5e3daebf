package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// severityRank orders severities for the playbook's branch condition.
// Higher is more urgent.
var severityRank = map[schemas.Severity]int{
	schemas.SeverityCritical: 4,
	schemas.SeverityHigh:     3,
	schemas.SeverityMedium:   2,
	schemas.SeverityLow:      1,
	schemas.SeverityInfo:     0,
}

// effectiveSeverity normalizes unknown severities to high so the branch
// condition always names a real tier.
func effectiveSeverity(s schemas.Severity) schemas.Severity {
	if schemas.IsValidSeverity(s) {
		return s
	}
	return schemas.SeverityHigh
}

// severityBranchCondition builds the gate expression matching every severity
// at or above the scenario's own tier.
func severityBranchCondition(s schemas.Severity) string {
	threshold := severityRank[effectiveSeverity(s)]
	var quoted []string
	for _, sev := range schemas.ValidSeverities {
		if severityRank[sev] >= threshold {
			quoted = append(quoted, fmt.Sprintf("%q", sev))
		}
	}
	return fmt.Sprintf("alert.severity in (%s)", strings.Join(quoted, ", "))
}

// containmentAction picks the automation invoked on the fast path, by threat
// category.
func containmentAction(category schemas.ThreatCategory) string {
	switch category {
	case schemas.CategoryEndpoint:
		return "isolate-endpoint"
	case schemas.CategoryCloud:
		return "revoke-credentials"
	case schemas.CategoryNetwork:
		return "block-indicator"
	case schemas.CategoryIdentity:
		return "disable-account"
	default:
		return "block-indicator"
	}
}

// buildPlaybook assembles the six-task response workflow and serializes it
// as YAML. The graph is linear apart from one severity gate: alerts at or
// above the scenario's tier go straight to containment, the rest to manual
// review, and both paths converge on closure.
func (g *Generator) buildPlaybook(key string, schema schemas.DatasetSchema, scenario schemas.ThreatScenario) (schemas.GeneratedArtifact, error) {
	severity := effectiveSeverity(scenario.Severity)

	playbook := schemas.Playbook{
		Name:        scenario.Name + " Response",
		Description: fmt.Sprintf("Response workflow for %q alerts raised on %s telemetry.", scenario.Name, schema.Vendor),
		Version:     "1",
		Inputs: []schemas.PlaybookInput{
			{Key: "alert.id", Description: "Identifier of the triggering alert.", Required: true},
			{Key: "alert.severity", Description: "Severity assigned by the correlation rule.", Required: true},
			{Key: "alert.host", Description: "Asset the alert fired on, when available.", Required: false},
		},
		Tasks: []schemas.PlaybookTask{
			{
				ID:          "start",
				Name:        "Alert received",
				Type:        "start",
				Description: fmt.Sprintf("Triggered by the %q correlation rule.", scenario.Name),
				Next:        "enrich_indicators",
			},
			{
				ID:          "enrich_indicators",
				Name:        "Enrich indicators",
				Type:        "automation",
				Description: "Look up hashes, addresses and identities from the alert against threat intelligence.",
				Action:      "threat-intel-enrich",
				Next:        "severity_gate",
			},
			{
				ID:        "severity_gate",
				Name:      fmt.Sprintf("Severity at or above %s?", severity),
				Type:      "condition",
				Condition: severityBranchCondition(scenario.Severity),
				OnTrue:    "contain",
				OnFalse:   "analyst_review",
			},
			{
				ID:          "contain",
				Name:        fmt.Sprintf("Contain via %s", schema.Vendor),
				Type:        "automation",
				Description: fmt.Sprintf("Invoke the %s integration to cut off the attacker's access.", schema.Vendor),
				Action:      containmentAction(scenario.Category),
				Next:        "close_alert",
			},
			{
				ID:          "analyst_review",
				Name:        "Analyst review",
				Type:        "manual",
				Description: "Review the evidence and decide whether escalation is warranted.",
				Next:        "close_alert",
			},
			{
				ID:   "close_alert",
				Name: "Close alert",
				Type: "end",
			},
		},
	}

	content, err := yaml.Marshal(playbook)
	if err != nil {
		return schemas.GeneratedArtifact{}, fmt.Errorf("failed to serialize playbook %q: %w", playbook.Name, err)
	}

	return schemas.GeneratedArtifact{
		Kind:    schemas.ArtifactPlaybook,
		Title:   artifactTitle(scenario.Name, key, schemas.ArtifactPlaybook),
		Content: string(content),
		Summary: playbookSummary(schema, playbook),
	}, nil
}

// playbookSummary reports what the playbook builder produced. Entries are
// informational acknowledgements, not computed guarantees.
func playbookSummary(schema schemas.DatasetSchema, playbook schemas.Playbook) map[string]string {
	return map[string]string{
		"structure": "✓ Task graph is linear with a single severity gate",
		"tasks":     fmt.Sprintf("✓ %d tasks generated for %s response", len(playbook.Tasks), schema.Vendor),
		"inputs":    fmt.Sprintf("✓ %d alert context inputs declared", len(playbook.Inputs)),
	}
}
