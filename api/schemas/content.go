package schemas

import "strings"

// -- Dataset Schemas --

// FieldRole is an optional semantic annotation on a dataset field. Builders
// prefer an explicit role when one is present and fall back to substring
// matching on the field name when it is not. An empty role means unannotated.
type FieldRole string

// Constants defining the recognized semantic field roles.
const (
	RoleTimestamp FieldRole = "timestamp" // Event occurrence time.
	RoleHost      FieldRole = "host"      // Host, device, or endpoint identity.
	RoleUser      FieldRole = "user"      // Acting user or principal.
	RoleProcess   FieldRole = "process"   // Process image or command line.
	RoleAction    FieldRole = "action"    // API action, event name, or audit verb.
	RoleNetwork   FieldRole = "network"   // Remote address or connection attribute.
)

// ValidFieldRoles lists every recognized field role.
var ValidFieldRoles = []FieldRole{
	RoleTimestamp,
	RoleHost,
	RoleUser,
	RoleProcess,
	RoleAction,
	RoleNetwork,
}

// IsValidFieldRole reports whether r is one of the recognized roles.
// The empty role is not valid; it denotes an unannotated field.
func IsValidFieldRole(r FieldRole) bool {
	for _, valid := range ValidFieldRoles {
		if r == valid {
			return true
		}
	}
	return false
}

// DatasetField describes one column/attribute in a vendor's log schema.
// Immutable once constructed; owned by its parent DatasetSchema.
type DatasetField struct {
	Name        string `json:"name" yaml:"name"`               // Column name as it appears in the dataset.
	Type        string `json:"type" yaml:"type"`               // Logical type (string, datetime, integer, ...).
	Description string `json:"description" yaml:"description"` // Human-readable purpose of the field.

	// SampleValues hold realistic example values. They are used as display
	// placeholders and documentation in generated output and carry no
	// runtime significance beyond illustration.
	SampleValues []string `json:"sample_values,omitempty" yaml:"sample_values,omitempty"`

	Queryable bool `json:"queryable" yaml:"queryable"` // Whether the field may appear in query filters.

	// Role optionally tags the field's semantic purpose. See FieldRole.
	Role FieldRole `json:"role,omitempty" yaml:"role,omitempty"`
}

// DatasetSchema describes one named, vendor-specific log dataset. Field order
// is preserved and meaningful only for display. Schemas are never mutated
// after registration.
type DatasetSchema struct {
	Vendor      string         `json:"vendor" yaml:"vendor"`             // Product vendor (e.g. "Microsoft").
	DatasetName string         `json:"dataset_name" yaml:"dataset_name"` // Dataset identifier used in the query dataset clause.
	Description string         `json:"description" yaml:"description"`   // Human-readable summary of the dataset.
	Category    ThreatCategory `json:"category" yaml:"category"`         // Telemetry category (endpoint, cloud, ...).
	Fields      []DatasetField `json:"fields" yaml:"fields"`             // Ordered column list.
}

// FieldByName returns the first field whose name equals name, case
// insensitively. Duplicate names are not enforced at registration time, so
// callers get the first occurrence.
func (s DatasetSchema) FieldByName(name string) (DatasetField, bool) {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return DatasetField{}, false
}

// QueryableFields returns the subset of fields flagged as queryable,
// preserving schema order.
func (s DatasetSchema) QueryableFields() []DatasetField {
	out := make([]DatasetField, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Queryable {
			out = append(out, f)
		}
	}
	return out
}

// -- Threat Scenario Schemas --

// Severity represents the severity assigned to a threat scenario, ranging
// from critical to informational. The values are lowercase to align with the
// SIEM product's severity vocabulary.
type Severity string

// Constants defining the standard severity levels for scenarios.
const (
	SeverityCritical Severity = "critical" // Represents a critical threat.
	SeverityHigh     Severity = "high"     // Represents a high-severity threat.
	SeverityMedium   Severity = "medium"   // Represents a medium-severity threat.
	SeverityLow      Severity = "low"      // Represents a low-severity threat.
	SeverityInfo     Severity = "info"     // Represents an informational scenario.
)

// ValidSeverities lists every recognized severity level.
var ValidSeverities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// IsValidSeverity reports whether s is one of the recognized severity levels.
func IsValidSeverity(s Severity) bool {
	for _, valid := range ValidSeverities {
		if s == valid {
			return true
		}
	}
	return false
}

// ThreatCategory classifies the telemetry domain of a scenario or dataset.
// The query builder has dedicated filter logic for the endpoint and cloud
// categories; other categories produce a minimally filtered query.
type ThreatCategory string

// Constants for the threat categories users can pick.
const (
	CategoryEndpoint ThreatCategory = "endpoint" // Endpoint/EDR telemetry.
	CategoryCloud    ThreatCategory = "cloud"    // Cloud control-plane audit logs.
	CategoryNetwork  ThreatCategory = "network"  // Network flow/connection telemetry.
	CategoryIdentity ThreatCategory = "identity" // Identity provider logs.
)

// ValidThreatCategories lists every category accepted for scenarios.
var ValidThreatCategories = []ThreatCategory{
	CategoryEndpoint,
	CategoryCloud,
	CategoryNetwork,
	CategoryIdentity,
}

// IsValidThreatCategory reports whether c is one of the accepted categories.
func IsValidThreatCategory(c ThreatCategory) bool {
	for _, valid := range ValidThreatCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// ThreatScenario describes the threat being modeled for content generation.
// It is supplied fresh by the caller for each generation call and is never
// stored by the generator.
type ThreatScenario struct {
	Name        string         `json:"name" yaml:"name"`
	Category    ThreatCategory `json:"category" yaml:"category"`
	Severity    Severity       `json:"severity" yaml:"severity"`
	Description string         `json:"description" yaml:"description"`

	// DataSources are free-form labels for the telemetry feeding the
	// detection (e.g. "Microsoft Defender for Endpoint").
	DataSources []string `json:"data_sources,omitempty" yaml:"data_sources,omitempty"`

	// MitreAttack holds MITRE ATT&CK technique identifiers (e.g. "T1059.001").
	MitreAttack []string `json:"mitre_attack,omitempty" yaml:"mitre_attack,omitempty"`

	// Indicators are short behavioral phrases ("process injection detected")
	// that drive the risk-scoring stage of the query builder.
	Indicators []string `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// -- Generated Artifact Schemas --

// ArtifactKind identifies one of the four content artifact types produced per
// generation call.
type ArtifactKind string

// Constants for the artifact kinds.
const (
	ArtifactRule      ArtifactKind = "rule"      // Correlation rule document (JSON).
	ArtifactPlaybook  ArtifactKind = "playbook"  // Response playbook document (YAML).
	ArtifactLayout    ArtifactKind = "layout"    // Alert layout descriptor (JSON).
	ArtifactDashboard ArtifactKind = "dashboard" // Monitoring dashboard descriptor (JSON).
)

// AllArtifactKinds lists the artifact kinds in generation order.
var AllArtifactKinds = []ArtifactKind{
	ArtifactRule,
	ArtifactPlaybook,
	ArtifactLayout,
	ArtifactDashboard,
}

// IsValidArtifactKind reports whether k names a known artifact kind.
func IsValidArtifactKind(k ArtifactKind) bool {
	for _, valid := range AllArtifactKinds {
		if k == valid {
			return true
		}
	}
	return false
}

// GeneratedArtifact is the immutable output of one generation call for one
// artifact kind. The caller decides persistence.
type GeneratedArtifact struct {
	Kind ArtifactKind `json:"kind"`

	// Title is a slugified, filesystem-safe name suitable as a suggested
	// filename stem for the artifact.
	Title string `json:"title"`

	// Content is the serialized document: JSON for rule/layout/dashboard,
	// YAML for the playbook.
	Content string `json:"content"`

	// Summary maps check names to human-readable acknowledgement strings.
	// These are informational only. No syntax or semantic validation is
	// performed; callers must not rely on them as correctness guarantees.
	Summary map[string]string `json:"summary"`
}
