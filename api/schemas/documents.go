package schemas

// -- Artifact Document Schemas --
//
// Typed representations of the four generated documents. The generator
// serializes these into GeneratedArtifact.Content; they are exported so
// integrations and tests can unmarshal the content back into structure.

// CorrelationRule is the flat correlation-rule document embedding the
// generated XQL query plus scenario metadata, ready for import into the SIEM.
type CorrelationRule struct {
	RuleID      string   `json:"rule_id"`      // Unique identifier assigned at generation time.
	Name        string   `json:"name"`         // Rule display name, derived from the scenario name.
	Description string   `json:"description"`  // Scenario description carried through verbatim.
	Severity    Severity `json:"severity"`     // Severity inherited from the scenario.
	Vendor      string   `json:"vendor"`       // Source schema vendor.
	DatasetName string   `json:"dataset_name"` // Dataset the query runs against.

	// XQLQuery is the full pipe-delimited detection query.
	XQLQuery string `json:"xql_query"`

	MitreTechniques []string `json:"mitre_techniques,omitempty"` // ATT&CK technique identifiers.
	DataSources     []string `json:"data_sources,omitempty"`     // Telemetry source labels.

	// FieldMapping maps canonical role names (event_time, host_name,
	// user_identity, process_activity) to the matched schema field names.
	// Roles with no matching field are omitted.
	FieldMapping map[string]string `json:"field_mapping"`

	Schedule    RuleSchedule    `json:"schedule"`
	Suppression RuleSuppression `json:"suppression"`
}

// RuleSchedule controls how often the rule query executes and how far back
// each execution looks.
type RuleSchedule struct {
	Frequency  string `json:"frequency"`   // Execution cadence (e.g. "1h").
	TimeWindow string `json:"time_window"` // Lookback window per execution (e.g. "1h").
}

// RuleSuppression controls alert deduplication for repeated matches.
type RuleSuppression struct {
	Enabled  bool     `json:"enabled"`
	Duration string   `json:"duration"`           // Suppression window (e.g. "24h").
	GroupBy  []string `json:"group_by,omitempty"` // Fields grouped for deduplication.
}

// Playbook is the declarative response workflow document. It is serialized
// as YAML.
type Playbook struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`

	// Inputs document the alert context values the playbook expects from
	// the triggering rule.
	Inputs []PlaybookInput `yaml:"inputs,omitempty"`

	// Tasks form a linear workflow with a single severity branch. Task
	// wiring uses the Next/OnTrue/OnFalse references by task ID.
	Tasks []PlaybookTask `yaml:"tasks"`
}

// PlaybookInput describes one expected alert context value.
type PlaybookInput struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// PlaybookTask is a single node in the playbook workflow graph.
type PlaybookTask struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Type is one of: start, automation, condition, manual, end.
	Type string `yaml:"type"`

	Description string `yaml:"description,omitempty"`

	// Action names the automation to invoke for automation tasks.
	Action string `yaml:"action,omitempty"`

	// Condition holds the branch expression for condition tasks.
	Condition string `yaml:"condition,omitempty"`

	OnTrue  string `yaml:"on_true,omitempty"`  // Next task when Condition holds.
	OnFalse string `yaml:"on_false,omitempty"` // Next task when Condition does not hold.
	Next    string `yaml:"next,omitempty"`     // Next task for non-branching nodes.
}

// AlertLayout is the declarative alert-view descriptor: a summary row plus an
// expandable details section.
type AlertLayout struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Sections    []LayoutSection `json:"sections"`
}

// LayoutSection is one visual grouping in the alert layout.
type LayoutSection struct {
	Title string `json:"title"`

	// Type is "summary" for the fixed header row or "fields" for the
	// schema-field listing.
	Type string `json:"type"`

	Expandable bool         `json:"expandable,omitempty"`
	Items      []LayoutItem `json:"items"`
}

// LayoutItem is a single display element inside a layout section. Summary
// items carry Label/Value pairs; field items reference a schema field and
// carry a sample hint.
type LayoutItem struct {
	Label     string `json:"label"`
	Value     string `json:"value,omitempty"`
	FieldName string `json:"field_name,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// Dashboard is the monitoring dashboard descriptor: three widgets plus three
// filter controls.
type Dashboard struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Widgets     []DashboardWidget `json:"widgets"`
	Filters     []DashboardFilter `json:"filters"`
}

// DashboardWidget is one visualization panel.
type DashboardWidget struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// Type is the visualization kind: line, pie, or gauge.
	Type string `json:"type"`

	// Query is the XQL statement feeding the widget.
	Query string `json:"query"`
}

// DashboardFilter is an interactive filter control scoped to the dashboard.
type DashboardFilter struct {
	Name string `json:"name"`

	// Field is the dataset field the filter applies to, or a virtual field
	// such as "_time" for the time-range control.
	Field string `json:"field"`

	// Type is the control kind: time_range or multi_select.
	Type string `json:"type"`
}
