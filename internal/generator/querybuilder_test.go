package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/threatsmith/povforge-cli/api/schemas"
	"github.com/threatsmith/povforge-cli/internal/registry"
)

func builtinSchema(t *testing.T, key string) schemas.DatasetSchema {
	t.Helper()
	schema, err := registry.NewWithBuiltins().Lookup(key)
	require.NoError(t, err)
	return schema
}

func endpointScenario() schemas.ThreatScenario {
	return schemas.ThreatScenario{
		Name:     "PowerShell Dropper",
		Category: schemas.CategoryEndpoint,
		Severity: schemas.SeverityHigh,
		Indicators: []string{
			"Suspicious process injection via PowerShell",
			"Beaconing network connections to a staging host",
		},
	}
}

func TestBuildQuery_Deterministic(t *testing.T) {
	schema := builtinSchema(t, registry.KeyWindowsDefender)
	scenario := endpointScenario()

	first := BuildQuery(schema, scenario, zap.NewNop())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildQuery(schema, scenario, zap.NewNop()))
	}
}

func TestBuildQuery_EndpointDefender(t *testing.T) {
	schema := builtinSchema(t, registry.KeyWindowsDefender)

	got := BuildQuery(schema, endpointScenario(), zap.NewNop())

	want := strings.Join([]string{
		"dataset = msft_defender_atp_raw",
		`filter event_type = "ProcessCreation"`,
		`filter process_command_line contains "powershell" and process_command_line contains "suspicious"`,
		`alter threat_score = if(process_command_line contains "powershell", 2, 0) + if(remote_ip != null, 1, 0)`,
		"filter threat_score >= 2",
		"fields event_timestamp, device_name, account_name, process_command_line",
	}, "\n| ")
	assert.Equal(t, want, got)
}

func TestBuildQuery_CloudAWS(t *testing.T) {
	schema := builtinSchema(t, registry.KeyAWSCloudTrail)
	scenario := schemas.ThreatScenario{
		Name:       "IAM Privilege Escalation",
		Category:   schemas.CategoryCloud,
		Severity:   schemas.SeverityCritical,
		Indicators: []string{"Privilege escalation via IAM policy attachment"},
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	want := strings.Join([]string{
		"dataset = aws_cloudtrail_raw",
		`filter event_name in ("AttachUserPolicy", "CreateRole", "AssumeRole", "CreateAccessKey", "PutUserPolicy", "UpdateAssumeRolePolicy", "AddUserToGroup", "AttachRolePolicy")`,
		`filter user_identity_arn != "system:admin"`,
		`alter threat_score = if(user_identity_arn contains "admin", 2, 0)`,
		"filter threat_score >= 2",
		"fields timestamp, user_identity_arn, event_name",
	}, "\n| ")
	assert.Equal(t, want, got)
}

func TestBuildQuery_CloudKubernetes(t *testing.T) {
	schema := builtinSchema(t, registry.KeyKubernetes)
	scenario := schemas.ThreatScenario{
		Name:     "Suspicious RoleBinding Creation",
		Category: schemas.CategoryCloud,
		Severity: schemas.SeverityHigh,
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	want := strings.Join([]string{
		"dataset = k8s_audit_raw",
		`filter verb = "create"`,
		`filter user_username != "system:admin"`,
		"fields stage_timestamp, user_username, verb",
	}, "\n| ")
	assert.Equal(t, want, got)
}

func TestBuildQuery_RoleAnnotationBeatsFieldOrder(t *testing.T) {
	schema := schemas.DatasetSchema{
		Vendor:      "Acme",
		DatasetName: "acme_edr_raw",
		Category:    schemas.CategoryEndpoint,
		Fields: []schemas.DatasetField{
			{Name: "event_type", Type: "string", Queryable: true},
			{Name: "command_text", Type: "string", Queryable: true},
			{Name: "actor_process_image_name", Type: "string", Queryable: true, Role: schemas.RoleProcess},
		},
	}
	scenario := schemas.ThreatScenario{
		Name:     "Annotated Process Field",
		Category: schemas.CategoryEndpoint,
		Severity: schemas.SeverityMedium,
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	// command_text would win on substring order alone; the annotation on
	// actor_process_image_name must take priority.
	assert.Contains(t, got, `filter actor_process_image_name contains "powershell" and actor_process_image_name contains "suspicious"`)
	assert.NotContains(t, got, "command_text contains")
}

func TestBuildQuery_FirstMatchWins(t *testing.T) {
	schema := schemas.DatasetSchema{
		Vendor:      "Acme",
		DatasetName: "acme_audit_raw",
		Category:    schemas.CategoryCloud,
		Fields: []schemas.DatasetField{
			{Name: "event_time", Type: "datetime", Queryable: true},
			{Name: "user_agent", Type: "string", Queryable: true},
			{Name: "user_name", Type: "string", Queryable: true},
		},
	}
	scenario := schemas.ThreatScenario{
		Name:     "Heuristic Ordering",
		Category: schemas.CategoryCloud,
		Severity: schemas.SeverityLow,
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	// Both names contain "user"; field order decides, so user_agent is the
	// user field whether or not that is what a human would pick.
	assert.Contains(t, got, `filter user_agent != "system:admin"`)
	assert.NotContains(t, got, "user_name")
}

func TestBuildQuery_NoMatchesFallsBackToTimestampLiteral(t *testing.T) {
	schema := schemas.DatasetSchema{
		Vendor:      "Acme",
		DatasetName: "acme_opaque_raw",
		Category:    schemas.CategoryEndpoint,
		Fields: []schemas.DatasetField{
			{Name: "f1", Type: "string", Queryable: true},
			{Name: "f2", Type: "string", Queryable: true},
			{Name: "f3", Type: "string", Queryable: true},
		},
	}
	scenario := schemas.ThreatScenario{
		Name:       "Opaque Schema",
		Category:   schemas.CategoryEndpoint,
		Severity:   schemas.SeverityMedium,
		Indicators: []string{"process injection"},
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	assert.Equal(t, "dataset = acme_opaque_raw\n| fields timestamp", got)
}

func TestBuildQuery_UnhandledCategoryWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	schema := builtinSchema(t, registry.KeyWindowsDefender)
	scenario := schemas.ThreatScenario{
		Name:     "Lateral DNS Tunnel",
		Category: schemas.CategoryNetwork,
		Severity: schemas.SeverityHigh,
	}

	got := BuildQuery(schema, scenario, zap.New(core))

	want := strings.Join([]string{
		"dataset = msft_defender_atp_raw",
		"fields event_timestamp, device_name, account_name",
	}, "\n| ")
	assert.Equal(t, want, got)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	assert.Equal(t, "network", entry.ContextMap()["category"])
}

func TestRiskScoring_AtMostOncePerCategory(t *testing.T) {
	schema := builtinSchema(t, registry.KeyCrowdStrike)
	scenario := schemas.ThreatScenario{
		Name:     "Repeated Indicators",
		Category: schemas.CategoryEndpoint,
		Severity: schemas.SeverityHigh,
		Indicators: []string{
			"process hollowing",
			"remote process injection",
			"child process spawning",
		},
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	assert.Contains(t, got, `alter threat_score = if(command_line contains "powershell", 2, 0)`)
	assert.Equal(t, 1, strings.Count(got, "if("))
}

func TestRiskScoring_SingleIndicatorAllCategories(t *testing.T) {
	schema := builtinSchema(t, registry.KeyCrowdStrike)
	scenario := schemas.ThreatScenario{
		Name:       "Kitchen Sink",
		Category:   schemas.CategoryEndpoint,
		Severity:   schemas.SeverityCritical,
		Indicators: []string{"Privileged process injection beaconing over the network"},
	}

	got := BuildQuery(schema, scenario, zap.NewNop())

	want := `alter threat_score = if(command_line contains "powershell", 2, 0) + if(remote_address != null, 1, 0) + if(user_name contains "admin", 2, 0)`
	assert.Contains(t, got, want)
	assert.Contains(t, got, "filter threat_score >= 2")
}

func TestBuildFieldMapping(t *testing.T) {
	t.Run("defender covers all four roles", func(t *testing.T) {
		mapping := BuildFieldMapping(builtinSchema(t, registry.KeyWindowsDefender).Fields)
		assert.Equal(t, map[string]string{
			"event_time":       "event_timestamp",
			"host_name":        "device_name",
			"user_identity":    "account_name",
			"process_activity": "process_command_line",
		}, mapping)
	})

	t.Run("cloudtrail omits roles it cannot serve", func(t *testing.T) {
		mapping := BuildFieldMapping(builtinSchema(t, registry.KeyAWSCloudTrail).Fields)
		assert.Equal(t, map[string]string{
			"event_time":    "timestamp",
			"user_identity": "user_identity_arn",
		}, mapping)
	})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"PowerShell Dropper":           "powershell_dropper",
		"IAM  Privilege   Escalation!": "iam_privilege_escalation",
		"T1059.001 (Stage 2)":          "t1059_001_stage_2",
		"___":                          "untitled",
		"":                             "untitled",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugify(input), "input %q", input)
	}
}

func TestArtifactTitle(t *testing.T) {
	got := artifactTitle("PowerShell Dropper", registry.KeyWindowsDefender, schemas.ArtifactRule)
	assert.Equal(t, "powershell_dropper_windows_defender_rule", got)
}
