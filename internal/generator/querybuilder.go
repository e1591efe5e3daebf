package generator

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// awsPrivilegeActions is the fixed set of IAM management actions the cloud
// branch restricts an AWS action field to.
var awsPrivilegeActions = []string{
	"AttachUserPolicy",
	"CreateRole",
	"AssumeRole",
	"CreateAccessKey",
	"PutUserPolicy",
	"UpdateAssumeRolePolicy",
	"AddUserToGroup",
	"AttachRolePolicy",
}

// riskIndicator couples an indicator text pattern with the field probe and
// scoring expression it contributes to the query.
type riskIndicator struct {
	name     string
	needles  []string          // substrings probed in the lowercased indicator text
	role     schemas.FieldRole // annotation that wins the field probe outright
	keywords []string          // field-name fallback keywords
	expr     func(field string) string
}

// riskIndicators is ordered; each entry contributes at most one expression
// per query regardless of how many scenario indicators match it.
var riskIndicators = []riskIndicator{
	{
		name:     "process_injection",
		needles:  []string{"process", "inject"},
		role:     schemas.RoleProcess,
		keywords: []string{"process", "command"},
		expr: func(field string) string {
			return fmt.Sprintf(`if(%s contains "powershell", 2, 0)`, field)
		},
	},
	{
		name:     "network_connection",
		needles:  []string{"network", "connect", "beacon"},
		role:     schemas.RoleNetwork,
		keywords: []string{"ip", "network", "remote", "address"},
		expr: func(field string) string {
			return fmt.Sprintf("if(%s != null, 1, 0)", field)
		},
	},
	{
		name:     "privilege_escalation",
		needles:  []string{"privilege", "escalat", "admin"},
		role:     schemas.RoleUser,
		keywords: []string{"user", "role", "group", "privilege"},
		expr: func(field string) string {
			return fmt.Sprintf(`if(%s contains "admin", 2, 0)`, field)
		},
	},
}

// scoreThreshold is the minimum combined threat score a row must reach when
// any risk-scoring expressions were emitted.
const scoreThreshold = 2

// BuildQuery composes the XQL detection query for scenario against schema.
// The result is deterministic: identical inputs yield byte-identical output.
// Stages are joined with a newline and a pipe, the first stage always being
// the dataset selector.
func BuildQuery(schema schemas.DatasetSchema, scenario schemas.ThreatScenario, logger *zap.Logger) string {
	stages := []string{fmt.Sprintf("dataset = %s", schema.DatasetName)}

	switch scenario.Category {
	case schemas.CategoryEndpoint:
		stages = append(stages, endpointStages(schema.Fields)...)
	case schemas.CategoryCloud:
		stages = append(stages, cloudStages(schema)...)
	default:
		logger.Warn("No category-specific query filters available, emitting minimally filtered query",
			zap.String("category", string(scenario.Category)),
			zap.String("dataset", schema.DatasetName),
		)
	}

	stages = append(stages, riskScoringStages(schema.Fields, scenario.Indicators)...)
	stages = append(stages, outputFieldsStage(schema.Fields, scenario.Category))

	return strings.Join(stages, "\n| ")
}

// endpointStages narrows an endpoint dataset to suspicious process creation.
// Each filter is skipped when its field cannot be located.
func endpointStages(fields []schemas.DatasetField) []string {
	var stages []string
	if f, ok := findFieldAllOf(fields, "event", "type"); ok {
		stages = append(stages, fmt.Sprintf("filter %s = %q", f.Name, "ProcessCreation"))
	}
	if f, ok := findRoleField(fields, schemas.RoleProcess); ok {
		stages = append(stages, fmt.Sprintf("filter %s contains %q and %s contains %q",
			f.Name, "powershell", f.Name, "suspicious"))
	}
	return stages
}

// cloudStages narrows a cloud dataset to privileged management activity and
// excludes the expected admin principal.
func cloudStages(schema schemas.DatasetSchema) []string {
	var stages []string
	if f, ok := findRoleField(schema.Fields, schemas.RoleAction); ok {
		switch schema.Vendor {
		case "Amazon Web Services":
			quoted := make([]string, len(awsPrivilegeActions))
			for i, action := range awsPrivilegeActions {
				quoted[i] = fmt.Sprintf("%q", action)
			}
			stages = append(stages, fmt.Sprintf("filter %s in (%s)", f.Name, strings.Join(quoted, ", ")))
		case "Kubernetes":
			stages = append(stages, fmt.Sprintf("filter %s = %q", f.Name, "create"))
		}
	}
	if f, ok := findRoleField(schema.Fields, schemas.RoleUser); ok {
		stages = append(stages, fmt.Sprintf("filter %s != %q", f.Name, "system:admin"))
	}
	return stages
}

// riskScoringStages translates scenario indicators into an additive scoring
// stage plus a threshold filter. No indicator match, or no usable field for
// any matched indicator, yields no stages at all.
func riskScoringStages(fields []schemas.DatasetField, indicators []string) []string {
	var exprs []string
	emitted := make(map[string]bool)

	for _, indicator := range indicators {
		text := strings.ToLower(indicator)
		for _, ri := range riskIndicators {
			if emitted[ri.name] || !containsAny(text, ri.needles) {
				continue
			}
			if f, ok := findField(fields, ri.role, ri.keywords...); ok {
				exprs = append(exprs, ri.expr(f.Name))
				emitted[ri.name] = true
			}
		}
	}

	if len(exprs) == 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("alter threat_score = %s", strings.Join(exprs, " + ")),
		fmt.Sprintf("filter threat_score >= %d", scoreThreshold),
	}
}

// outputFieldsStage builds the trailing fields projection: timestamp, host
// and user roles when present, plus one category-specific field, with
// duplicates removed. When nothing matches, the stage falls back to the
// literal name timestamp rather than erroring.
func outputFieldsStage(fields []schemas.DatasetField, category schemas.ThreatCategory) string {
	var names []string
	appendField := func(f schemas.DatasetField, ok bool) {
		if !ok {
			return
		}
		for _, existing := range names {
			if existing == f.Name {
				return
			}
		}
		names = append(names, f.Name)
	}

	appendField(findRoleField(fields, schemas.RoleTimestamp))
	appendField(findRoleField(fields, schemas.RoleHost))
	appendField(findRoleField(fields, schemas.RoleUser))

	switch category {
	case schemas.CategoryEndpoint:
		appendField(findRoleField(fields, schemas.RoleProcess))
	case schemas.CategoryCloud:
		appendField(findRoleField(fields, schemas.RoleAction))
	}

	if len(names) == 0 {
		names = append(names, "timestamp")
	}
	return "fields " + strings.Join(names, ", ")
}
