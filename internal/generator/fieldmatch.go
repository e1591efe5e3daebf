package generator

import (
	"strings"

	"github.com/threatsmith/povforge-cli/api/schemas"
)

// roleKeywords are the substring sets used to locate a field for each
// semantic role when no field carries an explicit role annotation. Matching
// is case-insensitive, first-match-wins over the schema's field order.
var roleKeywords = map[schemas.FieldRole][]string{
	schemas.RoleTimestamp: {"time", "timestamp", "date"},
	schemas.RoleHost:      {"host", "device", "computer", "endpoint", "machine"},
	schemas.RoleUser:      {"user"},
	schemas.RoleProcess:   {"process", "command"},
	schemas.RoleAction:    {"event", "action", "verb"},
	schemas.RoleNetwork:   {"ip", "network", "remote", "address"},
}

// findRoleField returns the first field serving the given role. A field
// annotated with the role wins over any substring match; otherwise the
// role's keyword set decides.
func findRoleField(fields []schemas.DatasetField, role schemas.FieldRole) (schemas.DatasetField, bool) {
	return findField(fields, role, roleKeywords[role]...)
}

// findField locates the first field annotated with role, falling back to the
// first field whose lowercased name contains any of the keywords.
func findField(fields []schemas.DatasetField, role schemas.FieldRole, keywords ...string) (schemas.DatasetField, bool) {
	if role != "" {
		for _, f := range fields {
			if f.Role == role {
				return f, true
			}
		}
	}
	for _, f := range fields {
		name := strings.ToLower(f.Name)
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return f, true
			}
		}
	}
	return schemas.DatasetField{}, false
}

// findFieldAllOf returns the first field whose lowercased name contains every
// keyword. Used for the endpoint event-type probe, which requires "event"
// and "type" to appear in the same name.
func findFieldAllOf(fields []schemas.DatasetField, keywords ...string) (schemas.DatasetField, bool) {
	for _, f := range fields {
		name := strings.ToLower(f.Name)
		matched := true
		for _, kw := range keywords {
			if !strings.Contains(name, kw) {
				matched = false
				break
			}
		}
		if matched {
			return f, true
		}
	}
	return schemas.DatasetField{}, false
}

// containsAny reports whether text contains at least one of the needles.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
