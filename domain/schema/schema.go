// Package schema maps free-form spreadsheet column names to the semantic
// roles the enrichment pipeline understands. Source exports disagree on
// naming ("operator_name" vs "driver", "gmt_start" vs a WITA-qualified
// pair), so binding is done by normalized substring match rather than by
// exact header or position.
package schema

import "strings"

// Role is a semantic column role.
type Role string

const (
	RoleOperator   Role = "operator"
	RoleShift      Role = "shift"
	RoleFleetAsset Role = "fleet_asset"
	RoleFleetType  Role = "fleet_type"
	RoleSpeed      Role = "speed"
	RoleStartTime  Role = "start_time"
	RoleEndTime    Role = "end_time"
)

// Roles lists every semantic role in a stable order.
var Roles = []Role{
	RoleOperator,
	RoleShift,
	RoleFleetAsset,
	RoleFleetType,
	RoleSpeed,
	RoleStartTime,
	RoleEndTime,
}

// roleKeywords is the canonical keyword table. Each role binds the first
// column (in file order) whose normalized name contains any of its
// keywords. Divergent keyword lists found in older dashboard revisions are
// treated as bugs, not variants to preserve.
var roleKeywords = map[Role][]string{
	RoleOperator:   {"operator", "driver", "nik"},
	RoleShift:      {"shift"},
	RoleFleetAsset: {"asset", "vehicle", "fleet"},
	RoleFleetType:  {"parent_fleet", "fleet_type"},
	RoleSpeed:      {"speed", "km/h", "km"},
}

// timestampKeyword marks timestamp-like columns. The exports in the field
// carry "gmt_start"/"gmt_end" or a WITA-qualified pair.
const timestampKeyword = "gmt"

// RoleMap maps a semantic role to the source column that carries it. A role
// with no matching column is simply absent; downstream features degrade to
// "unavailable" rather than failing the load.
type RoleMap map[Role]string

// Bound reports whether a column was resolved for the role.
func (m RoleMap) Bound(role Role) bool {
	_, ok := m[role]
	return ok
}

// Column returns the source column bound to the role, or "" if unbound.
func (m RoleMap) Column(role Role) string {
	return m[role]
}

// Normalize canonicalizes a column name for matching: trimmed, lower-cased,
// spaces replaced by underscores.
func Normalize(name string) string {
	n := strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(n, " ", "_")
}

// Resolve builds a RoleMap from the column names of a loaded table. The scan
// is deterministic: for each role, columns are visited in file order and the
// first match wins. Ambiguity is never an error. Timestamp-like columns
// ("gmt" in the name) bind start then end in file order; a single
// timestamp-like column binds start only.
func Resolve(headers []string) RoleMap {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = Normalize(h)
	}

	roles := make(RoleMap)

	for role, keywords := range roleKeywords {
		for i, name := range normalized {
			if containsAny(name, keywords) {
				roles[role] = headers[i]
				break
			}
		}
	}

	var timeCols []string
	for i, name := range normalized {
		if strings.Contains(name, timestampKeyword) {
			timeCols = append(timeCols, headers[i])
		}
	}
	switch {
	case len(timeCols) >= 2:
		roles[RoleStartTime] = timeCols[0]
		roles[RoleEndTime] = timeCols[1]
	case len(timeCols) == 1:
		roles[RoleStartTime] = timeCols[0]
	}

	return roles
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
