package access

import (
	"fmt"
	"strings"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
)

const (
	resourceAll  = "all"
	resourceNone = "none"
)

// permissionMatrix maps each role to the knowledge box resources it may
// touch per action. "all" grants universal access, "none" is an explicit
// denial, a trailing "*" matches by prefix.
var permissionMatrix = map[entity.Role]map[entity.Action][]string{
	entity.RoleExecutive: {
		entity.ActionRead:   {resourceAll},
		entity.ActionWrite:  {"global_research", "client_analytics"},
		entity.ActionDelete: {resourceNone},
		entity.ActionExport: {resourceAll},
		entity.ActionAdmin:  {"view_audit", "manage_users"},
	},
	entity.RoleAnalyst: {
		entity.ActionRead:   {"global_research", "internal_training", "client_analytics"},
		entity.ActionWrite:  {"global_research"},
		entity.ActionDelete: {"own_content"},
		entity.ActionExport: {"global_research", "internal_training"},
	},
	entity.RoleComplianceUS: {
		entity.ActionRead:   {"us_compliance", "global_research", "internal_training"},
		entity.ActionWrite:  {"us_compliance"},
		entity.ActionDelete: {resourceNone},
		entity.ActionExport: {"us_compliance"},
		entity.ActionAdmin:  {"view_audit"},
	},
	entity.RoleComplianceEU: {
		entity.ActionRead:   {"eu_compliance", "global_research", "internal_training"},
		entity.ActionWrite:  {"eu_compliance"},
		entity.ActionDelete: {resourceNone},
		entity.ActionExport: {"eu_compliance"},
		entity.ActionAdmin:  {"view_audit"},
	},
	entity.RoleClientManager: {
		entity.ActionRead:   {"client_analytics", "global_research"},
		entity.ActionWrite:  {"client_analytics"},
		entity.ActionDelete: {resourceNone},
		entity.ActionExport: {"client_analytics"},
	},
	entity.RoleEmployee: {
		entity.ActionRead:   {"internal_training"},
		entity.ActionWrite:  {resourceNone},
		entity.ActionDelete: {resourceNone},
		entity.ActionExport: {resourceNone},
	},
}

// searchableBoxes maps each role to the knowledge boxes included in
// federated search.
var searchableBoxes = map[entity.Role][]string{
	entity.RoleExecutive:     {"global_research", "us_compliance", "eu_compliance", "client_analytics"},
	entity.RoleAnalyst:       {"global_research", "internal_training"},
	entity.RoleComplianceUS:  {"global_research", "us_compliance"},
	entity.RoleComplianceEU:  {"global_research", "eu_compliance"},
	entity.RoleClientManager: {"client_analytics", "global_research"},
	entity.RoleEmployee:      {"internal_training"},
}

// decide resolves a single permission check to an allow/deny with reason.
func decide(role entity.Role, action entity.Action, resource string) (bool, string) {
	permissions, ok := permissionMatrix[role]
	if !ok {
		return false, fmt.Sprintf("Role %s has no permissions defined", role)
	}

	allowed := permissions[action]

	for _, r := range allowed {
		switch {
		case r == resourceAll:
			return true, fmt.Sprintf("Role %s has universal %s access", role, action)
		case r == resourceNone:
			return false, fmt.Sprintf("Role %s is explicitly denied %s access", role, action)
		case strings.HasSuffix(r, "*"):
			if strings.HasPrefix(resource, strings.TrimSuffix(r, "*")) {
				return true, fmt.Sprintf("Resource matches pattern %s", r)
			}
		case r == resource:
			return true, fmt.Sprintf("Resource explicitly allowed for %s", role)
		}
	}

	return false, fmt.Sprintf("No matching permission for %s on %s", action, resource)
}

// AccessibleBoxes returns the knowledge boxes a principal may search.
// Regional data sovereignty removes the other region's compliance box.
func AccessibleBoxes(role entity.Role, region entity.Region) []string {
	base, ok := searchableBoxes[role]
	if !ok {
		base = searchableBoxes[entity.RoleEmployee]
	}

	boxes := make([]string, 0, len(base))
	for _, name := range base {
		if region == entity.RegionEU && name == "us_compliance" {
			continue
		}
		if region == entity.RegionUS && name == "eu_compliance" {
			continue
		}
		boxes = append(boxes, name)
	}

	return boxes
}
