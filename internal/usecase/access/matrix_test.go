package access

import (
	"testing"

	"github.com/datavault-fs/knowledge-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		role     entity.Role
		action   entity.Action
		resource string
		want     bool
	}{
		{
			name:     "executive reads anything",
			role:     entity.RoleExecutive,
			action:   entity.ActionRead,
			resource: "eu_compliance",
			want:     true,
		},
		{
			name:     "executive cannot delete",
			role:     entity.RoleExecutive,
			action:   entity.ActionDelete,
			resource: "global_research",
			want:     false,
		},
		{
			name:     "executive exports anything",
			role:     entity.RoleExecutive,
			action:   entity.ActionExport,
			resource: "client_analytics",
			want:     true,
		},
		{
			name:     "analyst reads research",
			role:     entity.RoleAnalyst,
			action:   entity.ActionRead,
			resource: "global_research",
			want:     true,
		},
		{
			name:     "analyst cannot read us compliance",
			role:     entity.RoleAnalyst,
			action:   entity.ActionRead,
			resource: "us_compliance",
			want:     false,
		},
		{
			name:     "analyst deletes own content",
			role:     entity.RoleAnalyst,
			action:   entity.ActionDelete,
			resource: "own_content",
			want:     true,
		},
		{
			name:     "us compliance officer writes own box",
			role:     entity.RoleComplianceUS,
			action:   entity.ActionWrite,
			resource: "us_compliance",
			want:     true,
		},
		{
			name:     "us compliance officer cannot write research",
			role:     entity.RoleComplianceUS,
			action:   entity.ActionWrite,
			resource: "global_research",
			want:     false,
		},
		{
			name:     "compliance officer views audit",
			role:     entity.RoleComplianceEU,
			action:   entity.ActionAdmin,
			resource: "view_audit",
			want:     true,
		},
		{
			name:     "client manager exports analytics",
			role:     entity.RoleClientManager,
			action:   entity.ActionExport,
			resource: "client_analytics",
			want:     true,
		},
		{
			name:     "employee reads training",
			role:     entity.RoleEmployee,
			action:   entity.ActionRead,
			resource: "internal_training",
			want:     true,
		},
		{
			name:     "employee cannot write anywhere",
			role:     entity.RoleEmployee,
			action:   entity.ActionWrite,
			resource: "internal_training",
			want:     false,
		},
		{
			name:     "employee has no admin permissions",
			role:     entity.RoleEmployee,
			action:   entity.ActionAdmin,
			resource: "view_audit",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := decide(tt.role, tt.action, tt.resource)
			if got != tt.want {
				t.Errorf("decide(%s, %s, %s) = %v (%s), want %v",
					tt.role, tt.action, tt.resource, got, reason, tt.want)
			}
			if reason == "" {
				t.Error("decide returned an empty reason")
			}
		})
	}
}

func TestAccessibleBoxes(t *testing.T) {
	tests := []struct {
		name   string
		role   entity.Role
		region entity.Region
		want   []string
	}{
		{
			name:   "executive sees everything",
			role:   entity.RoleExecutive,
			region: "",
			want:   []string{"global_research", "us_compliance", "eu_compliance", "client_analytics"},
		},
		{
			name:   "eu executive loses us compliance",
			role:   entity.RoleExecutive,
			region: entity.RegionEU,
			want:   []string{"global_research", "eu_compliance", "client_analytics"},
		},
		{
			name:   "us executive loses eu compliance",
			role:   entity.RoleExecutive,
			region: entity.RegionUS,
			want:   []string{"global_research", "us_compliance", "client_analytics"},
		},
		{
			name: "analyst sees research and training",
			role: entity.RoleAnalyst,
			want: []string{"global_research", "internal_training"},
		},
		{
			name:   "us compliance officer in the us keeps own box",
			role:   entity.RoleComplianceUS,
			region: entity.RegionUS,
			want:   []string{"global_research", "us_compliance"},
		},
		{
			name: "unknown role falls back to employee",
			role: entity.Role("contractor"),
			want: []string{"internal_training"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AccessibleBoxes(tt.role, tt.region)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AccessibleBoxes(%s, %s) mismatch (-want +got):\n%s", tt.role, tt.region, diff)
			}
		})
	}
}
