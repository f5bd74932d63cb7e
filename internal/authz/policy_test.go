package authz

import (
	"testing"

	"github.com/formflow/formflow-api/internal/models"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role models.UserRole
		cap  Capability
		want bool
	}{
		{models.RoleUser, CapCreateSubmission, true},
		{models.RoleUser, CapDecide, false},
		{models.RoleUser, CapManageFormats, false},
		{models.RoleUser, CapViewAll, false},
		{models.RoleCreator, CapManageFormats, true},
		{models.RoleCreator, CapDecide, false},
		{models.RoleValidator, CapDecide, true},
		{models.RoleValidator, CapViewAll, true},
		{models.RoleValidator, CapManageFormats, false},
	}
	for _, c := range cases {
		if got := Has(c.role, c.cap); got != c.want {
			t.Errorf("Has(%s, %s) = %v, want %v", c.role, c.cap, got, c.want)
		}
	}
}

func TestAdminIsSuperset(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleUser, models.RoleCreator, models.RoleValidator} {
		for _, cap := range CapabilitiesFor(role) {
			if !Has(models.RoleAdmin, cap) {
				t.Errorf("admin missing capability %s granted to %s", cap, role)
			}
		}
	}
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	if caps := CapabilitiesFor(models.UserRole("intruder")); len(caps) != 0 {
		t.Errorf("expected no capabilities for unknown role, got %v", caps)
	}
	if Has(models.UserRole("intruder"), CapCreateSubmission) {
		t.Error("unknown role should not hold any capability")
	}
}
