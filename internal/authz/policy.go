package authz

import "github.com/formflow/formflow-api/internal/models"

// Capability is a named permission granted to one or more roles. All
// permission checks in the service go through this table; there are no
// scattered role comparisons.
type Capability string

const (
	CapCreateSubmission Capability = "submission:create"
	CapEditSubmission   Capability = "submission:edit"
	CapViewAll          Capability = "submission:view_all"
	CapDecide           Capability = "validation:decide"
	CapManageFormats    Capability = "format:manage"
	CapReadNotification Capability = "notification:read"
)

var roleCapabilities = map[models.UserRole][]Capability{
	models.RoleUser: {
		CapCreateSubmission,
		CapEditSubmission,
		CapReadNotification,
	},
	models.RoleCreator: {
		CapCreateSubmission,
		CapEditSubmission,
		CapReadNotification,
		CapManageFormats,
	},
	models.RoleValidator: {
		CapCreateSubmission,
		CapEditSubmission,
		CapReadNotification,
		CapDecide,
		CapViewAll,
	},
	models.RoleAdmin: {
		CapCreateSubmission,
		CapEditSubmission,
		CapReadNotification,
		CapManageFormats,
		CapDecide,
		CapViewAll,
	},
}

// CapabilitiesFor returns the capability set for a role. Unknown roles get
// no capabilities.
func CapabilitiesFor(role models.UserRole) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Has reports whether the role grants the capability.
func Has(role models.UserRole, cap Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}
