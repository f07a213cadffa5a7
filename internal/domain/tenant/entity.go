// Package tenant defines the organizational boundary owning reports and the
// access-scope resolution that gates every report query and mutation.
package tenant

import (
	"regexp"
	"strings"

	"github.com/safeharbor-io/safeharbor/pkg/errors"
	"github.com/safeharbor-io/safeharbor/pkg/types/common"
)

// Tenant is a company boundary. Each report belongs to exactly one tenant;
// an admin user is associated with zero or more tenants through memberships.
type Tenant struct {
	// ID is the tenant slug used in report rows and membership rows.
	ID common.TenantID `json:"id"`

	// Label is the display name shown in the tenant switcher.
	Label string `json:"label"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// NewTenant creates a tenant with validation.
func NewTenant(id common.TenantID, label string) (*Tenant, error) {
	if !ValidSlug(id) {
		return nil, errors.InvalidParam("tenant id must be a lowercase slug of 3-64 characters")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errors.InvalidParam("tenant label must not be empty")
	}
	return &Tenant{ID: id, Label: label}, nil
}

// ValidSlug reports whether id has the canonical slug shape.
func ValidSlug(id common.TenantID) bool {
	return slugPattern.MatchString(string(id))
}

// Membership links an admin user to a tenant. Read-only from the domain's
// perspective; provisioning is an operational concern.
type Membership struct {
	UserID   common.UserID   `json:"user_id"`
	TenantID common.TenantID `json:"tenant_id"`
}

//Personal.AI order the ending
