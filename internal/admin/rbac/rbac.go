// Package rbac maps staff roles onto the capabilities of the product screens.
package rbac

import (
	"slices"
	"strings"
)

// Role is a staff access tier carried in the sign-in token claims.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOps       Role = "ops"
	RoleSupport   Role = "support"
	RoleMarketing Role = "marketing"
)

var knownRoles = []Role{RoleAdmin, RoleOps, RoleSupport, RoleMarketing}

// Capability gates one group of product screens.
type Capability string

const (
	// CapProductsView grants the product list.
	CapProductsView Capability = "products.view"
	// CapProductsEdit grants the create and update composers, including custom colors.
	CapProductsEdit Capability = "products.edit"
	// CapProductsImages grants the image-upload steps.
	CapProductsImages Capability = "products.images"
)

// grants lists the non-admin roles holding each capability. Admin holds all.
var grants = map[Capability][]Role{
	CapProductsView:   {RoleOps, RoleSupport, RoleMarketing},
	CapProductsEdit:   {RoleOps},
	CapProductsImages: {RoleOps, RoleMarketing},
}

var labels = map[Capability]string{
	CapProductsView:   "the product list",
	CapProductsEdit:   "product editing",
	CapProductsImages: "product images",
}

// Label names the screens a capability unlocks, for denial messages.
func (c Capability) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// ParseRoles lowercases and de-duplicates raw claim values, dropping
// anything that is not a staff role.
func ParseRoles(raw []string) []Role {
	var roles []Role
	for _, v := range raw {
		role := Role(strings.ToLower(strings.TrimSpace(v)))
		if slices.Contains(knownRoles, role) && !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasCapability reports whether any of the roles grants c. The empty
// capability is always granted; an undefined one never is.
func HasCapability(userRoles []string, c Capability) bool {
	if c == "" {
		return true
	}
	allowed, ok := grants[c]
	if !ok {
		return false
	}
	for _, role := range ParseRoles(userRoles) {
		if role == RoleAdmin || slices.Contains(allowed, role) {
			return true
		}
	}
	return false
}

// Capabilities lists every capability the roles grant.
func Capabilities(userRoles []string) map[Capability]bool {
	caps := make(map[Capability]bool, len(grants))
	for c := range grants {
		if HasCapability(userRoles, c) {
			caps[c] = true
		}
	}
	return caps
}
