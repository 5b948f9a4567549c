package helpers

import (
	"context"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
)

// HasCapability reports whether the authenticated user possesses the capability.
// Empty capabilities are always granted.
func HasCapability(ctx context.Context, capability rbac.Capability) bool {
	if capability == "" {
		return true
	}
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return false
	}
	return rbac.HasCapability(user.Roles, capability)
}

// DisplayName picks the label shown for the signed-in user.
func DisplayName(ctx context.Context) string {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return ""
	}
	switch {
	case user.Name != "":
		return user.Name
	case user.Email != "":
		return user.Email
	default:
		return user.UID
	}
}

// CSRFToken returns the token to embed in forms.
func CSRFToken(ctx context.Context) string {
	return middleware.CSRFTokenFromContext(ctx)
}

// Environment returns the deployment label for the environment badge.
func Environment(ctx context.Context) string {
	return middleware.EnvironmentFromContext(ctx)
}
