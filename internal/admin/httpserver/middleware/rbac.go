package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
)

// RequireCapability answers 403 when the signed-in staff member's roles do
// not grant capability. htmx callers are asked to refresh so the page drops
// the controls they can no longer use.
func RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := UserFromContext(r.Context()); ok && rbac.HasCapability(user.Roles, capability) {
				next.ServeHTTP(w, r)
				return
			}
			observability.FromContext(r.Context()).Info("capability denied",
				zap.String("capability", string(capability)),
				zap.String("uid", UserID(r.Context())),
			)
			if IsHTMXRequest(r.Context()) {
				w.Header().Set("HX-Refresh", "true")
			}
			http.Error(w, "You do not have access to "+capability.Label()+".", http.StatusForbidden)
		})
	}
}
