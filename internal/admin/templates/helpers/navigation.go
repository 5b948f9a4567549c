package helpers

import (
	"context"
	"path"
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
)

// BasePath returns the admin base path the request was served under.
func BasePath(ctx context.Context) string {
	return cleanRoute(middleware.BasePathFromContext(ctx))
}

// NavActive reports whether the current request path is pattern, or lies
// beneath it when prefix is set, so the product list stays highlighted on
// the composer and image pages.
func NavActive(ctx context.Context, pattern string, prefix bool) bool {
	if strings.TrimSpace(pattern) == "" {
		return false
	}
	current := cleanRoute(middleware.RequestPathFromContext(ctx))
	target := cleanRoute(pattern)
	if current == target {
		return true
	}
	return prefix && target != "/" && strings.HasPrefix(current, target+"/")
}

func cleanRoute(p string) string {
	if p = strings.TrimSpace(p); p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}
