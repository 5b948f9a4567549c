package partials

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
)

// TopbarActions renders the environment badge and the user menu.
func TopbarActions() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		env := helpers.Environment(ctx)
		h.Open("div", "class", "flex items-center gap-4")

		h.Open("div", "data-environment-badge", env, "title", env, "class", environmentClass(env))
		h.Elem("span", environmentAbbrev(env), "aria-hidden", "true")
		h.Elem("span", env+" environment", "class", "sr-only")
		h.Close("div")

		if _, ok := middleware.UserFromContext(ctx); ok {
			h.Open("div", "data-user-menu", "", "class", "flex items-center gap-3")
			h.Elem("p", helpers.DisplayName(ctx), "class", "truncate text-sm font-medium text-slate-700")
			h.Open("form", "method", "post", "action", helpers.JoinPath(helpers.BasePath(ctx), "/logout"), "data-user-menu-logout", "")
			h.Raw(`<input type="hidden"`).Attr("name", middleware.CSRFFieldName).Attr("value", helpers.CSRFToken(ctx)).Raw(">")
			h.Elem("button", "Sign out", "type", "submit", "class", "text-sm text-slate-500 hover:text-slate-900")
			h.Close("form")
			h.Close("div")
		}

		h.Close("div")
		return h.Err()
	})
}

func environmentAbbrev(env string) string {
	switch strings.ToLower(env) {
	case "production", "prod":
		return "PRD"
	case "staging", "stage", "stg":
		return "STG"
	case "development", "dev", "local":
		return "DEV"
	}
	upper := strings.ToUpper(env)
	if len(upper) > 3 {
		upper = upper[:3]
	}
	return upper
}

func environmentClass(env string) string {
	switch environmentAbbrev(env) {
	case "PRD":
		return "rounded bg-rose-600 px-2 py-1 text-xs font-bold text-white"
	case "STG":
		return "rounded bg-amber-500 px-2 py-1 text-xs font-bold text-white"
	default:
		return "rounded bg-slate-200 px-2 py-1 text-xs font-bold text-slate-700"
	}
}
