package partials

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
)

// Breadcrumb is one step of the page trail. The last crumb has no Href.
type Breadcrumb struct {
	Label string
	Href  string
}

// Breadcrumbs renders the page trail.
func Breadcrumbs(items []Breadcrumb) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(items) == 0 {
			return nil
		}
		h := helpers.NewHTML(w)
		h.Open("nav", "aria-label", "Breadcrumb", "class", "text-sm text-slate-500").Open("ol", "class", "flex gap-2")
		for i, item := range items {
			h.Open("li")
			if i > 0 {
				h.Raw(`<span aria-hidden="true">/</span> `)
			}
			if item.Href != "" {
				h.Elem("a", item.Label, "href", item.Href, "class", "hover:text-slate-900")
			} else {
				h.Elem("span", item.Label, "aria-current", "page", "class", "text-slate-900")
			}
			h.Close("li")
		}
		h.Close("ol").Close("nav")
		return h.Err()
	})
}

// Alert renders a flash or error message. Empty messages render nothing.
func Alert(kind, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		role := "status"
		if kind == "error" {
			role = "alert"
		}
		h := helpers.NewHTML(w)
		h.Elem("div", message, "role", role, "data-alert", kind, "class", helpers.AlertClass(kind))
		return h.Err()
	})
}

// CSRFField renders the hidden token input for plain form posts.
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw(`<input type="hidden"`).Attr("name", middleware.CSRFFieldName).Attr("value", helpers.CSRFToken(ctx)).Raw(">")
		return h.Err()
	})
}
