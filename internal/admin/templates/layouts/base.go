// Package layouts holds the page shell shared by every admin screen.
package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/navigation"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/partials"
)

const htmxScript = "https://unpkg.com/htmx.org@1.9.12"

// Page describes one full admin page.
type Page struct {
	Title       string
	Breadcrumbs []partials.Breadcrumb
	FlashKind   string
	Flash       string
	Body        templ.Component
}

// Base renders the document shell with sidebar, topbar and the page body.
func Base(page Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := helpers.BasePath(ctx)
		title := "Steth Admin"
		if page.Title != "" {
			title = page.Title + " | Steth Admin"
		}

		h := helpers.NewHTML(w)
		h.Raw("<!DOCTYPE html>")
		h.Open("html", "lang", "en").Open("head")
		h.Raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Elem("title", title)
		h.Raw(`<meta name="csrf-token"`).Attr("content", helpers.CSRFToken(ctx)).Raw(">")
		h.Raw(`<link rel="stylesheet"`).Attr("href", helpers.JoinPath(base, "/public/admin.css")).Raw(">")
		h.Raw(`<script defer`).Attr("src", htmxScript).Raw("></script>")
		h.Close("head")

		h.Open("body", "hx-headers", `{"X-CSRF-Token": "`+helpers.CSRFToken(ctx)+`"}`)
		h.Open("div", "class", "admin-shell")
		h.Open("aside", "class", "admin-sidebar")
		h.Elem("a", "Steth Admin", "href", base, "class", "block p-4 text-lg font-bold")
		h.Component(ctx, partials.Sidebar(navigation.BuildMenu(base)))
		h.Close("aside")

		h.Open("div")
		h.Open("header", "class", "admin-topbar")
		h.Component(ctx, partials.Breadcrumbs(page.Breadcrumbs))
		h.Component(ctx, partials.TopbarActions())
		h.Close("header")

		h.Open("main", "class", "admin-main", "id", "main")
		h.Component(ctx, partials.Alert(page.FlashKind, page.Flash))
		h.Component(ctx, page.Body)
		h.Close("main")
		h.Close("div")

		h.Close("div").Close("body").Close("html")
		return h.Err()
	})
}

// Bare renders a minimal document without navigation, used by the login page.
func Bare(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Raw("<!DOCTYPE html>")
		h.Open("html", "lang", "en").Open("head")
		h.Raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Elem("title", title+" | Steth Admin")
		h.Raw(`<link rel="stylesheet"`).Attr("href", helpers.JoinPath(helpers.BasePath(ctx), "/public/admin.css")).Raw(">")
		h.Close("head")
		h.Open("body").Open("main", "class", "admin-main", "style", "max-width:28rem;margin:4rem auto")
		h.Component(ctx, body)
		h.Close("main").Close("body").Close("html")
		return h.Err()
	})
}
