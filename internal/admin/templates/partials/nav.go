package partials

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/navigation"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
)

// Sidebar renders the navigation groups the current user may access.
func Sidebar(menu []navigation.MenuGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("nav", "class", "flex h-full flex-col gap-6 p-4", "aria-label", "Main", "data-sidebar", "")
		for _, group := range menu {
			if !hasVisibleItems(group, ctx) {
				continue
			}
			h.Open("div", "data-nav-group", group.Key)
			h.Elem("p", group.Label, "class", "px-3 text-xs font-semibold uppercase tracking-wide text-slate-400")
			h.Open("ul", "class", "mt-2 space-y-1")
			for _, item := range visibleItems(group, ctx) {
				active := helpers.NavActive(ctx, item.Pattern, item.MatchPrefix) && !activeSibling(ctx, group, item)
				h.Open("li")
				h.Raw("<a").Attr("href", item.Href).Attr("class", helpers.NavClass(active))
				if active {
					h.Attr("aria-current", "page")
				}
				h.Raw(">").Text(item.Label).Close("a")
				h.Close("li")
			}
			h.Close("ul").Close("div")
		}
		h.Close("nav")
		return h.Err()
	})
}

func hasVisibleItems(group navigation.MenuGroup, ctx context.Context) bool {
	return len(visibleItems(group, ctx)) > 0
}

func visibleItems(group navigation.MenuGroup, ctx context.Context) []navigation.MenuItem {
	if !helpers.HasCapability(ctx, group.Capability) {
		return nil
	}
	var items []navigation.MenuItem
	for _, item := range group.Items {
		if helpers.HasCapability(ctx, item.Capability) {
			items = append(items, item)
		}
	}
	return items
}

// activeSibling reports whether a more specific item of the same group
// matches the current path, so only one link is highlighted.
func activeSibling(ctx context.Context, group navigation.MenuGroup, item navigation.MenuItem) bool {
	for _, other := range group.Items {
		if other.Key == item.Key || len(other.Pattern) <= len(item.Pattern) {
			continue
		}
		if helpers.NavActive(ctx, other.Pattern, other.MatchPrefix) {
			return true
		}
	}
	return false
}
