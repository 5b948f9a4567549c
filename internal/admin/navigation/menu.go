// Package navigation describes the sidebar menu of the admin console.
package navigation

import (
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
)

// MenuItem is a single sidebar link.
type MenuItem struct {
	Key         string
	Label       string
	Capability  rbac.Capability
	Href        string
	Pattern     string
	MatchPrefix bool
}

// MenuGroup groups related links under a heading.
type MenuGroup struct {
	Key        string
	Label      string
	Capability rbac.Capability
	Items      []MenuItem
}

// BuildMenu returns the sidebar for an admin mounted at basePath.
func BuildMenu(basePath string) []MenuGroup {
	join := func(suffix string) string {
		base := strings.TrimRight(strings.TrimSpace(basePath), "/")
		return base + suffix
	}

	return []MenuGroup{
		{
			Key:        "catalog",
			Label:      "Catalog",
			Capability: rbac.CapProductsView,
			Items: []MenuItem{
				{
					Key:         "products",
					Label:       "Products",
					Capability:  rbac.CapProductsView,
					Href:        join("/products"),
					Pattern:     join("/products"),
					MatchPrefix: true,
				},
				{
					Key:        "products-new",
					Label:      "Add product",
					Capability: rbac.CapProductsEdit,
					Href:       join("/products/new"),
					Pattern:    join("/products/new"),
				},
			},
		},
	}
}
