package products

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/layouts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/partials"
)

// ListPage renders the product list inside the admin shell.
func ListPage(page layouts.Page, data ListPageData) templ.Component {
	page.Title = "Products"
	page.Breadcrumbs = []partials.Breadcrumb{{Label: "Products"}}
	page.Body = ListTable(data)
	return layouts.Base(page)
}

// ListTable renders the product table.
func ListTable(data ListPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("section", "class", "card", "data-product-list")
		h.Open("div", "class", "flex items-center justify-between")
		h.Elem("h1", "Products", "class", "text-xl font-bold")
		if data.CanEdit {
			h.Elem("a", "Add product", "href", data.NewHref, "class", "btn btn-primary", "data-new-product")
		}
		h.Close("div")

		if data.Error != "" {
			h.Component(ctx, partials.Alert("error", data.Error))
			h.Close("section")
			return h.Err()
		}
		if len(data.Rows) == 0 {
			h.Elem("p", "No products yet.", "class", "text-sm text-slate-500", "data-empty")
			h.Close("section")
			return h.Err()
		}

		h.Open("table", "class", "table")
		h.Raw("<thead><tr><th></th><th>Name</th><th>Category</th><th>Gender</th><th>Price</th><th>Stock</th><th></th></tr></thead>")
		h.Open("tbody")
		for _, row := range data.Rows {
			h.Open("tr", "data-product-row", row.ID)
			h.Open("td")
			if row.Thumbnail != "" {
				h.Raw(`<img class="thumb" loading="lazy"`).Attr("src", row.Thumbnail).Attr("alt", row.Name).Raw(">")
			}
			h.Close("td")
			h.Elem("td", row.Name, "data-name")
			h.Elem("td", row.Category)
			h.Elem("td", row.Gender)
			h.Elem("td", row.Price, "data-price")
			h.Elem("td", strconv.Itoa(row.Stock), "data-stock")
			h.Open("td")
			if data.CanEdit {
				h.Elem("a", "Edit", "href", row.EditHref, "data-edit")
			}
			h.Close("td")
			h.Close("tr")
		}
		h.Close("tbody").Close("table")
		h.Close("section")
		return h.Err()
	})
}
