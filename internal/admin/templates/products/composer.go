package products

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	domain "github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/layouts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/partials"
)

// ComposerPage renders the composer inside the admin shell.
func ComposerPage(page layouts.Page, data ComposerData) templ.Component {
	page.Title = data.Heading
	page.Breadcrumbs = []partials.Breadcrumb{
		{Label: "Products", Href: data.CancelHref},
		{Label: data.Heading},
	}
	page.Body = Composer(data)
	return layouts.Base(page)
}

// Composer renders the swappable composer fragment.
func Composer(data ComposerData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("div", "id", ComposerID, "data-flow", string(data.Flow))
		h.Open("div", "class", "flex items-center justify-between")
		h.Elem("h1", data.Heading, "class", "text-xl font-bold")
		if data.ResetHref != "" {
			h.Elem("a", "Reload from server", "href", data.ResetHref, "class", "text-sm", "data-reset")
		}
		h.Close("div")
		h.Component(ctx, partials.Alert("error", data.Errors[ErrorForm]))

		detailsSection(ctx, h, data)
		colorsSection(ctx, h, data)
		inventorySection(ctx, h, data)
		actionsSection(ctx, h, data)

		h.Close("div")
		return h.Err()
	})
}

func openForm(ctx context.Context, h *helpers.HTML, action string, attrs ...string) {
	base := []string{
		"method", "post",
		"action", action,
		"hx-post", action,
		"hx-target", "#" + ComposerID,
		"hx-swap", "outerHTML",
	}
	h.Open("form", append(base, attrs...)...)
	h.Component(ctx, partials.CSRFField())
}

func fieldError(h *helpers.HTML, data ComposerData, field string) {
	if msg := data.Errors[field]; msg != "" {
		h.Elem("p", msg, "class", "field-error", "data-field-error", field)
	}
}

func detailsSection(ctx context.Context, h *helpers.HTML, data ComposerData) {
	d := data.Details
	h.Open("section", "class", "card", "data-section", "details")
	h.Elem("h2", "Product details", "class", "font-semibold")
	openForm(ctx, h, data.ActionBase+"/details", "hx-trigger", "change, submit")

	h.Open("div").Elem("label", "Title", "for", "title")
	h.Raw(`<input type="text" id="title" name="title" required`).Attr("value", d.Title).Raw(">")
	h.Close("div")

	h.Open("div").Elem("label", "Description", "for", "description")
	h.Elem("textarea", d.Description, "id", "description", "name", "description", "rows", "4")
	h.Close("div")

	h.Open("div").Elem("label", "Price (Rs.)", "for", "price")
	h.Raw(`<input type="number" id="price" name="price" min="0" step="any"`).Attr("value", d.Price).Raw(">")
	h.Close("div")

	h.Open("div").Elem("label", "Category", "for", "category")
	optionSelect(h, "category", d.Category, data.Catalog.Categories, true)
	if d.Category == catalog.CustomValue {
		h.Raw(`<input type="text" name="customCategory" placeholder="Custom category"`).Attr("value", d.CustomCategory).Raw(">")
	}
	fieldError(h, data, "category")
	h.Close("div")

	h.Open("div").Elem("label", "Gender", "for", "gender")
	optionSelect(h, "gender", d.Gender, data.Catalog.Genders, false)
	fieldError(h, data, "gender")
	h.Close("div")

	h.Open("div").Elem("label", "Material", "for", "material")
	optionSelect(h, "material", d.Material, data.Catalog.Materials, true)
	if d.Material == catalog.CustomValue {
		h.Raw(`<input type="text" name="customMaterial" placeholder="Custom material"`).Attr("value", d.CustomMaterial).Raw(">")
	}
	fieldError(h, data, "material")
	h.Close("div")

	h.Elem("button", "Save details", "type", "submit", "class", "btn")
	h.Close("form")
	h.Close("section")
}

func optionSelect(h *helpers.HTML, name, selected string, options []catalog.Option, allowCustom bool) {
	h.Open("select", "id", name, "name", name)
	h.Raw(`<option value="">Select</option>`)
	for _, opt := range options {
		h.Raw("<option").Attr("value", opt.Value).AttrIf(opt.Value == selected, "selected").Raw(">").Text(opt.Name).Close("option")
	}
	if allowCustom {
		h.Raw("<option").Attr("value", catalog.CustomValue).AttrIf(selected == catalog.CustomValue, "selected").Raw(">Other</option>")
	}
	h.Close("select")
}

func colorsSection(ctx context.Context, h *helpers.HTML, data ComposerData) {
	h.Open("section", "class", "card", "data-section", "colors")
	h.Elem("h2", "Colors", "class", "font-semibold")

	h.Open("ul", "class", "chips", "data-selected-colors")
	for _, chip := range data.Colors {
		h.Open("li", "class", "chip", "data-color", chip.Value)
		h.Raw(`<span class="swatch" aria-hidden="true"`).Attr("style", "background:"+chip.Code).Raw("></span>")
		h.Text(chip.Name)
		if chip.New {
			h.Elem("span", "new", "class", helpers.BadgeClass("success"), "data-new-color")
		}
		h.Elem("span", helpers.Plural(chip.Rows, "size", "sizes"), "class", "text-xs text-slate-500")
		openForm(ctx, h, data.ActionBase+"/colors/delete", "class", "inline")
		h.Raw(`<input type="hidden" name="color"`).Attr("value", chip.Value).Raw(">")
		h.Raw(`<button type="submit" class="btn-link"`).Attr("aria-label", "Remove "+chip.Name).Raw(">&times;</button>")
		h.Close("form")
		h.Close("li")
	}
	h.Close("ul")

	openForm(ctx, h, data.ActionBase+"/colors", "data-add-color")
	h.Open("select", "name", "color", "aria-label", "Color")
	h.Raw(`<option value="">Select a color</option>`)
	for _, opt := range data.UnselectedColors() {
		h.Raw("<option").Attr("value", opt.Value).Raw(">").Text(opt.Name).Close("option")
	}
	h.Close("select")
	h.Elem("button", "Add color", "type", "submit", "class", "btn")
	fieldError(h, data, ErrorColor)
	h.Close("form")

	openForm(ctx, h, data.ActionBase+"/colors/custom", "data-custom-color")
	h.Raw(`<input type="text" name="colorName" placeholder="Color name" aria-label="Color name"`).Attr("value", data.Input.CustomColorName).Raw(">")
	h.Raw(`<input type="text" name="colorCode" placeholder="#000000" aria-label="Hex code"`).Attr("value", data.Input.CustomColorCode).Raw(">")
	h.Elem("button", "Add custom color", "type", "submit", "class", "btn")
	fieldError(h, data, ErrorCustomColor)
	h.Close("form")

	h.Close("section")
}

func inventorySection(ctx context.Context, h *helpers.HTML, data ComposerData) {
	h.Open("section", "class", "card", "data-section", "inventory")
	h.Elem("h2", "Inventory", "class", "font-semibold")

	if len(data.Colors) == 0 {
		h.Elem("p", "Add a color before recording stock.", "class", "text-sm text-slate-500")
	} else {
		openForm(ctx, h, data.ActionBase+"/inventory", "data-add-inventory")
		h.Open("select", "name", "color", "aria-label", "Color")
		for _, chip := range data.Colors {
			h.Raw("<option").Attr("value", chip.Value).AttrIf(chip.Value == data.Input.InventoryColor, "selected").Raw(">").Text(chip.Name).Close("option")
		}
		h.Close("select")
		h.Open("select", "name", "size", "aria-label", "Size")
		for _, size := range data.Catalog.Sizes {
			h.Raw("<option").Attr("value", size.Value).AttrIf(strings.EqualFold(size.Value, data.Input.InventorySize), "selected").Raw(">").Text(size.Name).Close("option")
		}
		h.Close("select")
		h.Raw(`<input type="number" name="stock" min="1" step="1" placeholder="Stock" aria-label="Stock"`).Attr("value", data.Input.InventoryStock).Raw(">")
		h.Elem("button", "Add stock", "type", "submit", "class", "btn")
		fieldError(h, data, ErrorInventory)
		h.Close("form")
	}

	if len(data.Inventory) > 0 {
		h.Open("table", "class", "table", "data-inventory")
		h.Raw("<thead><tr><th>Color</th><th>Size</th><th>Stock</th><th></th></tr></thead>")
		h.Open("tbody")
		for _, row := range data.Inventory {
			h.Open("tr", "data-row", row.Color+"/"+row.Size)
			h.Open("td")
			h.Raw(`<span class="swatch" aria-hidden="true"`).Attr("style", "background:"+row.Code).Raw("></span>")
			h.Text(row.ColorName)
			h.Close("td")
			h.Elem("td", row.Size)
			h.Elem("td", strconv.Itoa(row.Stock))
			h.Open("td")
			openForm(ctx, h, data.ActionBase+"/inventory/delete", "class", "inline")
			h.Raw(`<input type="hidden" name="color"`).Attr("value", row.Color).Raw(">")
			h.Raw(`<input type="hidden" name="size"`).Attr("value", row.Size).Raw(">")
			h.Elem("button", "Remove", "type", "submit", "class", "btn-link")
			h.Close("form")
			h.Close("td")
			h.Close("tr")
		}
		h.Close("tbody").Close("table")
	}

	if len(data.MissingStock) > 0 {
		h.Elem("p", "Colors without stock: "+strings.Join(data.MissingStock, ", "), "class", "field-error", "data-missing-stock")
	}
	h.Close("section")
}

func actionsSection(ctx context.Context, h *helpers.HTML, data ComposerData) {
	label := "Add Product"
	if data.Flow == domain.FlowUpdate {
		label = "Update Product"
	}
	h.Open("div", "class", "flex gap-2", "data-section", "actions")
	openForm(ctx, h, data.ActionBase+"/submit", "hx-disabled-elt", "find button")
	h.Raw(`<button type="submit" class="btn btn-primary" data-submit`).AttrIf(!data.Valid, "disabled").Raw(">").Text(label).Close("button")
	h.Close("form")
	openForm(ctx, h, data.ActionBase+"/discard")
	h.Elem("button", "Discard", "type", "submit", "class", "btn", "data-discard")
	h.Close("form")
	h.Elem("a", "Cancel", "href", data.CancelHref, "class", "btn")
	h.Close("div")
}
