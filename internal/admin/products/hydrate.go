package products

import (
	"strconv"
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

// NewUpdateComposer hydrates a draft from a stored product. Colors on the
// record that the catalog does not know are registered in the session
// catalog so swatches resolve.
func NewUpdateComposer(cat catalog.Catalog, rec Record) *Composer {
	options := make([]catalog.ColorOption, 0, len(rec.Colors))
	for _, c := range rec.Colors {
		options = append(options, catalog.ColorOption{Name: c.Name, Value: c.Value, Code: c.Code})
	}
	cat = cat.WithColors(options...)

	aliases := make(map[string]string, len(rec.Colors)*2)
	var colors []string
	for _, c := range rec.Colors {
		key := canonicalColor(cat, c.Value, c.Name)
		if key == "" {
			continue
		}
		aliases[c.Name] = key
		aliases[c.Value] = key
		if !contains(colors, key) {
			colors = append(colors, key)
		}
	}

	var inventory []InventoryRow
	for _, row := range rec.Inventory {
		key, ok := aliases[row.Color]
		if !ok {
			key = canonicalColor(cat, row.Color, row.Color)
		}
		if key == "" {
			continue
		}
		if !contains(colors, key) {
			colors = append(colors, key)
		}
		size := strings.ToUpper(strings.TrimSpace(row.Size))
		if opt, ok := cat.Size(size); ok {
			size = strings.ToUpper(opt.Name)
		}
		if hasRow(inventory, key, size) {
			continue
		}
		inventory = append(inventory, InventoryRow{Color: key, Size: size, Stock: row.Stock})
	}

	details := Details{
		Title:       rec.Name,
		Description: rec.Description,
		Gender:      rec.Gender,
	}
	if rec.Price > 0 {
		details.Price = strconv.FormatFloat(rec.Price, 'f', -1, 64)
	}
	details.Category, details.CustomCategory = splitOption(rec.Category, cat.Category)
	details.Material, details.CustomMaterial = splitOption(rec.Material, cat.Material)

	return &Composer{
		Flow:      FlowUpdate,
		ProductID: rec.ID,
		Phase:     PhaseEditing,
		Catalog:   cat,
		Draft: Draft{
			Details:   details,
			Colors:    colors,
			Inventory: inventory,
		},
		Original: append([]string(nil), colors...),
	}
}

func canonicalColor(cat catalog.Catalog, value, name string) string {
	if opt, ok := cat.Color(value); ok && value != "" {
		return opt.Value
	}
	if opt, ok := cat.Color(name); ok && name != "" {
		return opt.Value
	}
	if value != "" {
		return value
	}
	return name
}

func splitOption(value string, lookup func(string) (catalog.Option, bool)) (string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}
	if _, ok := lookup(value); ok {
		return value, ""
	}
	return catalog.CustomValue, value
}

func hasRow(rows []InventoryRow, color, size string) bool {
	for _, r := range rows {
		if r.Color == color && r.Size == size {
			return true
		}
	}
	return false
}
