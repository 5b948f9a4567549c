package products

import (
	"strconv"
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

// Details holds the descriptive fields of a product draft.
type Details struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Price          string `json:"price"`
	Category       string `json:"category"`
	CustomCategory string `json:"customCategory,omitempty"`
	Gender         string `json:"gender"`
	Material       string `json:"material"`
	CustomMaterial string `json:"customMaterial,omitempty"`
}

// ResolvedCategory returns the free-text category when the custom sentinel is selected.
func (d Details) ResolvedCategory() string {
	if d.Category == catalog.CustomValue {
		return strings.TrimSpace(d.CustomCategory)
	}
	return strings.TrimSpace(d.Category)
}

// ResolvedMaterial returns the free-text material when the custom sentinel is selected.
func (d Details) ResolvedMaterial() string {
	if d.Material == catalog.CustomValue {
		return strings.TrimSpace(d.CustomMaterial)
	}
	return strings.TrimSpace(d.Material)
}

// InventoryRow is the stock count for one (color, size) pair. Color is the
// color's catalog value, size the upper-case size name.
type InventoryRow struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Draft is an unsaved product being composed.
type Draft struct {
	Details   Details        `json:"details"`
	Colors    []string       `json:"colors"`
	Inventory []InventoryRow `json:"inventory"`
}

// Clone returns a deep copy of the draft.
func (d Draft) Clone() Draft {
	return Draft{
		Details:   d.Details,
		Colors:    append([]string(nil), d.Colors...),
		Inventory: append([]InventoryRow(nil), d.Inventory...),
	}
}

// SelectedSizes lists every size referenced by an inventory row, in order of first use.
func (d Draft) SelectedSizes() []string {
	sizes := make([]string, 0, len(d.Inventory))
	seen := make(map[string]struct{}, len(d.Inventory))
	for _, row := range d.Inventory {
		if _, ok := seen[row.Size]; ok {
			continue
		}
		seen[row.Size] = struct{}{}
		sizes = append(sizes, row.Size)
	}
	return sizes
}

// HasColor reports whether color is part of the color set.
func (d Draft) HasColor(color string) bool {
	for _, c := range d.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// RowsFor returns the inventory rows for a color.
func (d Draft) RowsFor(color string) []InventoryRow {
	var rows []InventoryRow
	for _, row := range d.Inventory {
		if row.Color == color {
			rows = append(rows, row)
		}
	}
	return rows
}

// AddColor appends color to the color set. It reports false when the color
// was already present.
func (d *Draft) AddColor(color string) (bool, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return false, invalid("color", msgSelectColor, ErrColorNotSelected)
	}
	if d.HasColor(color) {
		return false, nil
	}
	d.Colors = append(d.Colors, color)
	return true, nil
}

// RemoveColor drops color together with every inventory row that references it.
func (d *Draft) RemoveColor(color string) bool {
	idx := -1
	for i, c := range d.Colors {
		if c == color {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	d.Colors = append(d.Colors[:idx:idx], d.Colors[idx+1:]...)

	kept := d.Inventory[:0:0]
	for _, row := range d.Inventory {
		if row.Color != color {
			kept = append(kept, row)
		}
	}
	d.Inventory = kept
	return true
}

// AddInventoryRow validates and appends a stock entry. State is left
// unchanged when any precondition fails.
func (d *Draft) AddInventoryRow(cat catalog.Catalog, color, size, stock string) (InventoryRow, error) {
	if !d.HasColor(color) {
		return InventoryRow{}, invalid("color", msgColorNotChosen, ErrColorNotSelected)
	}
	opt, ok := cat.Size(size)
	if !ok {
		return InventoryRow{}, invalid("size", msgInvalidSize, ErrInvalidSize)
	}
	qty, err := ParseStock(stock)
	if err != nil {
		return InventoryRow{}, err
	}
	row := InventoryRow{Color: color, Size: strings.ToUpper(opt.Name), Stock: qty}
	for _, existing := range d.Inventory {
		if existing.Color == row.Color && existing.Size == row.Size {
			return InventoryRow{}, invalid("stock", msgDuplicateRow, ErrDuplicateInventory)
		}
	}
	d.Inventory = append(d.Inventory, row)
	return row, nil
}

// RemoveInventoryRow deletes the row for the (color, size) pair.
func (d *Draft) RemoveInventoryRow(color, size string) bool {
	size = strings.ToUpper(strings.TrimSpace(size))
	for i, row := range d.Inventory {
		if row.Color == color && row.Size == size {
			d.Inventory = append(d.Inventory[:i:i], d.Inventory[i+1:]...)
			return true
		}
	}
	return false
}

// ParseStock parses a whole number of at least one.
func ParseStock(raw string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 0, invalid("stock", msgInvalidStock, ErrInvalidStock)
	}
	return qty, nil
}
